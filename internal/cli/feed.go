package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"social_gateway/internal/client"
	"social_gateway/internal/models"
)

var (
	feedPage int
	feedSize int
	feedUser string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the home feed (or a user's posts with --user)",
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
			return runFeed(ctx, c, w, feedUser, feedPage, feedSize)
		})
	},
}

var postCmd = &cobra.Command{
	Use:   "post <text...>",
	Short: "Publish a post",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
			return runPost(ctx, c, w, strings.Join(args, " "))
		})
	},
}

var (
	likeCmd   = newPostActionCmd("like", "Like a post", (*client.Client).Like, "Liked post %d\n")
	unlikeCmd = newPostActionCmd("unlike", "Remove a like", (*client.Client).Unlike, "Unliked post %d\n")

	followCmd   = newFollowCmd("follow", "Follow a user", (*client.Client).Follow, "Following @%s\n")
	unfollowCmd = newFollowCmd("unfollow", "Stop following a user", (*client.Client).Unfollow, "No longer following @%s\n")
)

func init() {
	feedCmd.Flags().IntVar(&feedPage, "page", 0, "Page number, starting at 0")
	feedCmd.Flags().IntVar(&feedSize, "size", 20, "Posts per page (max 100)")
	feedCmd.Flags().StringVar(&feedUser, "user", "", "Show this user's posts instead of the home feed")

	rootCmd.AddCommand(feedCmd, postCmd, likeCmd, unlikeCmd, followCmd, unfollowCmd)
}

// idAction is a client call acting on a post or user id.
type idAction func(*client.Client, context.Context, int64) error

func newPostActionCmd(use, short string, action idAction, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <post-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
				return runPostAction(ctx, c, w, args[0], action, done)
			})
		},
	}
}

func newFollowCmd(use, short string, action idAction, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
				return runFollow(ctx, c, w, args[0], action, done)
			})
		},
	}
}

func runFeed(ctx context.Context, c *client.Client, w io.Writer, username string, page, size int) int {
	var (
		feed *models.PostPage
		err  error
	)
	if username != "" {
		feed, err = c.UserPosts(ctx, username, page, size)
	} else {
		feed, err = c.Posts(ctx, page, size)
	}
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		printJSON(w, feed)
		return exitOK
	}
	if len(feed.Content) == 0 {
		fmt.Fprintln(w, "No posts to display. Follow users to see their posts!")
		return exitOK
	}
	for _, p := range feed.Content {
		fmt.Fprintln(w, formatPost(p))
	}
	if !feed.Last {
		fmt.Fprintf(w, "-- more: --page %d\n", feed.Page+1)
	}
	return exitOK
}

func formatPost(p models.Post) string {
	author := p.User.Username
	if author == "" {
		author = "unknown"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] @%s", p.ID, author)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(&b, " · %s", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, " · %d likes\n    %s", p.LikeCount, p.Content)
	return b.String()
}

func runPost(ctx context.Context, c *client.Client, w io.Writer, content string) int {
	content = strings.TrimSpace(content)
	if content == "" {
		fmt.Fprintln(w, "Error: post is empty")
		return exitFailure
	}
	p, err := c.CreatePost(ctx, content)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		printJSON(w, p)
		return exitOK
	}
	fmt.Fprintf(w, "Posted [%d]\n", p.ID)
	return exitOK
}

func runPostAction(ctx context.Context, c *client.Client, w io.Writer, rawID string, action idAction, done string) int {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		fmt.Fprintf(w, "Error: invalid post id %q\n", rawID)
		return exitFailure
	}
	if err := action(c, ctx, id); err != nil {
		return reportError(w, err)
	}
	fmt.Fprintf(w, done, id)
	return exitOK
}

// runFollow resolves the username to an id first; the backend follows by id.
func runFollow(ctx context.Context, c *client.Client, w io.Writer, username string, action idAction, done string) int {
	u, err := c.UserProfile(ctx, username)
	if err != nil {
		return reportError(w, err)
	}
	if err := action(c, ctx, u.ID); err != nil {
		return reportError(w, err)
	}
	fmt.Fprintf(w, done, u.Username)
	return exitOK
}
