package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"social_gateway/internal/client"
	"social_gateway/internal/models"
	"social_gateway/internal/session"
)

var (
	loginPassword string

	regEmail       string
	regPassword    string
	regDisplayName string

	profileDisplayName string
	profileBio         string
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and store the session token",
	Long:  `Log in with a username and password. Without --password the password is read from stdin.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password := loginPassword
		if password == "" {
			password = readLine(cmd.InOrStdin())
		}
		withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
			return runLogin(ctx, c, w, args[0], password)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
			return runLogout(c, w)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
			return runRegister(ctx, c, w, models.Registration{
				Username:    args[0],
				Email:       regEmail,
				Password:    regPassword,
				DisplayName: regDisplayName,
			})
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run: func(cmd *cobra.Command, args []string) {
		withClient(runWhoami)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the signed-in user's display name or bio",
	Run: func(cmd *cobra.Command, args []string) {
		upd := models.ProfileUpdate{DisplayName: profileDisplayName, Bio: profileBio}
		withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
			return runProfile(ctx, c, w, upd)
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (read from stdin when omitted)")

	registerCmd.Flags().StringVar(&regEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "Password")
	registerCmd.Flags().StringVar(&regDisplayName, "display-name", "", "Display name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	profileCmd.Flags().StringVar(&profileDisplayName, "display-name", "", "New display name")
	profileCmd.Flags().StringVar(&profileBio, "bio", "", "New bio")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd, profileCmd)
}

func readLine(r io.Reader) string {
	line, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// runLogin logs in and returns exit code
func runLogin(ctx context.Context, c *client.Client, w io.Writer, username, password string) int {
	if _, err := c.Login(ctx, username, password); err != nil {
		// a 401 here means bad credentials, so no re-login hint
		fmt.Fprintf(w, "Login failed: %v\n", err)
		return exitFailure
	}

	token, _ := c.Store().Get()
	info := session.Describe(token)
	if IsJSONOutput() {
		printJSON(w, map[string]any{"username": username, "jwt": info.IsJWT, "expires_at": info.ExpiresAt})
		return exitOK
	}
	fmt.Fprintf(w, "Logged in as %s\n", username)
	if !info.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Token expires %s\n", info.ExpiresAt.Format(time.RFC3339))
	}
	return exitOK
}

func runLogout(c *client.Client, w io.Writer) int {
	c.Logout()
	fmt.Fprintln(w, "Logged out")
	return exitOK
}

func runRegister(ctx context.Context, c *client.Client, w io.Writer, reg models.Registration) int {
	env, err := c.Register(ctx, reg)
	if err != nil {
		fmt.Fprintf(w, "Registration failed: %v\n", err)
		return exitFailure
	}
	if IsJSONOutput() {
		printJSON(w, env.Body)
		return exitOK
	}
	fmt.Fprintf(w, "Registered %s. Run `socialctl login %s` to sign in.\n", reg.Username, reg.Username)
	return exitOK
}

// runWhoami prints the signed-in user as the backend sees it, plus what the
// token itself claims when it is a JWT.
func runWhoami(ctx context.Context, c *client.Client, w io.Writer) int {
	token, ok := c.Store().Get()
	if !ok {
		fmt.Fprintln(w, "Not logged in")
		return exitUnauthenticated
	}

	me, err := c.CurrentUser(ctx)
	if err != nil {
		return reportError(w, err)
	}
	info := session.Describe(token)

	if IsJSONOutput() {
		printJSON(w, map[string]any{"user": me, "token": info})
		return exitOK
	}
	fmt.Fprintf(w, "%s\n", formatUser(me))
	if info.IsJWT && !info.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Token expires %s\n", info.ExpiresAt.Format(time.RFC3339))
	}
	return exitOK
}

func runProfile(ctx context.Context, c *client.Client, w io.Writer, upd models.ProfileUpdate) int {
	if upd.DisplayName == "" && upd.Bio == "" {
		fmt.Fprintln(w, "Nothing to update: pass --display-name or --bio")
		return exitSetup
	}
	me, err := c.UpdateProfile(ctx, upd)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		printJSON(w, me)
		return exitOK
	}
	fmt.Fprintln(w, formatUser(me))
	return exitOK
}

func formatUser(u *models.UserProfile) string {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return fmt.Sprintf("%s (@%s) · %d following · %d followers", name, u.Username, u.FollowingCount, u.FollowersCount)
}
