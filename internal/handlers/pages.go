package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"social_gateway/internal/client"
	"social_gateway/internal/models"
	"social_gateway/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Page templates.
const (
	tplLogin   = "login.html"
	tplSignup  = "signup.html"
	tplHome    = "home.html"
	tplProfile = "profile.html"
	tplError   = "error.html"

	errMissingCredentials = "Username and password are required"
	errMissingSignup      = "Username, a valid email and password are required"
	errBadID              = "invalid id"
	msgRegistered         = "Account created. Please log in."
)

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

// pageClient builds the outbound wrapper for one page request, bound to the
// browser's token cookie.
func (h *Handler) pageClient(c *gin.Context) *client.Client {
	return client.New(h.clientBaseURL, session.NewCookieStore(c, h.cookieSecure),
		client.WithHTTPClient(h.httpClient),
		client.WithLogger(h.log),
	)
}

// redirectNavigator answers the current request with a 303 to the target.
func redirectNavigator(c *gin.Context) client.Navigator {
	return client.NavigatorFunc(func(path string) {
		c.Redirect(http.StatusSeeOther, path)
		c.Abort()
	})
}

// sessionRejected redirects to the login page if err comes from a 401. The
// wrapper has already cleared the cookie by then.
func (h *Handler) sessionRejected(c *gin.Context, err error) bool {
	if !client.HandleUnauthenticated(err, redirectNavigator(c)) {
		return false
	}
	if h.log != nil {
		h.log.Infow("page_session_rejected", "path", c.Request.URL.Path, "request_id", c.GetString(ctxRequestID))
	}
	return true
}

func pageErrorStatus(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

// renderError shows err on the page tpl, or redirects if the session was rejected.
func (h *Handler) renderError(c *gin.Context, tpl string, err error, data gin.H) {
	if h.sessionRejected(c, err) {
		return
	}
	if h.log != nil {
		h.log.Infow("page_call_failed", "path", c.Request.URL.Path, "err", err)
	}
	if data == nil {
		data = gin.H{}
	}
	data["Error"] = err.Error()
	c.HTML(pageErrorStatus(err), tpl, data)
}

// backTo redirects to the local path in the "next" form field, else fallback.
func backTo(c *gin.Context, fallback string) {
	next := c.PostForm("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = fallback
	}
	c.Redirect(http.StatusSeeOther, next)
}

func (h *Handler) loginPage(c *gin.Context) {
	data := gin.H{}
	if c.Query("registered") != "" {
		data["Notice"] = msgRegistered
	}
	c.HTML(http.StatusOK, tplLogin, data)
}

func (h *Handler) loginSubmit(c *gin.Context) {
	var form models.Credentials
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, tplLogin, gin.H{"Error": errMissingCredentials, "Username": form.Username})
		return
	}

	pc := h.pageClient(c)
	if _, err := pc.Login(requestContext(c), form.Username, form.Password); err != nil {
		if h.log != nil {
			h.log.Infow("page_login_failed", "username", form.Username, "err", err)
		}
		c.HTML(pageErrorStatus(err), tplLogin, gin.H{"Error": err.Error(), "Username": form.Username})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) signupPage(c *gin.Context) {
	c.HTML(http.StatusOK, tplSignup, gin.H{})
}

func (h *Handler) signupSubmit(c *gin.Context) {
	var form models.Registration
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, tplSignup, gin.H{"Error": errMissingSignup, "Form": form})
		return
	}

	if _, err := h.pageClient(c).Register(requestContext(c), form); err != nil {
		if h.log != nil {
			h.log.Infow("page_signup_failed", "username", form.Username, "err", err)
		}
		c.HTML(pageErrorStatus(err), tplSignup, gin.H{"Error": err.Error(), "Form": form})
		return
	}
	c.Redirect(http.StatusSeeOther, client.LoginPath+"?registered=1")
}

func (h *Handler) logout(c *gin.Context) {
	h.pageClient(c).Logout()
	c.Redirect(http.StatusSeeOther, client.LoginPath)
}

// homePage shows the landing links to visitors and the feed to signed-in users.
func (h *Handler) homePage(c *gin.Context) {
	pc := h.pageClient(c)
	token, ok := pc.Store().Get()
	if !ok {
		c.HTML(http.StatusOK, tplHome, gin.H{"Authenticated": false})
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	var (
		me   *models.UserProfile
		feed *models.PostPage
	)
	g, ctx := errgroup.WithContext(requestContext(c))
	g.Go(func() error {
		var err error
		me, err = pc.CurrentUser(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		feed, err = pc.Posts(ctx, page, 0)
		return err
	})
	data := gin.H{"Authenticated": true, "SignedInAs": session.Describe(token).Username}
	if err := g.Wait(); err != nil {
		h.renderError(c, tplHome, err, data)
		return
	}

	data["Me"] = me
	data["Feed"] = feed
	data["NextPage"] = feed.Page + 1
	c.HTML(http.StatusOK, tplHome, data)
}

func (h *Handler) createPost(c *gin.Context) {
	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if _, err := h.pageClient(c).CreatePost(requestContext(c), content); err != nil {
		h.renderError(c, tplError, err, nil)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) likePost(c *gin.Context) {
	h.postAction(c, (*client.Client).Like)
}

func (h *Handler) unlikePost(c *gin.Context) {
	h.postAction(c, (*client.Client).Unlike)
}

func (h *Handler) postAction(c *gin.Context, call func(*client.Client, context.Context, int64) error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusBadRequest, tplError, gin.H{"Error": errBadID})
		return
	}
	if err := call(h.pageClient(c), requestContext(c), id); err != nil {
		h.renderError(c, tplError, err, nil)
		return
	}
	backTo(c, "/")
}

func (h *Handler) profilePage(c *gin.Context) {
	username := c.Param("username")
	pc := h.pageClient(c)
	token, _ := pc.Store().Get()

	page, _ := strconv.Atoi(c.Query("page"))
	var (
		profile *models.UserProfile
		posts   *models.PostPage
	)
	g, ctx := errgroup.WithContext(requestContext(c))
	g.Go(func() error {
		var err error
		profile, err = pc.UserProfile(ctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = pc.UserPosts(ctx, username, page, 0)
		return err
	})
	signedInAs := session.Describe(token).Username
	data := gin.H{"Username": username, "SignedInAs": signedInAs}
	if err := g.Wait(); err != nil {
		h.renderError(c, tplProfile, err, data)
		return
	}

	data["Profile"] = profile
	data["Posts"] = posts
	data["IsSelf"] = signedInAs != "" && signedInAs == profile.Username
	c.HTML(http.StatusOK, tplProfile, data)
}

func (h *Handler) followUser(c *gin.Context) {
	h.followAction(c, (*client.Client).Follow)
}

func (h *Handler) unfollowUser(c *gin.Context) {
	h.followAction(c, (*client.Client).Unfollow)
}

func (h *Handler) followAction(c *gin.Context, call func(*client.Client, context.Context, int64) error) {
	username := c.Param("username")
	id, err := strconv.ParseInt(c.PostForm("userId"), 10, 64)
	if err != nil {
		c.HTML(http.StatusBadRequest, tplError, gin.H{"Error": errBadID})
		return
	}
	if err := call(h.pageClient(c), requestContext(c), id); err != nil {
		h.renderError(c, tplError, err, nil)
		return
	}
	c.Redirect(http.StatusSeeOther, "/users/"+url.PathEscape(username))
}
