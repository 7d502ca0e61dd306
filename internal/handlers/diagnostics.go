package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"social_gateway/internal/client"
	"social_gateway/internal/models"
	"social_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// Diagnostic page templates and actions.
const (
	tplTestAPI = "test_api.html"
	tplAPITest = "api_test.html"

	actionRoute         = "route"
	actionLogin         = "login"
	actionRegister      = "register"
	actionBackendHealth = "backend-health"
	actionDirect        = "direct"
	actionRegisterRoute = "register-route"
	actionHealth        = "health"
	actionManual        = "manual"

	diagPassword = "password123"
	diagUsername = "testuser"
)

// testAPIPage exercises the gateway's own /api/test and /api/login routes
// and prints whatever came back.
func (h *Handler) testAPIPage(c *gin.Context) {
	pc := h.pageClient(c)
	ctx := requestContext(c)
	data := gin.H{"Now": time.Now().UTC().Format(time.RFC3339), "PageURL": c.Request.URL.String()}

	switch c.Query("action") {
	case actionRoute:
		env, err := pc.Test(ctx, nil)
		if err != nil {
			data["Error"] = fmt.Sprintf("Error testing API: %v", err)
			break
		}
		data["TestResult"] = rawOrIndented(env)
	case actionLogin:
		// Sent through Send so the page never stores the test user's token.
		env, err := pc.Send(ctx, http.MethodPost, "/login", models.Credentials{Username: diagUsername, Password: diagPassword})
		if err != nil {
			data["Error"] = fmt.Sprintf("Error testing login API: %v", err)
			break
		}
		data["LoginResult"] = rawOrIndented(env)
	}
	c.HTML(http.StatusOK, tplTestAPI, data)
}

// apiTestPage fires registration and health requests by several routes and
// prints status plus body for each.
func (h *Handler) apiTestPage(c *gin.Context) {
	pc := h.pageClient(c)
	ctx := requestContext(c)

	id := time.Now().UnixMilli()
	username := fmt.Sprintf("%s%d", diagUsername, id)
	email := username + "@example.com"
	randomUser := func(displayName string) models.Registration {
		return models.Registration{Username: username, Email: email, Password: diagPassword, DisplayName: displayName}
	}

	action := c.Query("action")
	if c.Request.Method == http.MethodPost {
		action = c.DefaultPostForm("action", actionManual)
	}

	var (
		label  string
		errTag = "Error"
		env    *models.Envelope
		err    error
	)
	switch action {
	case actionRegister:
		env, err = pc.Send(ctx, http.MethodPost, "/users", randomUser("Test User"))
	case actionBackendHealth:
		env, err = pc.Send(ctx, http.MethodGet, "/", nil)
	case actionDirect:
		label, errTag = "Direct backend test - ", "Direct backend error"
		env, err = h.directRegister(c, randomUser("Test User Direct"))
	case actionRegisterRoute:
		label, errTag = "API route test - ", "API route error"
		env, err = pc.Send(ctx, http.MethodPost, "/register", randomUser("Test User via API route"))
	case actionHealth:
		label, errTag = "Health API check - ", "Health API error"
		env, err = pc.Send(ctx, http.MethodGet, "/health", nil)
	case actionManual:
		username = c.PostForm("username")
		email = c.PostForm("email")
		env, err = pc.Send(ctx, http.MethodPost, "/users", randomUser("Test User"))
	}

	data := gin.H{"Username": username, "Email": email}
	switch {
	case err != nil:
		data["Result"] = fmt.Sprintf("%s: %v", errTag, err)
	case env != nil:
		data["Result"] = client.Describe(label, env)
	}
	c.HTML(http.StatusOK, tplAPITest, data)
}

// directRegister skips the /api surface and talks to the backend origin.
func (h *Handler) directRegister(c *gin.Context, reg models.Registration) (*models.Envelope, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return nil, err
	}
	env, err := h.services.Forward(c.Request.Context(), service.ForwardRequest{
		Method: http.MethodPost,
		Path:   backendRegisterPath,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// rawOrIndented prints a JSON body indented and anything else as received.
func rawOrIndented(env *models.Envelope) string {
	if !env.IsJSON() {
		return string(env.Raw)
	}
	out, err := json.MarshalIndent(env.Body, "", "  ")
	if err != nil {
		return string(env.Raw)
	}
	return string(out)
}
