package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"social_gateway/internal/models"
	"social_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// Backend paths and response messages of the proxy routes.
const (
	backendLoginPath    = "/api/auth/login"
	backendRegisterPath = "/api/users"

	statusSuccess = "success"

	errInvalidBody        = "invalid request body"
	errBackendUnavailable = "Internal server error: backend unavailable"
	errNotFound           = "not found"
	errMethodNotAllowed   = "method not allowed"

	msgTestGet  = "API route is working correctly"
	msgTestPost = "POST API route is working correctly"
)

var errInvalidJSON = errors.New("body is not valid JSON")

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err, "request_id", c.GetString(ctxRequestID)}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"message": userMsg})
}

// LoginRequest documents the login payload.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"secret"`
}

// RegisterRequest documents the registration payload.
type RegisterRequest struct {
	Username    string `json:"username" example:"alice"`
	Email       string `json:"email" example:"alice@example.com"`
	Password    string `json:"password" example:"secret"`
	DisplayName string `json:"displayName" example:"Alice"`
}

// @Summary      Log in
// @Description  Forwards the credentials to the backend and relays its answer unchanged
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /api/login [post]
func (h *Handler) login(c *gin.Context) {
	h.forwardJSON(c, backendLoginPath, "proxy_login")
}

// @Summary      Register
// @Description  Forwards the new account to the backend and relays its answer unchanged
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "New account"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /api/register [post]
func (h *Handler) register(c *gin.Context) {
	h.forwardJSON(c, backendRegisterPath, "proxy_register")
}

// forwardJSON relays a JSON request body to backendPath with POST. Caller
// headers are not relayed; credentials travel in the body only.
func (h *Handler) forwardJSON(c *gin.Context, backendPath, logKey string) {
	body, err := io.ReadAll(c.Request.Body)
	if err == nil && !json.Valid(bytes.TrimSpace(body)) {
		err = errInvalidJSON
	}
	if err != nil {
		if h.log != nil {
			h.log.Infow(logKey+"_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidBody})
		return
	}

	h.forward(c, service.ForwardRequest{
		Method: http.MethodPost,
		Path:   backendPath,
		Body:   body,
	}, logKey)
}

func (h *Handler) forward(c *gin.Context, fr service.ForwardRequest, logKey string) {
	env, err := h.services.Forward(c.Request.Context(), fr)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errBackendUnavailable, logKey+"_backend_unreachable", err,
			"method", fr.Method, "path", fr.Path)
		return
	}
	if h.log != nil {
		h.log.Debugw(logKey+"_relayed", "path", fr.Path, "status", env.Status)
	}
	relay(c, env)
}

// relay writes the backend answer with the backend status: JSON bytes
// unchanged, anything else wrapped as {"raw": text}.
func relay(c *gin.Context, env models.Envelope) {
	if env.IsJSON() {
		c.Data(env.Status, "application/json; charset=utf-8", env.Raw)
		return
	}
	c.JSON(env.Status, gin.H{models.RawKey: string(env.Raw)})
}

// passThrough forwards any other /api request with its method, query string,
// body and Authorization header.
func (h *Handler) passThrough(c *gin.Context) {
	path := c.Request.URL.Path
	if path != "/api" && !strings.HasPrefix(path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"message": errNotFound})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidBody})
		return
	}
	h.forward(c, service.ForwardRequest{
		Method:   c.Request.Method,
		Path:     path,
		RawQuery: c.Request.URL.RawQuery,
		Body:     body,
		Header:   c.Request.Header,
	}, "proxy_pass")
}

// methodNotAllowed answers wrong-method calls to gateway routes so they never
// fall through to the pass-through.
func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"message": errMethodNotAllowed})
}

// @Summary      Health check
// @Description  Frontend is always ok; backend is probed with GET /api/users
// @Tags         system
// @Produce      json
// @Success      200  {object}  models.HealthReport
// @Router       /api/health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Check(c.Request.Context()))
}

// @Summary      Test route
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/test [get]
func (h *Handler) testGet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    statusSuccess,
		"message":   msgTestGet,
		"timestamp": time.Now().UTC(),
	})
}

// @Summary      Test route echo
// @Description  Echoes the JSON body back as receivedData; an unparseable body is echoed as {}
// @Tags         system
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/test [post]
func (h *Handler) testPost(c *gin.Context) {
	var received any = map[string]any{}
	if body, err := io.ReadAll(c.Request.Body); err == nil && len(bytes.TrimSpace(body)) > 0 {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			received = v
		} else if h.log != nil {
			h.log.Infow("api_test_bad_body", "err", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       statusSuccess,
		"message":      msgTestPost,
		"receivedData": received,
		"timestamp":    time.Now().UTC(),
	})
}
