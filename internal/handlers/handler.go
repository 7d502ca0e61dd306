package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"social_gateway/internal/logger"
	"social_gateway/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger

	// clientBaseURL is where pages reach the gateway's own /api surface.
	clientBaseURL string
	cookieSecure  bool
	httpClient    *http.Client
}

type Option func(*Handler)

// WithClientBaseURL points the pages at the /api surface they call through
// the outbound request wrapper.
func WithClientBaseURL(u string) Option {
	return func(h *Handler) { h.clientBaseURL = u }
}

func WithCookieSecure(secure bool) Option {
	return func(h *Handler) { h.cookieSecure = secure }
}

// WithHTTPClient sets the transport pages use for their API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(h *Handler) { h.httpClient = hc }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), h.requestLogger)
	router.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// JSON proxy endpoints
	h.registerAPIRoutes(router)

	// Server-rendered pages
	h.registerAuthPages(router)
	h.registerFeedPages(router)
	h.registerDiagnosticPages(router)

	// Backend health stream for the diagnostic pages
	router.GET("/ws/health", h.wsHealth)

	// Everything else under /api goes straight to the backend
	router.NoRoute(h.passThrough)
	router.NoMethod(methodNotAllowed)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/login", h.login)
		api.POST("/register", h.register)
		api.GET("/health", h.health)
		api.GET("/test", h.testGet)
		api.POST("/test", h.testPost)
	}
}

func (h *Handler) registerAuthPages(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.GET("/login", h.loginPage)
		auth.POST("/login", h.loginSubmit)
		auth.GET("/signup", h.signupPage)
		auth.POST("/signup", h.signupSubmit)
		auth.POST("/logout", h.logout)
	}
}

func (h *Handler) registerFeedPages(r *gin.Engine) {
	r.GET("/", h.homePage)

	posts := r.Group("/posts", h.requireSession)
	{
		posts.POST("", h.createPost)
		posts.POST("/:id/like", h.likePost)
		posts.POST("/:id/unlike", h.unlikePost)
	}

	users := r.Group("/users", h.requireSession)
	{
		users.GET("/:username", h.profilePage)
		users.POST("/:username/follow", h.followUser)
		users.POST("/:username/unfollow", h.unfollowUser)
	}
}

func (h *Handler) registerDiagnosticPages(r *gin.Engine) {
	r.GET("/test-api", h.testAPIPage)
	r.GET("/api-test", h.apiTestPage)
	r.POST("/api-test", h.apiTestPage)
}
