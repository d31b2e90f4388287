package router

import (
	"net/http"

	"kvartal/internal/config"
	"kvartal/internal/db"
	"kvartal/internal/handlers"
	"kvartal/internal/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "kvartal_session"

// New builds the engine with sessions, templates, static files and all routes.
func New(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.GinLogger())
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/media"})))

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates(cfg.TemplatesDir)
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	r.Static("/static", cfg.StaticDir)
	r.Static("/media", cfg.MediaDir)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz)

	r.Use(middleware.LoadUser())
	RegisterRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "Page not found")
	})
	return r
}

func healthz(c *gin.Context) {
	if err := db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	favoriteHandler := handlers.NewFavoriteHandler()
	messageHandler := handlers.NewMessageHandler()
	profileHandler := handlers.NewProfileHandler()
	shopHandler := handlers.NewShopHandler()

	// 公共路由 (Public Routes)
	r.GET("/register", authHandler.ShowRegister) // 注册页面
	r.POST("/register", authHandler.Register)    // 提交注册
	r.GET("/login", authHandler.ShowLogin)       // 登录页面
	r.POST("/login", authHandler.Login)          // 提交登录
	r.GET("/logout", authHandler.Logout)         // 退出登录

	// 商店 (Shop)
	r.GET("/shop", shopHandler.Home)
	r.GET("/shop/category/:id", shopHandler.Category)
	r.GET("/shop/product/:id", shopHandler.Product)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/", postHandler.List)
		authorized.GET("/my-posts", postHandler.MyPosts)

		authorized.GET("/post/create", postHandler.ShowCreate)
		authorized.POST("/post/create", postHandler.Create)
		authorized.GET("/post/:id", postHandler.Detail)
		authorized.GET("/post/:id/edit", postHandler.ShowEdit)
		authorized.POST("/post/:id/edit", postHandler.Update)
		authorized.GET("/post/:id/delete", postHandler.Delete)
		authorized.POST("/post/:id/delete", postHandler.Delete)
		authorized.POST("/post/:id/like", postHandler.ToggleLike)
		authorized.POST("/post/:id/comment", commentHandler.Create)
		authorized.POST("/post/:id/toggle_favorite", favoriteHandler.Toggle)

		authorized.POST("/comment/:id/like", commentHandler.ToggleLike)
		authorized.POST("/comment/:id/delete", commentHandler.Delete)

		authorized.GET("/favorites", favoriteHandler.List)

		authorized.GET("/messages", messageHandler.List)
		authorized.GET("/messages/:recipient_id", messageHandler.List)
		authorized.GET("/messages/send/:recipient_id", messageHandler.Send)
		authorized.POST("/messages/send/:recipient_id", messageHandler.Send)

		authorized.GET("/profile", profileHandler.ShowEdit)
		authorized.POST("/profile", profileHandler.Update)
		authorized.GET("/profile/:username", profileHandler.View)
	}
}
