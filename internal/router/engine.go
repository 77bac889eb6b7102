package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/Daviipontes/Dev-Web/pkg/account"
	"github.com/Daviipontes/Dev-Web/pkg/ai"
	"github.com/Daviipontes/Dev-Web/pkg/cart"
	"github.com/Daviipontes/Dev-Web/pkg/catalog"
	"github.com/Daviipontes/Dev-Web/pkg/checkout"
	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/store"
)

// Handler carries the services every route needs.
type Handler struct {
	Store      *store.Store
	Catalog    *catalog.Service
	Carts      *cart.Service
	Checkout   *checkout.Service
	Accounts   *account.Service
	Reports    *ai.Client
	Sessions   sessions.Store
	UploadsDir string
}

func NewSessionStore(cfg *global.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	sessionStore.Options.MaxAge = int((30 * 24 * time.Hour).Seconds())
	return sessionStore
}

func InitEngine(cfg *global.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(LoggingMiddleware(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", SessionHeader},
		ExposeHeaders:    []string{"Content-Length", SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = 32 << 20
	return router
}

func InitializeRoutes(router *gin.Engine, h *Handler) {
	router.Static("/uploads", h.UploadsDir)

	api := router.Group("/api")
	api.Use(h.SessionMiddleware())
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/locations", h.GetLocations)

		products := api.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.POST("", h.CreateProduct)
			products.GET("/:id", h.GetProductByID)
			products.PUT("/:id", RequireLogin(), h.EditProductByID)
			products.DELETE("/:id", RequireLogin(), h.DeleteProductByID)
		}

		cartGroup := api.Group("/cart")
		{
			cartGroup.GET("", h.GetCart)
			cartGroup.PUT("", h.SetCartItem)
			cartGroup.DELETE("", h.ClearCart)
			cartGroup.POST("/buy-now", h.BuyNow)
			cartGroup.DELETE("/:id", h.RemoveFromCart)
		}

		api.POST("/checkout", h.SubmitCheckout)

		api.POST("/signup", h.Signup)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)

		me := api.Group("")
		me.Use(RequireLogin())
		{
			me.GET("/recent-purchases", h.GetRecentPurchases)
			me.GET("/profile-details", h.GetProfileDetails)
			me.PUT("/profile", h.UpdateProfile)
			me.PUT("/profile/shipping-address", h.UpdateShippingAddress)
			me.PUT("/profile/password", h.ChangePassword)
		}

		admin := api.Group("/admin")
		admin.Use(RequireLogin(), h.RequireAdmin())
		{
			admin.GET("/orders", h.GetAllOrders)
			admin.GET("/reports/sales", h.GenerateSalesReport)
		}
	}
}
