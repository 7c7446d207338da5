// Package mockmall is a self-contained TomatoMall backend implementing the
// wire contract the SDK targets: accounts, products, cart, checkout, orders,
// payment gateway and coupons. The integration tests run against it through
// httptest, and cmd/mockmall serves it standalone for local development.
//
// Response wrapping intentionally reproduces the production backend's
// inconsistency: checkout, top-up and pay payloads are double-wrapped
// ({data:{data:...}}), everything else single-wrapped.
package mockmall

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Config struct {
	DBPath    string
	JWTSecret string
}

type Server struct {
	db     *gorm.DB
	engine *gin.Engine
	secret string
	log    *zap.Logger
}

func NewServer(cfg Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dsn := cfg.DBPath
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:     db,
		secret: cfg.JWTSecret,
		log:    log,
	}
	s.engine = s.buildRouter()
	return s, nil
}

// Handler exposes the server as an http.Handler for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until the process exits.
func (s *Server) Run(addr string) error { return s.engine.Run(addr) }

// DB exposes the underlying store so tests can seed and inspect state.
func (s *Server) DB() *gorm.DB { return s.db }

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "token"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		accounts := api.Group("/accounts")
		{
			accounts.POST("", s.register)
			accounts.POST("/login", s.login)
			accounts.GET("/:username", s.auth(), s.getAccount)
			accounts.PUT("", s.auth(), s.updateAccount)
		}

		products := api.Group("/products")
		{
			products.GET("", s.listProducts)
			products.GET("/:id", s.getProduct)
			products.POST("", s.auth(), s.admin(), s.createProduct)
			products.PUT("", s.auth(), s.admin(), s.updateProduct)
			products.DELETE("/:id", s.auth(), s.admin(), s.deleteProduct)
			products.GET("/stockpile/:productId", s.getStockpile)
			products.PATCH("/stockpile/:productId", s.auth(), s.admin(), s.adjustStockpile)
		}

		cart := api.Group("/cart", s.auth())
		{
			cart.POST("", s.addCartItem)
			cart.DELETE("/:cartItemId", s.deleteCartItem)
			cart.DELETE("", s.clearCart)
			cart.PATCH("/:cartItemId", s.adjustCartItem)
			cart.GET("", s.getCart)
			cart.POST("/checkout", s.checkout)
			cart.POST("/tomato", s.buyTomato)
		}

		orders := api.Group("/orders")
		{
			orders.POST("/:orderId/pay", s.auth(), s.payOrder)
			orders.DELETE("/:orderId", s.auth(), s.cancelOrder)
			orders.GET("/:orderId/status", s.auth(), s.orderStatus)
			orders.GET("", s.auth(), s.listOrders)
			// Provider callback, no session.
			orders.POST("/notify", s.paymentNotify)
		}

		coupons := api.Group("/coupons", s.auth())
		{
			coupons.POST("/template", s.admin(), s.createCouponTemplate)
			coupons.GET("/template/all", s.listCouponTemplates)
			coupons.GET("/template/:templateId", s.getCouponTemplate)
			coupons.GET("/all", s.myCoupons)
			coupons.POST("/:templateId", s.claimCoupon)
			coupons.GET("/check/:templateId", s.couponClaimed)
		}
	}

	// Stand-in payment provider: receives the auto-submit form and confirms
	// the trade immediately.
	router.POST("/gateway/pay", s.gatewayPay)

	return router
}
