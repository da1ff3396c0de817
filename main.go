package main

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/kipsang/customer-orders-api/internal/config"
	"github.com/kipsang/customer-orders-api/internal/db"
	"github.com/kipsang/customer-orders-api/internal/handlers"
	"github.com/kipsang/customer-orders-api/internal/middleware"
	"github.com/kipsang/customer-orders-api/internal/services"
	"github.com/kipsang/customer-orders-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err)
	}

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal(err)
	}

	smsService := services.NewSMSService(cfg.ATUsername, cfg.ATAPIKey, cfg.ATSenderID)

	customerHandler := handlers.NewCustomerHandler(database)
	orderHandler := handlers.NewOrderHandler(database, smsService)
	authHandler := handlers.NewAuthHandler(cfg)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte(cfg.SecretKey))))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/login", authHandler.Login)
	r.GET("/authorize", authHandler.Authorize)
	r.GET("/logout", authHandler.Logout)

	guard := middleware.AuthRequired(middleware.Policy(cfg.AuthPolicy), []byte(cfg.JWTSecret), "/login")

	customers := r.Group("/customers")
	customers.Use(guard)
	{
		customers.POST("/register", customerHandler.RegisterCustomer)
		customers.GET("/view_customers", customerHandler.ViewCustomers)
		customers.GET("/view_customers/:id", customerHandler.ViewCustomer)
		customers.PUT("/update_customers/:id", customerHandler.UpdateCustomer)
		customers.DELETE("/delete_customers/:id", customerHandler.DeleteCustomer)
	}

	orders := r.Group("/orders")
	orders.Use(guard)
	{
		orders.POST("/place_order", orderHandler.PlaceOrder)
		orders.GET("/view_orders", orderHandler.ViewOrders)
		orders.GET("/view_orders/:customer_id", orderHandler.ViewOrders)
		orders.PUT("/update_orders/:id", orderHandler.UpdateOrder)
		orders.DELETE("/delete_orders/:id", orderHandler.DeleteOrder)
	}

	logger.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal(err)
	}
}
