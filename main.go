package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"perrada/internal/cart"
	"perrada/internal/catalog"
	"perrada/internal/checkout"
	"perrada/internal/config"
	"perrada/internal/database"
	"perrada/internal/handlers"
	"perrada/internal/imagegen"
	"perrada/internal/imagehost"
	"perrada/internal/middleware"
	"perrada/internal/orders"
	"perrada/internal/store"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal(err)
	}
	cfg := config.AppEnv
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureCategoryIndexes(db); err != nil {
		log.Printf("⚠️ category index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("⚠️ product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}

	products := store.NewMongoProducts(db)
	categories := store.NewMongoCategories(db)
	orderRepo := store.NewMongoOrders(db)
	settings := store.NewMongoSettings(db)

	carts := cart.NewRegistry()
	catalogSvc := catalog.NewService(products, categories, store.NewMongoCatalog(db))
	checkoutSvc := checkout.NewService(carts, orderRepo, settings)

	hub := orders.NewHub()
	board := orders.NewBoard()
	orderSvc := orders.NewService(orderRepo, board, hub, cfg.OrderStatusWrites)
	watcher := orders.NewWatcher(orderRepo, board, hub, orders.NewNotifier(hub))
	go watcher.Run(ctx)

	if !cfg.OrderStatusWrites {
		log.Println("⚠️ ORDER_STATUS_WRITES is off: status changes stay on the board only")
	}

	var (
		images imagehost.Host
		signer handlers.UploadSigner
	)
	cloudCfg := imagehost.CloudinaryConfig{
		CloudName:    cfg.CloudinaryCloudName,
		APIKey:       cfg.CloudinaryAPIKey,
		APISecret:    cfg.CloudinaryAPISecret,
		UploadPreset: cfg.CloudinaryUploadPreset,
		Folder:       cfg.CloudinaryFolder,
	}
	if cloudCfg.Enabled() {
		cld, err := imagehost.NewCloudinary(cloudCfg)
		if err != nil {
			log.Fatal(err)
		}
		images = cld
		if cloudCfg.Signed() {
			signer = cld
		}
		log.Println("images: cloudinary cloud", cfg.CloudinaryCloudName)
	} else {
		images = imagehost.NewLocal(cfg.UploadDir)
		log.Println("images: local disk at", cfg.UploadDir)
	}

	var generator imagegen.Generator
	if cfg.GeminiAPIKey != "" {
		gen, err := imagegen.NewGemini(ctx, cfg.GeminiAPIKey, cfg.ImageModel)
		if err != nil {
			log.Printf("⚠️ image generation disabled: %v", err)
		} else {
			generator = gen
		}
	}

	orderDeps := handlers.OrderDeps{
		Service:  orderSvc,
		Orders:   orderRepo,
		Settings: settings,
		Hub:      hub,
		Location: cfg.Location,
	}

	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Static(imagehost.PublicPrefix, cfg.UploadDir)

	r.GET("/healthz", handlers.Health(client))

	r.POST("/auth/session", handlers.CreateSession(cfg.JWTSecret, cfg.SessionTokenTTL))
	r.POST("/admin/login", handlers.AdminLogin(cfg.JWTSecret, cfg.SessionTokenTTL, cfg.AdminPasscodeHash))

	r.GET("/products", handlers.GetProducts(catalogSvc))
	r.GET("/categories", handlers.GetCategories(catalogSvc))
	r.GET("/shop", handlers.GetShop(settings))

	session := r.Group("/")
	session.Use(middleware.SessionAuth(cfg.JWTSecret))
	{
		session.GET("/cart", handlers.GetCart(carts))
		session.POST("/cart/items", handlers.AddCartItem(carts, products, settings))
		session.PUT("/cart/items/:productId", handlers.UpdateCartItem(carts))
		session.DELETE("/cart/items/:productId", handlers.RemoveCartItem(carts))
		session.DELETE("/cart", handlers.ClearCart(carts))
		session.POST("/checkout", handlers.Checkout(checkoutSvc, cfg.TransferAccounts))
	}

	r.GET("/admin/api/stream", middleware.StreamAuth(cfg.JWTSecret), handlers.StreamOrders(orderDeps))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAllProducts(catalogSvc))
		admin.POST("/products", handlers.CreateProduct(catalogSvc))
		admin.PUT("/products/:id", handlers.UpdateProduct(catalogSvc))
		admin.DELETE("/products/:id", handlers.DeleteProduct(catalogSvc, images))
		admin.POST("/products/generate-image", handlers.GenerateImage(generator))

		admin.GET("/categories", handlers.GetAllCategories(catalogSvc))
		admin.POST("/categories", handlers.CreateCategory(catalogSvc))
		admin.PUT("/categories/:id", handlers.UpdateCategory(catalogSvc))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(catalogSvc))
		admin.POST("/catalog/reset", handlers.ResetCatalog(catalogSvc))

		admin.POST("/uploads", handlers.UploadImage(images))
		admin.GET("/uploads/signature", handlers.UploadSignature(signer))

		admin.GET("/settings", handlers.GetSettings(settings))
		admin.PUT("/settings", handlers.UpdateSettings(settings, carts))

		admin.GET("/orders", handlers.ListOrders(orderDeps))
		admin.GET("/orders/board", handlers.GetBoard(orderDeps))
		admin.POST("/orders/:id/advance", handlers.AdvanceOrder(orderDeps))
		admin.POST("/orders/:id/forward", handlers.ForwardOrder(orderDeps))
		admin.POST("/orders/:id/back", handlers.BackOrder(orderDeps))
		admin.GET("/orders/:id/ticket", handlers.GetTicket(orderDeps))

		admin.GET("/dashboard", handlers.GetDashboard(orderDeps))
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		log.Println("listening on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	orderSvc.Wait()
}
