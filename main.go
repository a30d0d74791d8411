// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eshop/accounts"
	"eshop/cart"
	"eshop/catalog"
	"eshop/controllers"
	"eshop/pages"
	"eshop/routes"
	"eshop/store"
	"eshop/utils"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg := utils.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg utils.Config, logger *zap.Logger) error {
	// Set the JWT secret key
	if cfg.JWTSecret != "" {
		utils.JwtKey = []byte(cfg.JWTSecret)
	} else {
		logger.Warn("JWT_SECRET not set, using the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := utils.ConnectDB(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("disconnect mongo", zap.Error(err))
		}
	}()

	db := store.NewMongo(client, cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	// Initialize services
	emailService := utils.NewEmailService(cfg, logger)
	accountService := accounts.NewService(db, emailService, cfg.TokenTTL, logger)
	if err := accountService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	catalogService := catalog.NewService(db, db)
	cartEngine := cart.NewEngine(db, db)

	site, err := pages.New(cartEngine, catalogService, accountService, logger, pages.Options{
		CookieSecure: cfg.CookieSecure,
		TokenTTL:     cfg.TokenTTL,
	})
	if err != nil {
		return err
	}

	// Set up the router
	router := routes.NewRouter(logger, cfg.RequestTimeout)
	routes.RegisterRoutes(router,
		controllers.NewUserController(accountService, logger),
		controllers.NewProductController(catalogService, logger),
		controllers.NewCategoryController(catalogService, logger),
		controllers.NewCartController(cartEngine, logger),
		site,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server is running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
