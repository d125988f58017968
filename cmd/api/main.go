package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rentpal/rentpal-api/internal/config"
	"github.com/rentpal/rentpal-api/internal/infrastructure/google"
	"github.com/rentpal/rentpal-api/internal/infrastructure/postgres"
	s3infra "github.com/rentpal/rentpal-api/internal/infrastructure/s3"
	"github.com/rentpal/rentpal-api/internal/infrastructure/smtp"
	"github.com/rentpal/rentpal-api/internal/infrastructure/token"
	transporthttp "github.com/rentpal/rentpal-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	tokens, err := token.NewProvider(cfg)
	if err != nil {
		log.Fatalf("token provider: %v", err)
	}

	s3Client := s3infra.NewClient(cfg)

	deps := &transporthttp.Deps{
		UserRepo:    postgres.NewUserRepo(pool),
		OTPRepo:     postgres.NewOTPRepo(pool),
		StateRepo:   postgres.NewOAuthStateRepo(pool),
		ListingRepo: postgres.NewListingRepo(pool),
		PhotoStore:  s3infra.NewStore(s3Client, cfg.S3BucketName),
		Mailer:      smtp.NewMailer(cfg),
		Tokens:      tokens,
		Identity:    google.NewAdapter(cfg),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
