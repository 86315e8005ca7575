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

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tdnguyen/pawnshop-engine/internal/config"
	"github.com/tdnguyen/pawnshop-engine/internal/handler"
	"github.com/tdnguyen/pawnshop-engine/internal/repository"
	"github.com/tdnguyen/pawnshop-engine/internal/service"
	"github.com/tdnguyen/pawnshop-engine/pkg/response"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	contractRepo := repository.NewContractRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	contractService := service.NewContractService(contractRepo, paymentRepo, redisClient, cfg)
	contractHandler := handler.NewContractHandler(contractService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	router := setupRoutes(contractHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.LoggingMiddleware(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(contractHandler *handler.ContractHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()

	// Health and metrics
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/contracts", contractHandler.CreateContract).Methods("POST")
	api.HandleFunc("/contracts", contractHandler.ListContracts).Methods("GET")
	api.HandleFunc("/contracts/{contractId}", contractHandler.GetContract).Methods("GET")
	api.HandleFunc("/contracts/{contractId}", contractHandler.UpdateContract).Methods("PUT")
	api.HandleFunc("/contracts/{contractId}", contractHandler.DeleteContract).Methods("DELETE")
	api.HandleFunc("/contracts/{contractId}/interest", contractHandler.SettleInterest).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/principal", contractHandler.AdjustPrincipal).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/payoff", contractHandler.GetPayoff).Methods("GET")
	api.HandleFunc("/contracts/{contractId}/redeem", contractHandler.Redeem).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/liquidate", contractHandler.Liquidate).Methods("POST")
	api.HandleFunc("/dashboard", contractHandler.Dashboard).Methods("GET")

	return router
}
