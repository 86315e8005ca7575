package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/tdnguyen/pawnshop-engine/internal/config"
	"github.com/tdnguyen/pawnshop-engine/internal/repository"
	"github.com/tdnguyen/pawnshop-engine/internal/service"
)

func main() {
	log.Println("Starting pawnshop scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	contractRepo := repository.NewContractRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	contractService := service.NewContractService(contractRepo, paymentRepo, redisClient, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, cfg, contractService)

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, contractService *service.ContractService) {
	// Daily snapshot of the dashboard aggregates. Overdue is never written
	// back to contract rows; this refreshes the derived counts in redis as
	// the day rolls over.
	_, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		stats, err := contractService.SnapshotDashboard(ctx)
		if err != nil {
			log.Printf("Dashboard snapshot failed: %v", err)
			return
		}
		log.Printf("Dashboard snapshot: %d active, %d overdue, %d redeemed, %s loaned",
			stats.ActiveCount, stats.OverdueCount, stats.RedeemedCount, stats.TotalLoaned)
	})
	if err != nil {
		log.Fatalf("Error scheduling dashboard snapshot job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
