package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/conf"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	bc, err := conf.Load(flagconf)
	if err != nil {
		panic(err)
	}
	if err := bc.Validate(); err != nil {
		panic(err)
	}

	app, cleanup, err := wireApp(bc)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	scheduler := cron.New(cron.WithSeconds())

	// Expiry sweep: flips active subscriptions past the grace window to expired.
	_, err = scheduler.AddFunc(constants.ExpirySweepSpec, func() {
		log.Println("[CRON] Starting subscription expiry sweep...")
		ctx, cancel := context.WithTimeout(context.Background(), constants.ExpirySweepTimeout)
		defer cancel()

		count, userIDs, err := app.subscriptionUsecase.SweepExpired(ctx)
		if err != nil {
			log.Printf("[CRON] Error sweeping expired subscriptions: %v", err)
			return
		}
		log.Printf("[CRON] Expired %d subscriptions: %v", count, userIDs)
		log.Println("[CRON] Finished subscription expiry sweep")
	})
	if err != nil {
		log.Printf("Failed to add expiry sweep job: %v", err)
	}

	scheduler.Start()
	log.Println("========================================")
	log.Println("Cron jobs started successfully")
	log.Println("Scheduled jobs:")
	log.Println("  - Expiry sweep:  Every hour at :00")
	log.Println("========================================")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	ctx := scheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Cron jobs forced to stop after timeout")
	}
}
