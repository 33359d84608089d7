package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"TankWatch.api/internal/simulator"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting tank sensor simulator...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	profile := simulator.DefaultProfile()
	if path := os.Getenv("SIMULATOR_PROFILE"); path != "" {
		p, err := simulator.LoadProfile(path)
		if err != nil {
			log.Fatalf("Failed to load profile: %v", err)
		}
		profile = p
	}
	if target := os.Getenv("SIMULATOR_TARGET"); target != "" {
		profile.Target = target
	}

	sim := simulator.New(profile, time.Now().UnixNano())
	tick := func() {
		ctx, cancel := context.WithTimeout(context.Background(), profile.Timeout)
		defer cancel()
		if err := sim.Tick(ctx); err != nil {
			log.Printf("Send failed: %v", err)
		}
	}

	// Send once immediately on startup
	tick()

	c := cron.New()
	if _, err := c.AddFunc(profile.Schedule, tick); err != nil {
		log.Fatalf("Failed to set up cron job: %v", err)
	}
	log.Printf("Posting readings to %s on schedule %q", profile.Target, profile.Schedule)
	c.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	<-c.Stop().Done()
	log.Println("Simulator stopped")
}
