package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pitboss-bot/pitboss/internal/config"
	"github.com/pitboss-bot/pitboss/pkg/discord"
	"github.com/pitboss-bot/pitboss/pkg/repositories/results"
	"github.com/pitboss-bot/pitboss/pkg/repositories/user"
	"github.com/pitboss-bot/pitboss/pkg/scheduler"
	"github.com/pitboss-bot/pitboss/pkg/services/blackjack"
	"github.com/pitboss-bot/pitboss/pkg/services/economy"
	"github.com/pitboss-bot/pitboss/pkg/services/levels"
	"github.com/pitboss-bot/pitboss/pkg/services/slots"
	"github.com/pitboss-bot/pitboss/pkg/services/statistics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if cfg.IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}

	// User ledger storage
	var userRepo user.Repository
	if cfg.StorageType == "sqlite" {
		sqliteRepo, err := user.NewSQLiteRepository(cfg.DatabasePath())
		if err != nil {
			log.Errorf("Failed to initialize SQLite repository: %v", err)
			log.Println("Falling back to in-memory repository")
			userRepo = user.NewMemoryRepository()
		} else {
			userRepo = sqliteRepo
			log.Printf("Using SQLite storage at %s", cfg.DatabasePath())
		}
	} else {
		userRepo = user.NewMemoryRepository()
		log.Println("Using in-memory storage (data will be lost on restart)")
	}

	// Optional round archive
	var resultsRepo results.Repository
	if cfg.ElasticsearchURL != "" {
		esRepo, err := results.NewElasticsearchRepository(&results.ElasticsearchConfig{
			URL:      cfg.ElasticsearchURL,
			Username: cfg.ElasticsearchUsername,
			Password: cfg.ElasticsearchPassword,
		})
		if err != nil {
			log.Errorf("Failed to initialize Elasticsearch archive: %v", err)
		} else {
			resultsRepo = esRepo
			log.Printf("Archiving rounds to Elasticsearch at %s", cfg.ElasticsearchURL)
		}
	}

	// Services
	econ, err := economy.NewService(userRepo)
	if err != nil {
		log.Fatalf("Error creating economy service: %v", err)
	}

	coordinator, err := blackjack.NewCoordinator(econ, resultsRepo)
	if err != nil {
		log.Fatalf("Error creating blackjack coordinator: %v", err)
	}

	levelService, err := levels.NewService(userRepo)
	if err != nil {
		log.Fatalf("Error creating levels service: %v", err)
	}

	statsService, err := statistics.NewService(userRepo)
	if err != nil {
		log.Fatalf("Error creating statistics service: %v", err)
	}

	machine := slots.NewMachine()

	// Weekly XP reset
	sched := scheduler.NewScheduler()
	sched.AddTask("weekly-xp-reset", 7*24*time.Hour, levelService.ResetWeeklyXP)
	sched.Start(context.Background())

	bot, err := discord.NewBot(cfg.Token, cfg.GuildID, coordinator, econ, machine, levelService, statsService, resultsRepo)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	log.Println("Bot is running. Press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	sched.Stop()
	if err := bot.Stop(); err != nil {
		log.Errorf("Error stopping bot: %v", err)
	}
	if resultsRepo != nil {
		if err := resultsRepo.Close(); err != nil {
			log.Errorf("Error closing results repository: %v", err)
		}
	}
	if err := userRepo.Close(); err != nil {
		log.Errorf("Error closing user repository: %v", err)
	}
}
