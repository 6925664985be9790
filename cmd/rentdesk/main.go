package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"rentdesk/internal/alerting"
	"rentdesk/internal/api"
	"rentdesk/internal/config"
	"rentdesk/internal/events"
	"rentdesk/internal/logging"
	"rentdesk/internal/sink"
	"rentdesk/internal/store"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to the back-office database (read-only)
	st, err := store.New(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer st.Close()

	// Desktop sink: the dashboard WebSocket hub
	hub := api.NewHub(logger)
	sinks := sink.Fanout{hub}

	// Optional Telegram sink
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		tg, err := sink.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.RateLimit.TelegramPerSecond, logger)
		if err != nil {
			logger.Errorf("Telegram sink disabled: %v", err)
		} else {
			sinks = append(sinks, tg)
		}
	}

	// Alert engine
	engine := alerting.New(st, sinks, logger, alerting.Options{
		PollInterval:   cfg.Alerting.PollInterval,
		BillFetchLimit: cfg.Alerting.BillFetchLimit,
		MediumPushCap:  cfg.Alerting.MediumPushCap,
		SummaryMin:     cfg.Alerting.SummaryMin,
		SummaryDelay:   cfg.Alerting.SummaryDelay,
	})
	hub.Bind(engine)
	engine.OnSnapshot(hub.PublishSnapshot)
	engine.OnNavigate(hub.PublishNavigate)

	var wg sync.WaitGroup
	engine.Start(&wg)

	// Optional Kafka refresh trigger
	var consumer *events.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = events.NewConsumer([]string{cfg.Kafka.Broker}, cfg.Kafka.Topic, cfg.Kafka.GroupID, engine, logger)
		consumer.Start(&wg)
	}

	// Start API server
	handler := api.NewHandler(engine, hub, logger)
	router := api.NewRouter(logger, cfg, handler)
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	engine.Stop()
	if consumer != nil {
		consumer.Close()
	}
	wg.Wait()
	logger.Infof("Service stopped")
}
