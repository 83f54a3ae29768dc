// cmd/monitor/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/PMacajol/Agro-MAGU/internal/alerting"
	"github.com/PMacajol/Agro-MAGU/internal/anomaly"
	"github.com/PMacajol/Agro-MAGU/internal/api"
	"github.com/PMacajol/Agro-MAGU/internal/auth"
	"github.com/PMacajol/Agro-MAGU/internal/config"
	"github.com/PMacajol/Agro-MAGU/internal/monitor"
	"github.com/PMacajol/Agro-MAGU/internal/notify"
	"github.com/PMacajol/Agro-MAGU/internal/recommend"
	"github.com/PMacajol/Agro-MAGU/internal/sensor"
	"github.com/PMacajol/Agro-MAGU/internal/storage"
	"github.com/PMacajol/Agro-MAGU/internal/websocket"
)

func main() {
	configPath := flag.String("config", ".", "Path to the configuration file directory")
	hashPassword := flag.String("hash-password", "", "Print a bcrypt hash for auth.users and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize Components ---
	hub := websocket.NewHub()
	go hub.Run(ctx)

	var archive *storage.RedisArchive
	if cfg.Redis.Addr != "" {
		archive, err = storage.NewRedisArchive(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.MaxItems)
		if err != nil {
			log.Printf("Redis archive disabled: %v", err)
			archive = nil
		} else {
			defer archive.Close()
			log.Printf("Archiving alerts to Redis at %s", cfg.Redis.Addr)
		}
	}

	var influx *storage.InfluxRecorder
	if cfg.Influx.URL != "" && cfg.Influx.Token != "" {
		influx = storage.NewInfluxRecorder(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		defer influx.Close()
		log.Printf("Recording readings to InfluxDB bucket %q", cfg.Influx.Bucket)
	}

	sensorClient := sensor.NewClient(cfg.Sensor.URL, cfg.Sensor.Timeout)
	detector := anomaly.NewDetector(cfg.Thresholds, cfg.Monitor.ThresholdPolicy)

	provider, closeProvider, err := buildProvider(ctx, cfg.Recommendation)
	if err != nil {
		log.Printf("Recommendation provider disabled, fallback templates only: %v", err)
	}
	defer closeProvider()
	advisor := recommend.NewAdvisor(provider)

	notifier := buildNotifier(cfg.Notify)

	// Typed nils must not reach the interfaces below.
	var alertArchive alerting.Archive
	var archiveReader api.AlertArchive
	if archive != nil {
		alertArchive = archive
		archiveReader = archive
	}
	var readingStore alerting.ReadingStore
	if influx != nil {
		readingStore = influx
	}

	poller := monitor.NewPoller(sensorClient, detector, advisor, notifier, monitor.Options{
		AnnounceStart: cfg.Monitor.AnnounceStart,
		CycleTimeout:  cfg.Monitor.CycleTimeout,
		HistorySize:   cfg.Monitor.HistorySize,
		Recorder:      alerting.NewReadingFeed(hub, readingStore),
		Publisher:     alerting.NewAlerter(hub, alertArchive),
	})

	authManager := auth.NewManager(cfg.Auth)
	if !authManager.Enabled() {
		log.Println("WARNING: no JWT secret or API key configured, control endpoints will reject every request")
	}

	apiHandler := api.NewAPIHandler(poller, sensorClient, detector, advisor, archiveReader, authManager, cfg.Monitor.Interval())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.SetupRouter(apiHandler, hub, cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting monitoring API on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	if cfg.Monitor.Autostart {
		poller.Start(cfg.Monitor.Interval())
	}

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Println("Shutting down...")
	poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Monitor stopped")
}

// buildProvider picks the language model backend. A configured backend is
// always built; without a key its calls fail with ErrNotConfigured and the
// advisor falls back to templates. A nil provider means templates only.
func buildProvider(ctx context.Context, cfg config.RecommendationConfig) (recommend.Provider, func(), error) {
	noop := func() {}

	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiKey == "" {
			log.Println("WARNING: gemini selected without an API key, recommendations will use fallback templates")
		}
		p, err := recommend.NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		return p, func() { p.Close() }, nil
	case "openrouter":
		if cfg.OpenRouterKey == "" {
			log.Println("WARNING: openrouter selected without an API key, recommendations will use fallback templates")
		}
		return recommend.NewOpenRouterProvider(recommend.OpenRouterOptions{
			BaseURL: cfg.OpenRouterURL,
			APIKey:  cfg.OpenRouterKey,
			Model:   cfg.OpenRouterModel,
			Referer: cfg.Referer,
			Title:   cfg.Title,
			Timeout: cfg.Timeout,
		}), noop, nil
	case "", "none":
		return nil, noop, recommend.ErrNotConfigured
	default:
		return nil, noop, fmt.Errorf("unknown recommendation provider %q", cfg.Provider)
	}
}

func buildNotifier(cfg config.NotifyConfig) notify.Notifier {
	switch cfg.Channel {
	case "email":
		log.Printf("Notifications via email to %d recipients", len(cfg.Email.To))
		return notify.NewEmailNotifier(cfg.Email.Host, cfg.Email.Port, cfg.Email.Username, cfg.Email.Password, cfg.Email.To)
	case "none":
		log.Println("Notifications disabled")
		return nil
	default:
		return notify.NewTelegramNotifier(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Timeout)
	}
}
