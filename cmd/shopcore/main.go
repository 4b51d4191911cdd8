package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"shopcore/config"
	"shopcore/engine"
	"shopcore/messaging"
	"shopcore/ocr"
	"shopcore/store"
	"shopcore/views"
	"shopcore/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "shopcore.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("shopcore", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("shopcore: database open (%s)", cfg.Database.Driver)

	// Redis view cache. Missing redis means views are computed from SQL
	// on every request, never a startup failure.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var viewCache *views.Cache
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("shopcore: redis not available (%v), running without view cache", err)
	} else {
		log.Printf("shopcore: redis connected (%s)", cfg.Redis.Address)
		viewCache = views.NewCache(redisClient)
	}
	cancel()
	defer redisClient.Close()

	viewMgr := views.NewManager(db, viewCache)

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("shopcore: messaging connect failed (%v)", err)
	} else {
		log.Printf("shopcore: messaging connected (%s)", cfg.Messaging.Backend)
	}
	defer msgClient.Close()

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		DB:         db,
		Views:      viewMgr,
		MsgClient:  msgClient,
	})
	eng.Start()
	defer eng.Stop()

	// Change feed from peer stations
	feed := messaging.NewChangeFeedSubscriber(msgClient, cfg.Messaging.ChangesTopic, cfg.Messaging.StationID, viewMgr)
	if err := feed.Start(); err != nil {
		log.Printf("shopcore: change feed subscribe failed: %v", err)
	} else {
		log.Printf("shopcore: change feed listening on %s", cfg.Messaging.ChangesTopic)
	}

	// Machine telemetry (status reports published by the machines
	// themselves). The topic is an MQTT subscription filter, so this
	// only runs on the mqtt backend.
	if cfg.Messaging.Backend == "mqtt" {
		telemetry := messaging.NewMachineTelemetry(db, viewMgr)
		if err := telemetry.Start(msgClient, cfg.Messaging.TelemetryTopic); err != nil {
			log.Printf("shopcore: telemetry subscribe failed: %v", err)
		} else {
			log.Printf("shopcore: telemetry listening on %s", cfg.Messaging.TelemetryTopic)
		}
	}

	// Outbox drainer (outbound change feed)
	drainer := messaging.NewOutboxDrainer(db, msgClient, cfg.Messaging.OutboxDrainInterval)
	drainer.Start()
	defer drainer.Stop()

	// OCR sidecar for BOM document imports
	ocrClient := ocr.NewClient(cfg.OCR.BaseURL, cfg.OCR.Timeout)

	// Web server
	handler, stopWeb := www.NewRouter(eng, ocrClient)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("shopcore: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("shopcore: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("shopcore: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("shopcore: stopped")
}
