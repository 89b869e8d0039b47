package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"previewServer/backend/config"
	"previewServer/backend/internal/broadcast"
	"previewServer/backend/internal/cache"
	"previewServer/backend/internal/httpapi/handlers"
	"previewServer/backend/internal/prefs"
	"previewServer/backend/internal/store"
	"previewServer/backend/internal/story"
	"previewServer/backend/internal/telemetry"
	"previewServer/backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("init config failed: %v", err)
	}
	log.Printf("config: port=%d origin=%s ackTimeout=%dms debounce=%dms",
		cfg.Running.Port, cfg.App.Origin, cfg.App.AckTimeoutMS, cfg.App.DebounceMS)

	ackTimeout := time.Duration(cfg.App.AckTimeoutMS) * time.Millisecond
	debounce := time.Duration(cfg.App.DebounceMS) * time.Millisecond
	presenceTTL := time.Duration(cfg.App.PresenceTTLSeconds) * time.Second

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	presence := cache.NewRedisPresence(rdb)
	prefsStore := prefs.NewStore(cache.NewRedisStorage(rdb))

	var storyStore *store.StoryStore
	var auditStore *store.BroadcastAuditStore
	if cfg.Mysql.DSN != "" {
		db, err := sql.Open("mysql", cfg.Mysql.DSN)
		if err != nil {
			log.Fatalf("failed to connect to mysql: %v", err)
		}
		defer db.Close()
		auditStore = store.NewBroadcastAuditStore(db)
		if err := auditStore.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("failed to create audit schema: %v", err)
		}

		gormDB, err := store.InitMySQL(cfg.Mysql.DSN)
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}
		storyStore = store.NewStoryStore(gormDB)
		if err := storyStore.Migrate(); err != nil {
			log.Fatalf("failed to migrate story schema: %v", err)
		}
	} else {
		log.Printf("mysql: no dsn configured, story persistence and audit log disabled")
	}

	var dispatcher *telemetry.Dispatcher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaCfg := sarama.NewConfig()
		// SyncProducer requires Return.Successes.
		kafkaCfg.Producer.Return.Successes = true
		kafkaCfg.Producer.RequiredAcks = sarama.WaitForLocal
		producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, kafkaCfg)
		if err != nil {
			log.Fatalf("failed to connect kafka: %v", err)
		}
		defer producer.Close()

		dispatcher = telemetry.NewDispatcher(
			producer,
			cfg.Kafka.Topic,
			telemetry.NewSemaphore(100),
			telemetry.DispatcherOptions{
				QueueSize:   10_000,
				Workers:     4,
				MaxRetry:    3,
				BaseBackoff: 50 * time.Millisecond,
				MaxBackoff:  1 * time.Second,
			},
		)
		defer dispatcher.Close()
	} else {
		log.Printf("kafka: no brokers configured, telemetry publishing disabled")
	}

	hub := ws.NewHub()
	source := story.NewSource()

	var engine *broadcast.Engine
	recordOutcome := func(outcome string, res broadcast.CycleResult) {
		gen := res.Generation
		total := res.DeviceCount
		missing := res.MissingDeviceIDs
		acked := total - len(missing)
		elapsed := ackTimeout
		if outcome == telemetry.OutcomeAllAcked {
			if m := engine.Perf(); m != nil {
				elapsed = m.Stats().LastRoundTrip
			}
		}
		// Off the ack path: audit and telemetry must never slow protocol
		// resolution down.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if auditStore != nil {
				rec := store.CycleRecord{
					Generation:       gen,
					Outcome:          outcome,
					DeviceCount:      total,
					AckedCount:       acked,
					MissingDeviceIDs: missing,
					ElapsedMS:        elapsed.Milliseconds(),
					OccurredAt:       time.Now().UTC(),
				}
				if err := auditStore.SaveCycle(ctx, rec); err != nil {
					log.Printf("audit: save cycle gen=%d failed: %v", gen, err)
				}
			}
			if dispatcher != nil {
				evt := telemetry.NewCycleEvent(gen, outcome, total, acked, missing, elapsed)
				if err := dispatcher.Enqueue(ctx, evt); err != nil {
					log.Printf("telemetry: enqueue gen=%d failed: %v", gen, err)
				}
			}
		}()
	}

	engine = broadcast.NewEngine(hub, broadcast.Config{
		AckTimeout:     ackTimeout,
		DebounceWindow: debounce,
		Origin:         cfg.App.Origin,
		OnAllAcknowledged: func(res broadcast.CycleResult) {
			log.Printf("broadcast: generation %d fully acknowledged", res.Generation)
			recordOutcome(telemetry.OutcomeAllAcked, res)
		},
		OnAckTimeout: func(res broadcast.CycleResult) {
			log.Printf("broadcast: generation %d timed out, missing %v", res.Generation, res.MissingDeviceIDs)
			recordOutcome(telemetry.OutcomeTimedOut, res)
		},
		EnablePerformanceMonitoring: cfg.App.EnablePerfMonitoring,
	})
	defer engine.Dispose()

	// Editor writes flow into the engine through the debounce window.
	source.SetOnChange(engine.ScheduleBroadcast)

	manager := ws.NewManager(hub, engine, presence, cfg.App.Origin, presenceTTL)
	prefsHandler := handlers.NewPrefsHandler(prefsStore)
	storyHandler := handlers.NewStoryHandler(source, storyStore)
	statsHandler := handlers.NewStatsHandler(engine, hub)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return cfg.App.Origin == "" || origin == cfg.App.Origin
		},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/preview/ws", manager.Connect)

	v1 := r.Group("/v1")
	v1.GET("/devices", handlers.ListDevices)
	v1.GET("/devices/:id", handlers.GetDevice)
	v1.GET("/prefs/:session", prefsHandler.Get)
	v1.PUT("/prefs/:session", prefsHandler.Put)
	v1.DELETE("/prefs/:session", prefsHandler.Delete)
	v1.GET("/prefs/:session/export", prefsHandler.Export)
	v1.POST("/prefs/:session/import", prefsHandler.Import)
	v1.GET("/story", storyHandler.Get)
	v1.PUT("/story", storyHandler.Put)
	v1.POST("/story/save/:title", storyHandler.Save)
	v1.POST("/story/load/:title", storyHandler.Load)
	v1.GET("/broadcast/stats", statsHandler.Get)
	v1.GET("/surfaces", func(c *gin.Context) {
		devices, err := presence.AliveDevices(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": "PRESENCE_FAILED", "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"surfaces": devices})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	if err := r.Run(fmt.Sprintf(":%d", cfg.Running.Port)); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
