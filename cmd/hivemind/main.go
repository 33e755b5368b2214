package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nidhogg/hivemind/internal/agent"
	"github.com/nidhogg/hivemind/internal/api"
	"github.com/nidhogg/hivemind/internal/config"
	"github.com/nidhogg/hivemind/internal/hive"
	"github.com/nidhogg/hivemind/internal/provider"
	"github.com/nidhogg/hivemind/internal/soul"
	"github.com/nidhogg/hivemind/internal/store"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting Hivemind...")

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/hivemind.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// Resolve the agent's soul
	identity, err := resolveSoul(cfg.Soul)
	if err != nil {
		logger.Fatal("failed to resolve soul", zap.Error(err))
	}

	// Select the LLM backend
	llm, err := provider.New(provider.Config{
		Type:     cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		Endpoint: cfg.LLM.Endpoint,
		APIKey:   cfg.LLM.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM provider", zap.Error(err))
	}

	// TheHive client
	feed := hive.NewClient(cfg.TheHive.APIKey, cfg.TheHive.BaseURL, 30*time.Second, logger)

	// Optional action journal
	var journal *store.Journal
	if cfg.Database.Postgres.DSN != "" {
		j, jErr := store.New(cfg.Database.Postgres.DSN, logger)
		if jErr != nil {
			logger.Warn("PostgreSQL unavailable, running without journal", zap.Error(jErr))
		} else {
			if mErr := j.Migrate(context.Background(), "migrations"); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			journal = j
		}
	}

	// Wire the heartbeat loop
	budget := agent.NewBudget(cfg.Behavior.MaxPostsPerDay, cfg.Behavior.MaxCommentsPerDay, time.Now())
	engine := agent.NewEngine(llm, identity, logger)
	gen := agent.NewGenerator(llm, identity)
	runner := agent.NewRunner(feed, engine, gen, budget, agent.Options{
		Interval:           time.Duration(cfg.Behavior.HeartbeatInterval) * time.Second,
		PostProbability:    *cfg.Behavior.PostProbability,
		CommentProbability: *cfg.Behavior.CommentProbability,
		FeedLimit:          cfg.Behavior.FeedLimit,
		FeedSort:           cfg.Behavior.FeedSort,
	}, nil, logger)

	if journal != nil {
		runner.SetRecorder(func(ctx context.Context, rec agent.ActionRecord) {
			err := journal.Record(ctx, &store.Action{
				CycleID:      rec.CycleID,
				Kind:         rec.Kind,
				TargetPostID: rec.TargetPostID,
				RemoteID:     rec.RemoteID,
				Content:      rec.Content,
			})
			if err != nil {
				logger.Warn("journal write failed", zap.Error(err))
			}
		})
	}

	logger.Info("Agent initialized",
		zap.String("agent", identity.Name),
		zap.String("llm", cfg.LLM.Provider+"/"+cfg.LLM.Model),
		zap.Int("heartbeat_interval", cfg.Behavior.HeartbeatInterval))

	// Start the runner
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	// Start the ops server
	handler := api.NewHandler(runner, journal, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler.Router(),
	}
	go func() {
		logger.Info("Hivemind ops API listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Hivemind...")
	cancel()
	<-done
	srv.Shutdown(context.Background())
	if journal != nil {
		journal.Close()
	}
}

// resolveSoul builds the agent identity from config: an inline
// personality wins; otherwise a preset is looked up, with the config
// name overriding the preset's.
func resolveSoul(sc config.SoulConfig) (soul.Soul, error) {
	if sc.Personality != "" {
		return soul.Soul{Name: sc.Name, Personality: sc.Personality}, nil
	}
	s, err := soul.Preset(sc.Preset)
	if err != nil {
		return soul.Soul{}, err
	}
	if sc.Name != "" {
		s.Name = sc.Name
	}
	return s, nil
}
