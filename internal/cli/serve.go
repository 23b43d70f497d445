package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vatsa10/Zomatooo/internal/agent"
	"github.com/Vatsa10/Zomatooo/internal/auth"
	"github.com/Vatsa10/Zomatooo/internal/config"
	"github.com/Vatsa10/Zomatooo/internal/hooks"
	"github.com/Vatsa10/Zomatooo/internal/llm"
	"github.com/Vatsa10/Zomatooo/internal/logging"
	"github.com/Vatsa10/Zomatooo/internal/ordering"
	"github.com/Vatsa10/Zomatooo/internal/server"
	"github.com/Vatsa10/Zomatooo/internal/session"
	"github.com/Vatsa10/Zomatooo/internal/speech"
	"github.com/Vatsa10/Zomatooo/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			// The --log-level flag wins over the config file
			if logLevel == "" {
				if cfg.Logging.ConsoleStyle == "json" {
					log = logging.NewJSON(cfg.Logging.Level)
				} else {
					log = logging.New(nil, cfg.Logging.Level)
				}
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			flow := auth.NewFlow(cfg.OAuth, paths.Credentials, log)

			svc, err := ordering.Connect(ctx, cfg.Ordering.Endpoint, flow.AccessToken(), log)
			if err != nil {
				return fmt.Errorf("connecting to ordering service: %w", err)
			}
			defer svc.Close()

			catalog, err := agent.BuildCatalog(ctx, svc, log)
			if err != nil {
				return fmt.Errorf("building tool catalog: %w", err)
			}

			registry := llm.NewRegistry(log)
			gemini := llm.NewGeminiClient(cfg.LLM.APIKey, cfg.LLM.Model).
				WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)
			registry.Register("gemini", gemini)
			registry.Alias(cfg.LLM.Model, "gemini")
			for _, m := range cfg.LLM.Fallbacks {
				registry.Alias(m, "gemini")
			}
			registry.SetFallback("gemini")

			sessions, cleanup, err := buildSessionStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if cfg.Session.IdleMinutes > 0 {
				maxAge := time.Duration(cfg.Session.IdleMinutes) * time.Minute
				sweeper := session.NewSweeper(sessions, maxAge, maxAge/4)
				sweeper.Start()
				defer sweeper.Stop()
			}

			loop := agent.NewLoop(
				agent.LoopConfig{
					Model:           cfg.LLM.Model,
					Fallbacks:       cfg.LLM.Fallbacks,
					Temperature:     cfg.LLM.Temperature,
					MaxOutputTokens: cfg.LLM.MaxOutputTokens,
					ToolTimeout:     time.Duration(cfg.Ordering.TimeoutSeconds) * time.Second,
				},
				registry,
				sessions,
				svc,
				catalog,
				log,
			)

			opts := []server.Option{
				server.WithHooks(hooks.NewManager(log)),
				server.WithOAuth(flow),
			}
			if cfg.Speech.Enabled {
				staticDir := cfg.Server.StaticDir
				if !filepath.IsAbs(staticDir) {
					staticDir = filepath.Join(paths.Base, staticDir)
				}
				syn := speech.NewHTTPSynthesizer(cfg.Speech.Endpoint, cfg.Speech.Voice, staticDir, log)
				opts = append(opts, server.WithSpeech(syn))
			}

			srv := server.New(cfg, loop, log, opts...)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")

	return cmd
}

// buildSessionStore picks the configured session backend. The returned
// cleanup closes the backing database if there is one.
func buildSessionStore(cfg config.Config) (session.Store, func(), error) {
	if cfg.Session.Store == "sqlite" {
		dbPath := filepath.Join(paths.Data, "zomatooo.db")
		db, err := store.Open(dbPath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		log.Info().Str("path", dbPath).Msg("using SQLite session store")
		return store.NewSQLiteSessionStore(db), func() { db.Close() }, nil
	}
	log.Info().Msg("using in-memory session store")
	return session.NewMemoryStore(), func() {}, nil
}
