package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vatsa10/Zomatooo/internal/agent"
	"github.com/Vatsa10/Zomatooo/internal/auth"
	"github.com/Vatsa10/Zomatooo/internal/config"
	"github.com/Vatsa10/Zomatooo/internal/llm"
	"github.com/Vatsa10/Zomatooo/internal/ordering"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the ordering assistant in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

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
			registry.SetFallback("gemini")

			sessions, cleanup, err := buildSessionStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

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

			fmt.Println("Zomato ordering assistant. Type 'quit' to exit.")

			sessionID := ""
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("\nYou: ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}

				result := loop.Turn(ctx, sessionID, text)
				sessionID = result.SessionID
				fmt.Printf("\nAssistant: %s\n", result.Reply)

				if result.Ended {
					return nil
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}
}
