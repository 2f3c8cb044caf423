package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyfinance/ai-service/internal/agent/memory"
	"github.com/tallyfinance/ai-service/internal/agent/model"
	"github.com/tallyfinance/ai-service/internal/agent/mood"
	"github.com/tallyfinance/ai-service/internal/agent/prompts"
	"github.com/tallyfinance/ai-service/internal/agent/repo"
	"github.com/tallyfinance/ai-service/internal/agent/tools"
	"github.com/tallyfinance/ai-service/internal/server"
	logx "github.com/tallyfinance/ai-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tallyai",
		Short:        "TallyFinance AI orchestration service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newToolsCmd(), newCompressCmd(), newMoodCmd(), newPromptsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP orchestration service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orch, cleanup, err := buildOrchestrator(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.New(orch, tools.Default(), server.Info{
				Version: cfg.Server.ServiceVersion,
				Model:   cfg.LLM.Model,
			}, cfg.Server).HTTPServer(cfg.LLM.WorstCaseLatency())

			errCh := make(chan error, 1)
			go func() {
				logx.Info().Str("addr", srv.Addr).Str("env", cfg.Environment.String()).Msg("HTTP server listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logx.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
}

func newToolsCmd() *cobra.Command {
	var namesOnly bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the default tool catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalogue := tools.Default()
			if namesOnly {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tools.Names(catalogue), "\n"))
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(catalogue)
		},
	}
	cmd.Flags().BoolVar(&namesOnly, "names", false, "print tool names only")
	return cmd
}

func newCompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress [summary]",
		Short: "Compress a session summary (reads stdin when no argument is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				summary = strings.TrimSpace(string(b))
			}
			fmt.Fprintln(cmd.OutOrStdout(), memory.Compress(summary))
			return nil
		},
	}
}

func newMoodCmd() *cobra.Command {
	var (
		base   string
		hint   int
		budget float64
		streak int
	)
	cmd := &cobra.Command{
		Use:   "mood",
		Short: "Compute the final mood for a base mood and runtime signals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if hint < -1 || hint > 1 {
				return fmt.Errorf("hint must be -1, 0 or 1, got %d", hint)
			}
			var budgetPercent *float64
			if cmd.Flags().Changed("budget") {
				budgetPercent = &budget
			}
			fmt.Fprintln(cmd.OutOrStdout(), mood.Calculate(model.Mood(base), hint, budgetPercent, streak))
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", string(model.MoodNormal), "base mood")
	cmd.Flags().IntVar(&hint, "hint", 0, "mood hint (-1, 0 or 1)")
	cmd.Flags().Float64Var(&budget, "budget", 0, "budget usage fraction")
	cmd.Flags().IntVar(&streak, "streak", 0, "consecutive days with transactions")
	return cmd
}

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage prompt templates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "push <name> [file]",
		Short: "Store a prompt template in Redis (the embedded one when no file is given)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			name := args[0]

			var text string
			if len(args) == 2 {
				b, err := os.ReadFile(args[1])
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				text = string(b)
			} else if text, err = (prompts.EmbeddedStore{}).Load(ctx, name); err != nil {
				return err
			}

			rdb, err := redisClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer rdb.Close()

			if err := repo.NewRedisTemplateStore(rdb, cfg.Prompt.RedisPrefix).Save(ctx, name, text); err != nil {
				return err
			}
			logx.Info().Str("template", name).Int("bytes", len(text)).Msg("Template pushed")
			return nil
		},
	})
	return cmd
}
