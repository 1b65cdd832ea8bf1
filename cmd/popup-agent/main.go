// Command popup-agent runs the popup engine against a deployment and prints
// cards to the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trustflow/trustflow-backend/internal/popup"
	"github.com/trustflow/trustflow-backend/pkg/env"
	"github.com/trustflow/trustflow-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "popup-agent",
		Short:        "Show a space's testimonial popups in the terminal",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		spaceID  string
		baseURL  string
		interval time.Duration
		timeout  time.Duration
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll a space and rotate its popups (SIGUSR1 toggles pause)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logg := logger.New(logger.Options{
				ServiceName: "popup-agent",
				Level:       logger.ParseLevel(logLevel),
				Output:      cmd.ErrOrStderr(),
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			usr1 := make(chan os.Signal, 1)
			signal.Notify(usr1, syscall.SIGUSR1)
			defer signal.Stop(usr1)

			toggles := make(chan struct{})
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-usr1:
						select {
						case toggles <- struct{}{}:
						case <-ctx.Done():
							return
						}
					}
				}
			}()

			return runAgent(ctx, agentOptions{
				SpaceID:  strings.TrimSpace(spaceID),
				BaseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Interval: interval,
				Timeout:  timeout,
				Out:      cmd.OutOrStdout(),
				Logger:   logg,
			}, toggles)
		},
	}

	cmd.Flags().StringVar(&spaceID, "space", "", "space id to watch")
	cmd.Flags().StringVar(&baseURL, "base-url", env.Get("TRUSTFLOW_PUBLIC_BASE_URL", "http://localhost:8080"), "deployment base url")
	cmd.Flags().DurationVar(&interval, "interval", env.Duration("TRUSTFLOW_POPUP_POLL_INTERVAL", popup.DefaultPollInterval), "poll interval, at least 1s")
	cmd.Flags().DurationVar(&timeout, "timeout", env.Duration("TRUSTFLOW_POPUP_FETCH_TIMEOUT", 10*time.Second), "fetch timeout")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level")
	return cmd
}
