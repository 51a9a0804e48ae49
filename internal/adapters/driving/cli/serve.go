package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harborist/contextd/internal/adapters/driven/config/file"
	"github.com/harborist/contextd/internal/adapters/driving/httpapi"
	"github.com/harborist/contextd/internal/adapters/driving/telegram"
	"github.com/harborist/contextd/internal/logger"
)

// defaultListenAddr is used when no listen address is configured.
const defaultListenAddr = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, if configured, the Telegram bot",
	Long: `Starts the JSON HTTP API. If a Telegram bot token is configured,
the bot starts alongside it and relays group messages. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := a.config.GetString(file.KeyListenAddr)
	if addr == "" {
		addr = defaultListenAddr
	}

	handler := httpapi.NewServer(a.tenants, a.registration, a.sync, a.poller, a.push, a.docs)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP API listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if token := a.config.GetString(file.KeyTelegramToken); token != "" {
		bot, err := telegram.NewBot(token, a.chats, a.tenants, "default")
		if err != nil {
			return fmt.Errorf("start telegram bot: %w", err)
		}
		go func() {
			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("telegram bot: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	logger.Info("Shutting down")
	a.poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
