package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notes-capture/api/internal/app"
	"notes-capture/api/internal/httpserver"
	"notes-capture/api/internal/telegram"
)

func main() {
	var (
		o          app.Options
		webhookURL string
	)
	cmd := &cobra.Command{
		Use:          "notes-bot",
		Short:        "Telegram bot: notes and photos, transcribed by Gemini, saved as Notion pages",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, o)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Config.RequireTelegram(); err != nil {
				return err
			}

			bot, err := tgbotapi.NewBotAPI(a.Config.TelegramBotToken)
			if err != nil {
				return err
			}
			bot.Debug = false

			r := &telegram.Router{Bot: bot, Submitter: a.Orchestrator, Log: a.Log}
			http.HandleFunc("/healthz", httpserver.Healthz)

			if u := strings.TrimSpace(webhookURL); u != "" {
				return startWebhookMode(ctx, o.Addr(), bot, r, u, a.Log)
			}
			return startPollingMode(ctx, o.Addr(), bot, r, a.Log)
		},
	}
	app.BindFlags(cmd, &o, "8080")
	cmd.Flags().StringVar(&webhookURL, "webhook-url", os.Getenv("WEBHOOK_URL"), "public base URL; empty means long polling")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ---------------- Modes -----------------

func startWebhookMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, log *zap.Logger) error {
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return err
	}

	// ListenForWebhook registers on DefaultServeMux
	updates := bot.ListenForWebhook(path)
	go consume(ctx, updates, func(upd tgbotapi.Update) { r.HandleUpdate(ctx, upd) })

	log.Info("webhook mode", zap.String("path", path))
	return httpserver.Start(ctx, addr, http.DefaultServeMux, log)
}

func startPollingMode(ctx context.Context, addr string, bot *tgbotapi.BotAPI, r *telegram.Router, log *zap.Logger) error {
	go func() {
		if err := httpserver.Start(ctx, addr, http.DefaultServeMux, log); err != nil {
			log.Error("health server", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	log.Info("polling mode")
	consume(ctx, updates, func(upd tgbotapi.Update) { r.HandleUpdate(ctx, upd) })

	// the long poll in flight is not cancellable; it ends with the process
	bot.StopReceivingUpdates()
	log.Info("polling stopped")
	return nil
}

// consume handles updates one at a time until ctx is done or updates closes.
func consume(ctx context.Context, updates <-chan tgbotapi.Update, handle func(tgbotapi.Update)) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			handle(upd)
		}
	}
}

// shortHash derives a stable, non-secret webhook path from the bot token.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
