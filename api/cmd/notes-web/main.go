package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notes-capture/api/internal/app"
	"notes-capture/api/internal/httpserver"
	"notes-capture/api/internal/web"
)

func main() {
	var o app.Options
	cmd := &cobra.Command{
		Use:          "notes-web",
		Short:        "Browser form: typed notes and images, transcribed by Gemini, saved as Notion pages",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, o)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := web.New(a.Orchestrator, a.Log)
			return httpserver.Start(ctx, o.Addr(), srv.Routes(), a.Log)
		},
	}
	app.BindFlags(cmd, &o, "8000")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
