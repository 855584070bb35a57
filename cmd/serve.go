package main

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/catchall"
	"github.com/sells-group/outreach-cli/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for health, stats, and webhook validation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		validator, err := initValidator()
		if err != nil {
			return err
		}

		engine := catchall.New(st, validator,
			catchall.WithTracker(newTracker()),
			catchall.WithExistingFirst(),
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(st, engine)
		if err := srv.ListenAndServe(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "http server")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
