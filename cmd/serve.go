package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/KaramelBytes/tabstat-cli/internal/history"
	"github.com/KaramelBytes/tabstat-cli/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve batch runs and run history over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		opt, err := readOptions()
		if err != nil {
			return err
		}
		addr := c.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		var store server.History
		if c.HistoryEnabled {
			st, err := history.Open(c.HistoryPath)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer st.Close()
			store = st
		}

		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := server.New(batch.NewQueue(logger), store, logger, server.Options{
			CORSOrigins: c.CORSOrigins,
			Read:        opt,
			Params:      batch.Params{EmbeddingDim: c.SampEnEmbeddingDim, ToleranceFactor: c.SampEnToleranceFactor},
		})
		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		errc := make(chan error, 1)
		go func() { errc <- httpSrv.ListenAndServe() }()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Listening on http://%s\n", addr)
		logger.Info("server started", zap.String("addr", addr), zap.Bool("history", store != nil))

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config server_addr)")
	addReadFlags(serveCmd)
}
