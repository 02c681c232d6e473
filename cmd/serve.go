package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3wrap/internal/config"
	"github.com/Mohsinsiddi/w3wrap/internal/server"
	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

var listenFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the deposit/withdraw forms over HTTP",
	Long: `Serve an HTML page with the five wrapper forms plus a JSON API:

  POST /erc20/deposit    POST /erc20/withdraw
  POST /erc721/deposit   POST /erc721/withdraw
  GET  /uri/{id}         GET  /metrics   GET /healthz

All flows are signed by the configured signer.`,
	Example: `  w3wrap serve --listen 127.0.0.1:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listenFlag != "" {
			cfg.ListenAddr = listenFlag
		}
		s, err := openSession(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer s.Close()

		client, err := s.client(logObserver(log))
		if err != nil {
			return err
		}
		srv := server.New(cfg.ListenAddr, client,
			server.WithLogger(log),
			server.WithHealthCheck(func(ctx context.Context) error {
				_, err := s.backend.Ping(ctx)
				return err
			}),
		)
		log.WithFields(logrus.Fields{
			"wrapper": client.WrapperAddress().Hex(),
			"owner":   client.Owner().Hex(),
		}).Info("serving wrapper forms")
		return serveUntilDone(cmd.Context(), srv)
	},
}

// serveUntilDone runs srv until ctx is cancelled, then shuts it down within
// config.ShutdownTimeout.
func serveUntilDone(ctx context.Context, srv *server.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}

// logObserver writes every stage transition to l.
func logObserver(l logrus.FieldLogger) wrapper.Observer {
	return func(p wrapper.Progress) {
		e := l.WithFields(logrus.Fields{
			"flow_id":   p.FlowID,
			"operation": p.Operation,
			"stage":     p.Stage.String(),
		})
		if p.TxHash != (common.Hash{}) {
			e = e.WithField("tx", p.TxHash.Hex())
		}
		switch {
		case p.Err != nil:
			e.WithError(p.Err).Warn("flow failed")
		case p.Warning != "":
			e.Warn(p.Warning)
		default:
			e.Debug("flow stage")
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "listen address (default: listen_addr from config)")
}
