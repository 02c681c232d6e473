// Package server exposes the wrapper flows as HTML forms and JSON endpoints.
package server

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gorilla "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Mohsinsiddi/w3wrap/internal/wrapper"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Operations is the flow surface the server drives. *wrapper.Client
// implements it.
type Operations interface {
	DepositERC20(ctx context.Context, req wrapper.ERC20Deposit) (*wrapper.DepositResult, error)
	WithdrawERC20(ctx context.Context, token common.Address, amount *big.Int) (*wrapper.WithdrawResult, error)
	DepositERC721(ctx context.Context, req wrapper.ERC721Deposit) (*wrapper.DepositResult, error)
	WithdrawERC721(ctx context.Context, token common.Address, tokenID *big.Int) (*wrapper.WithdrawResult, error)
	ViewURI(ctx context.Context, id *big.Int) (string, error)
	WrapperAddress() common.Address
	Owner() common.Address
}

// HealthFunc checks a dependency, typically the JSON-RPC endpoint.
type HealthFunc func(ctx context.Context) error

// Server serves the flow forms.
type Server struct {
	ops        Operations
	log        *logrus.Logger
	metrics    *metricsRegistry
	health     HealthFunc
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for access and flow logs.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithHealthCheck sets the check behind /healthz.
func WithHealthCheck(fn HealthFunc) Option {
	return func(s *Server) { s.health = fn }
}

// New creates a server listening on addr once started.
func New(addr string, ops Operations, opts ...Option) *Server {
	s := &Server{
		ops:     ops,
		log:     logrus.StandardLogger(),
		metrics: newMetricsRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}
	return s
}

// Handler returns the routed and wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/erc20/deposit", s.handleDepositERC20).Methods(http.MethodPost)
	r.HandleFunc("/erc20/withdraw", s.handleWithdrawERC20).Methods(http.MethodPost)
	r.HandleFunc("/erc721/deposit", s.handleDepositERC721).Methods(http.MethodPost)
	r.HandleFunc("/erc721/withdraw", s.handleWithdrawERC721).Methods(http.MethodPost)
	r.HandleFunc("/uri", s.handleViewURI).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/uri/{id}", s.handleViewURI).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	var h http.Handler = r
	h = requestIDMiddleware(h)
	h = gorilla.RecoveryHandler(gorilla.RecoveryLogger(s.log), gorilla.PrintRecoveryStack(true))(h)
	h = gorilla.CombinedLoggingHandler(s.log.Out, h)
	return h
}

// ListenAndServe listens on the configured address and serves until
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve serves on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	s.log.WithField("addr", l.Addr().String()).Info("server listening")
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running flows.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
