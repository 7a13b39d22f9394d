package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/sentry-network/sentry-wallet/internal/core/application"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
	interfaces "github.com/sentry-network/sentry-wallet/internal/interfaces"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type ServiceOpts struct {
	Address string
	// NoAuth hands the X-User-Id header to the Verifier instead of the
	// bearer token. Dev mode only, pair it with identity.NewNoAuthVerifier.
	NoAuth   bool
	Verifier ports.IdentityVerifier

	Sessions       application.SessionManager
	TransactionSvc application.TransactionService
	NomineeSvc     application.NomineeService
	// LocalWalletSvc is optional, local routes reply 404 without it.
	LocalWalletSvc application.LocalWalletService

	// Registry defaults to a new registry with the go and process
	// collectors.
	Registry *prometheus.Registry
}

func (o ServiceOpts) validate() error {
	if o.Verifier == nil {
		return fmt.Errorf("identity verifier must not be null")
	}
	if o.Sessions == nil {
		return fmt.Errorf("session manager must not be null")
	}
	if o.TransactionSvc == nil {
		return fmt.Errorf("transaction app service must not be null")
	}
	if o.NomineeSvc == nil {
		return fmt.Errorf("nominee app service must not be null")
	}
	return nil
}

type service struct {
	opts    ServiceOpts
	handler http.Handler
	server  *http.Server
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("invalid opts: missing listening address")
	}
	handler, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}
	return &service{opts: opts, handler: handler}, nil
}

// NewHandler returns the router serving the wallet API, the health check and
// the metrics endpoint.
func NewHandler(opts ServiceOpts) (http.Handler, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}
	return newRouter(opts), nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("http interface stopped")
		}
	}()

	log.Infof("http interface is listening on %s", s.opts.Address)
	return nil
}

func (s *service) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("error while shutting down http interface")
	}
	log.Debug("disabled http interface")
}
