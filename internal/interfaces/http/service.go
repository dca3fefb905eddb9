package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/application"
	interfaces "github.com/tdex-network/tdex-escrow/internal/interfaces"
)

const shutdownTimeout = 10 * time.Second

type ServiceOpts struct {
	Address        string
	TLSKey         string
	TLSCert        string
	RateLimit      int
	AllowedOrigins []string

	EscrowSvc application.EscrowService
	LedgerSvc application.LedgerService
	PubSubSvc application.PubSubService
	// EventStream, if defined, serves the websocket event stream.
	EventStream http.Handler
}

func (o ServiceOpts) validate() error {
	if !isValidAddress(o.Address) {
		return fmt.Errorf("invalid listening address %s", o.Address)
	}
	if (o.TLSKey == "") != (o.TLSCert == "") {
		return fmt.Errorf("TLS requires both key and certificate")
	}
	if o.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if o.EscrowSvc == nil {
		return fmt.Errorf("escrow app service must not be null")
	}
	if o.LedgerSvc == nil {
		return fmt.Errorf("ledger app service must not be null")
	}
	if o.PubSubSvc == nil {
		return fmt.Errorf("pubsub app service must not be null")
	}
	return nil
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              opts.Address,
			Handler:           newRouter(opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	go func() {
		var err error
		if s.opts.TLSKey != "" {
			err = s.server.ServeTLS(lis, s.opts.TLSCert, s.opts.TLSKey)
		} else {
			err = s.server.Serve(lis)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http: server stopped unexpectedly")
		}
	}()

	log.Infof("http interface is listening on %s", lis.Addr())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http: failed to gracefully stop server")
	}
	log.Debug("stopped http interface")
}

func newRouter(opts ServiceOpts) http.Handler {
	h := &handler{opts.EscrowSvc, opts.LedgerSvc, opts.PubSubSvc}

	router := mux.NewRouter()
	router.Use(logAndMeasure)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(rateLimit(opts.RateLimit))
	v1.HandleFunc("/escrows", h.makeEscrow).Methods(http.MethodPost)
	v1.HandleFunc("/escrows", h.listEscrows).Methods(http.MethodGet)
	v1.HandleFunc("/escrows/{address}", h.getEscrow).Methods(http.MethodGet)
	v1.HandleFunc("/escrows/{address}/take", h.takeEscrow).
		Methods(http.MethodPost)
	v1.HandleFunc("/escrows/{address}/refund", h.refundEscrow).
		Methods(http.MethodPost)
	v1.HandleFunc("/address", h.deriveAddress).Methods(http.MethodGet)
	v1.HandleFunc("/balances/{owner}", h.getBalances).Methods(http.MethodGet)
	v1.HandleFunc("/faucet", h.faucet).Methods(http.MethodPost)
	v1.HandleFunc("/webhooks", h.addWebhook).Methods(http.MethodPost)
	v1.HandleFunc("/webhooks", h.listWebhooks).Methods(http.MethodGet)
	v1.HandleFunc("/webhooks/{id}", h.removeWebhook).Methods(http.MethodDelete)
	if opts.EventStream != nil {
		v1.Handle("/events", opts.EventStream).Methods(http.MethodGet)
	}

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)
}

func isValidAddress(addr string) bool {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host != "" {
		if ip := net.ParseIP(host); ip == nil && host != "localhost" {
			return false
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return false
	}
	return port >= 0 && port <= 65535
}
