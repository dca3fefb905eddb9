package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/config"
	"github.com/tdex-network/tdex-escrow/internal/core/application"
	streampubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/stream"
	webhookpubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/webhook"
	httpinterface "github.com/tdex-network/tdex-escrow/internal/interfaces/http"
	"github.com/tdex-network/tdex-escrow/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	var (
		datadir        = config.GetDatadir()
		dbType         = config.GetString(config.DBTypeKey)
		listeningPort  = config.GetInt(config.ListeningPortKey)
		allowedOrigins = config.GetStringSlice(config.CORSAllowedOriginsKey)
	)

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	if config.GetBool(config.EnableProfilerKey) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stats.EnableMemoryStatistics(
			ctx, config.GetSeconds(config.StatsIntervalKey),
			filepath.Join(datadir, config.ProfilerLocation, "metrics"),
		)
	}

	pubsub, err := webhookpubsub.NewService(
		filepath.Join(datadir, config.WebhookLocation),
		config.GetSeconds(config.WebhookTimeoutKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize webhook pubsub")
	}
	stream := streampubsub.NewHub(allowedOrigins...)

	appConfig := &application.Config{
		DBType:       dbType,
		DBConfig:     config.GetDBConfig(),
		ProgramID:    config.GetProgramID(),
		Policy:       config.GetPolicy(),
		EnableFaucet: config.GetBool(config.EnableFaucetKey),
		PubSub:       pubsub,
		EventStream:  stream,
	}
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("invalid application config")
	}
	defer appConfig.Close()

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:        fmt.Sprintf(":%d", listeningPort),
		TLSKey:         config.GetString(config.TLSKeyKey),
		TLSCert:        config.GetString(config.TLSCertKey),
		RateLimit:      config.GetInt(config.RateLimitKey),
		AllowedOrigins: allowedOrigins,
		EscrowSvc:      appConfig.EscrowService(),
		LedgerSvc:      appConfig.LedgerService(),
		PubSubSvc:      appConfig.PubSubService(),
		EventStream:    stream,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize http interface")
	}

	log.WithFields(log.Fields{
		"db":         dbType,
		"program_id": appConfig.ProgramID,
		"faucet":     appConfig.EnableFaucet,
	}).Info("starting daemon")

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	defer svc.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")
}
