package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/sentry-network/sentry-wallet/internal/config"
	"github.com/sentry-network/sentry-wallet/internal/core/application"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
	"github.com/sentry-network/sentry-wallet/internal/infrastructure/chain/evm"
	"github.com/sentry-network/sentry-wallet/internal/infrastructure/identity"
	inmemoryprofile "github.com/sentry-network/sentry-wallet/internal/infrastructure/profile/inmemory"
	postgresdb "github.com/sentry-network/sentry-wallet/internal/infrastructure/profile/postgres"
	"github.com/sentry-network/sentry-wallet/internal/infrastructure/profile/supabase"
	dbbadger "github.com/sentry-network/sentry-wallet/internal/infrastructure/storage/badger"
	httpinterface "github.com/sentry-network/sentry-wallet/internal/interfaces/http"
	"github.com/sentry-network/sentry-wallet/pkg/stats"
	"github.com/sentry-network/sentry-wallet/pkg/wallet"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	wallet.ScryptLogN = uint8(config.GetInt(config.ScryptLogNKey))

	profileStore, err := newProfileStore()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize profile store")
	}
	defer profileStore.Close()

	var localStore ports.LocalStore
	if config.GetBool(config.EnableLocalWalletsKey) {
		localStore, err = dbbadger.NewLocalStore(config.GetDbDir(), nil)
		if err != nil {
			log.WithError(err).Fatal("failed to open local store")
		}
		defer localStore.Close()
	}

	chainClient, err := evm.NewService(evm.Opts{
		RPCURL:              config.GetString(config.RPCURLKey),
		NetworkName:         config.GetString(config.NetworkNameKey),
		ExpectedChainID:     uint64(config.GetInt64(config.ExpectedChainIDKey)),
		RequestsPerSecond:   config.GetInt(config.RPCRequestsPerSecondKey),
		ConfirmationTimeout: config.GetDuration(config.ConfirmationTimeoutKey),
		PollInterval:        config.GetDuration(config.ConfirmationPollIntervalKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to ledger network")
	}
	defer chainClient.Close()

	contract := config.GetString(config.InheritanceContractKey)
	vaultStore := application.NewVaultStore(profileStore, localStore)
	sessions := application.NewSessionManager(
		vaultStore, chainClient, config.GetInt(config.HistorySizeKey),
	)
	defer sessions.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := httpinterface.ServiceOpts{
		Address:        fmt.Sprintf(":%d", config.GetInt(config.ListeningPortKey)),
		NoAuth:         config.GetBool(config.NoAuthKey),
		Sessions:       sessions,
		TransactionSvc: application.NewTransactionService(chainClient),
		NomineeSvc:     application.NewNomineeService(vaultStore, chainClient, contract),
		Registry:       registry,
	}
	if localStore != nil {
		opts.LocalWalletSvc = application.NewLocalWalletService(vaultStore)
	}
	if opts.NoAuth {
		log.Warn("identity tokens are not verified, X-User-Id is trusted")
		opts.Verifier = identity.NewNoAuthVerifier()
	} else {
		verifier, err := identity.NewJWTVerifier(config.GetString(config.JWTSecretKey))
		if err != nil {
			log.WithError(err).Fatal("failed to initialize identity verifier")
		}
		opts.Verifier = verifier
	}

	svc, err := httpinterface.NewService(opts)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize http interface")
	}

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting daemon")
	defer log.Info("shutdown")

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if interval := config.GetInt(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(
			ctx, time.Duration(interval)*time.Second, registry,
			config.GetProfilerPath(),
		)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-sigChan

	log.Info("shutting down daemon")
}

func newProfileStore() (ports.ProfileStore, error) {
	switch strings.ToLower(config.GetString(config.ProfileStoreTypeKey)) {
	case config.ProfileStorePostgres:
		return postgresdb.NewProfileStore(config.GetString(config.PgConnectAddrKey))
	case config.ProfileStoreInmemory:
		log.Warn("profiles are kept in memory and lost at shutdown")
		return inmemoryprofile.NewProfileStore(), nil
	default:
		return supabase.NewProfileStore(supabase.Opts{
			URL:    config.GetString(config.SupabaseURLKey),
			APIKey: config.GetString(config.SupabaseKeyKey),
		})
	}
}
