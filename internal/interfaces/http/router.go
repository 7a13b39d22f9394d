package httpinterface

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentry-network/sentry-wallet/internal/core/application"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
)

type handler struct {
	noAuth   bool
	verifier ports.IdentityVerifier

	sessions       application.SessionManager
	transactionSvc application.TransactionService
	nomineeSvc     application.NomineeService
	localWalletSvc application.LocalWalletService

	metrics *metrics
}

func newRouter(opts ServiceOpts) http.Handler {
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	h := &handler{
		noAuth:         opts.NoAuth,
		verifier:       opts.Verifier,
		sessions:       opts.Sessions,
		transactionSvc: opts.TransactionSvc,
		nomineeSvc:     opts.NomineeSvc,
		localWalletSvc: opts.LocalWalletSvc,
		metrics:        newMetrics(registry),
	}

	router := mux.NewRouter()
	router.Use(requestLogger)
	router.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	router.Handle(
		"/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	).Methods(http.MethodGet)

	api := router.PathPrefix("/v1").Subrouter()
	api.Use(h.authenticate)

	api.HandleFunc("/wallet/create", h.createWallet).Methods(http.MethodPost)
	api.HandleFunc("/wallet/import", h.importWallet).Methods(http.MethodPost)
	api.HandleFunc("/wallet/unlock", h.unlockWallet).Methods(http.MethodPost)
	api.HandleFunc("/wallet/lock", h.lockWallet).Methods(http.MethodPost)
	api.HandleFunc("/wallet/logout", h.logout).Methods(http.MethodPost)
	api.HandleFunc("/wallet/password", h.changePassword).Methods(http.MethodPost)
	api.HandleFunc("/wallet/status", h.walletStatus).Methods(http.MethodGet)
	api.HandleFunc("/wallet/exists", h.walletExists).Methods(http.MethodGet)
	api.HandleFunc("/wallet/balance", h.refreshBalance).Methods(http.MethodPost)

	api.HandleFunc("/network", h.networkInfo).Methods(http.MethodGet)

	api.HandleFunc("/transactions", h.sendTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions", h.listTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{hash}", h.getReceipt).Methods(http.MethodGet)

	api.HandleFunc("/nominee", h.getNominee).Methods(http.MethodGet)
	api.HandleFunc("/nominee", h.saveNominee).Methods(http.MethodPut)
	api.HandleFunc("/nominee", h.removeNominee).Methods(http.MethodDelete)
	api.HandleFunc("/nominee/fund", h.fundContract).Methods(http.MethodPost)
	api.HandleFunc("/nominee/claim", h.claimFunds).Methods(http.MethodPost)
	api.HandleFunc("/nominee/contract", h.contractBalance).Methods(http.MethodGet)

	local := api.PathPrefix("/local").Subrouter()
	local.Use(h.requireLocalWallets)
	local.HandleFunc("", h.resetLocalWallets).Methods(http.MethodDelete)
	local.HandleFunc("/exists", h.localWalletsExist).Methods(http.MethodGet)
	local.HandleFunc("/wallets", h.listLocalWallets).Methods(http.MethodGet)
	local.HandleFunc("/wallets", h.createLocalWallet).Methods(http.MethodPost)
	local.HandleFunc("/wallets/{id}", h.removeLocalWallet).Methods(http.MethodDelete)
	local.HandleFunc("/init", h.initLocalWallets).Methods(http.MethodPost)
	local.HandleFunc("/import", h.importLocalWallet).Methods(http.MethodPost)
	local.HandleFunc("/unlock", h.unlockLocalWallet).Methods(http.MethodPost)
	local.HandleFunc("/hint", h.passwordHint).Methods(http.MethodGet)

	return router
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
