package httpinterface

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// walletPasswordHeader carries the collection password on requests without
// a body.
const walletPasswordHeader = "X-Wallet-Password"

func (h *handler) listLocalWallets(w http.ResponseWriter, r *http.Request) {
	list, err := h.localWalletSvc.List(
		r.Context(), r.Header.Get(walletPasswordHeader),
	)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) localWalletsExist(w http.ResponseWriter, r *http.Request) {
	exists, err := h.localWalletSvc.HasWallets(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, existsReply{exists})
}

// resetLocalWallets wipes the collection and its password hint.
func (h *handler) resetLocalWallets(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.localWalletSvc.Reset(r.Context(), req.Password); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) initLocalWallets(w http.ResponseWriter, r *http.Request) {
	var req localInitRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.localWalletSvc.Init(r.Context(), req.Password, req.Hint); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createLocalWallet(w http.ResponseWriter, r *http.Request) {
	var req localCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	summary, mnemonic, err := h.localWalletSvc.Create(
		r.Context(), req.Password, req.Name,
	)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, localCreateReply{
		WalletSummary: *summary,
		Mnemonic:      strings.Join(mnemonic, " "),
	})
}

func (h *handler) importLocalWallet(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	summary, err := h.localWalletSvc.Import(
		r.Context(), req.Password, req.Secret, req.Name,
	)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) removeLocalWallet(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	walletID := mux.Vars(r)["id"]
	if err := h.localWalletSvc.Remove(r.Context(), req.Password, walletID); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) unlockLocalWallet(w http.ResponseWriter, r *http.Request) {
	var req localUnlockRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	session := h.sessions.Session(userIDFromContext(r.Context()))

	state, err := session.UnlockLocal(r.Context(), req.Password, req.ID)
	h.metrics.sessionTransition("unlock_local", err)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newStatusReply(state))
}

func (h *handler) passwordHint(w http.ResponseWriter, r *http.Request) {
	hint, err := h.localWalletSvc.PasswordHint(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, hintReply{hint})
}
