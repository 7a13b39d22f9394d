package httpinterface

import (
	"net/http"
	"strings"
)

func (h *handler) createWallet(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	userID := userIDFromContext(r.Context())
	session := h.sessions.Session(userID)

	created, err := session.Create(r.Context(), req.Password, userID)
	h.metrics.sessionTransition("create", err)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, createReply{
		Address:  created.Address,
		Mnemonic: strings.Join(created.Mnemonic, " "),
	})
}

func (h *handler) importWallet(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	userID := userIDFromContext(r.Context())
	session := h.sessions.Session(userID)

	address, err := session.Import(r.Context(), req.Password, userID, req.Secret)
	h.metrics.sessionTransition("import", err)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, addressReply{address})
}

func (h *handler) unlockWallet(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	userID := userIDFromContext(r.Context())
	session := h.sessions.Session(userID)

	state, err := session.Unlock(r.Context(), req.Password, userID)
	h.metrics.sessionTransition("unlock", err)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newStatusReply(state))
}

func (h *handler) lockWallet(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(userIDFromContext(r.Context()))
	session.Lock()
	h.metrics.sessionTransition("lock", nil)
	writeJSON(w, http.StatusOK, newStatusReply(session.Status()))
}

// logout locks the wallet of the user and drops the session with its
// transaction history.
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(userIDFromContext(r.Context()))
	h.metrics.sessionTransition("logout", nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	userID := userIDFromContext(r.Context())
	session := h.sessions.Session(userID)

	err := session.ChangePassword(r.Context(), userID, req.Current, req.Next)
	h.metrics.sessionTransition("change_password", err)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) walletStatus(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(userIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, newStatusReply(session.Status()))
}

func (h *handler) walletExists(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	session := h.sessions.Session(userID)

	exists, err := session.Exists(r.Context(), userID)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, existsReply{exists})
}

// refreshBalance replies with the session status even if the balance query
// failed, the reason is reported in the balanceError field.
func (h *handler) refreshBalance(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(userIDFromContext(r.Context()))

	state, err := session.RefreshBalance(r.Context())
	if err != nil && !state.IsUnlocked() {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newStatusReply(state))
}

func (h *handler) networkInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.transactionSvc.NetworkInfo(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newNetworkReply(info))
}
