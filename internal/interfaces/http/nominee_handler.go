package httpinterface

import (
	"net/http"
	"time"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
)

func (h *handler) getNominee(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(userIDFromContext(r.Context()))

	nominee, err := h.nomineeSvc.Fetch(r.Context(), session)
	h.metrics.nomineeOperation("fetch", err)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	if nominee == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"nominee": nil})
		return
	}
	writeJSON(w, http.StatusOK, nominee)
}

func (h *handler) saveNominee(w http.ResponseWriter, r *http.Request) {
	var req nomineeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	session := h.sessions.Session(userIDFromContext(r.Context()))

	start := time.Now()
	nominee, err := h.nomineeSvc.Save(
		r.Context(), session, req.Address, req.Email, req.Share,
	)
	h.metrics.nomineeOperation("save", err)
	h.metrics.transaction(domain.TxKindSetNominee, start, err)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, nominee)
}

func (h *handler) removeNominee(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(userIDFromContext(r.Context()))

	start := time.Now()
	err := h.nomineeSvc.Remove(r.Context(), session)
	h.metrics.nomineeOperation("remove", err)
	h.metrics.transaction(domain.TxKindRemoveNominee, start, err)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) fundContract(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	session := h.sessions.Session(userIDFromContext(r.Context()))

	start := time.Now()
	record, err := h.nomineeSvc.Fund(r.Context(), session, amount)
	h.metrics.transaction(domain.TxKindFund, start, err)
	writeRecord(w, record, err)
}

func (h *handler) claimFunds(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(userIDFromContext(r.Context()))

	start := time.Now()
	record, err := h.nomineeSvc.Claim(r.Context(), session)
	h.metrics.transaction(domain.TxKindClaim, start, err)
	writeRecord(w, record, err)
}

func (h *handler) contractBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.nomineeSvc.ContractBalance(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, balanceReply{balance.String()})
}
