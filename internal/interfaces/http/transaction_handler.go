package httpinterface

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
)

func (h *handler) sendTransaction(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
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
	record, err := h.transactionSvc.Send(r.Context(), session, req.To, amount)
	h.metrics.transaction(domain.TxKindSend, start, err)
	writeRecord(w, record, err)
}

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(userIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, session.History().List())
}

func (h *handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(userIDFromContext(r.Context()))
	hash := mux.Vars(r)["hash"]

	receipt, err := h.transactionSvc.GetReceipt(r.Context(), session, hash)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newReceiptReply(receipt))
}

// writeRecord replies with the record of a submitted transaction. A
// transaction still pending or reverted is reported with its record so that
// the client keeps the hash.
func writeRecord(
	w http.ResponseWriter, record *domain.TransactionRecord, err error,
) {
	if err != nil {
		writeError(w, err, record)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
