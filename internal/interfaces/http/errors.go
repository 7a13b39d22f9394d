package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
)

const (
	badRequestKind   = "BadRequest"
	unauthorizedKind = "Unauthorized"
)

type errorReply struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Record  *domain.TransactionRecord `json:"record,omitempty"`
}

func statusFromKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidSecretFormat, domain.KindPasswordTooWeak,
		domain.KindInvalidRecipient, domain.KindInvalidAmount,
		domain.KindInsufficientFunds, domain.KindInvalidNominee:
		return http.StatusBadRequest
	case domain.KindDecryptionFailed:
		return http.StatusUnauthorized
	case domain.KindNotFound, domain.KindNomineeNotFound:
		return http.StatusNotFound
	case domain.KindAlreadyInProgress, domain.KindMustBeLocked,
		domain.KindMustBeUnlocked:
		return http.StatusConflict
	case domain.KindTransactionPending:
		return http.StatusAccepted
	case domain.KindTransactionFailed:
		return http.StatusUnprocessableEntity
	case domain.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with the status matching the kind of err. The record,
// if any, is the transaction the error refers to.
func writeError(
	w http.ResponseWriter, err error, record *domain.TransactionRecord,
) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		log.WithError(err).Warn("http: unexpected error")
		writeErrorReply(w, http.StatusInternalServerError,
			domain.KindInternal.String(), "internal error")
		return
	}

	status := statusFromKind(domainErr.Kind)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Warn("http: internal error")
		if domainErr.Message != "" {
			message = domainErr.Message
		}
	}
	writeJSON(w, status, errorReply{
		Error:   domainErr.Kind.String(),
		Message: message,
		Record:  record,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeErrorReply(w, http.StatusBadRequest, badRequestKind, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeErrorReply(w, http.StatusUnauthorized, unauthorizedKind, message)
}

func writeErrorReply(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorReply{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("http: failed to write reply")
	}
}
