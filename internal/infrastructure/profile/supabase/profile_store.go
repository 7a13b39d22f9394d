package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/core/ports"
	"github.com/sentry-network/sentry-wallet/pkg/httputil"
)

const (
	profilesTable  = "profiles"
	restPath       = "/rest/v1/"
	defaultTimeout = 15 * time.Second

	walletColumn  = "encrypted_wallet"
	nomineeColumn = "nominee_data"
)

type Opts struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func (o Opts) validate() error {
	if o.URL == "" {
		return fmt.Errorf("missing supabase url")
	}
	if _, err := url.ParseRequestURI(o.URL); err != nil {
		return fmt.Errorf("invalid supabase url: %w", err)
	}
	if o.APIKey == "" {
		return fmt.Errorf("missing supabase api key")
	}
	return nil
}

type profileStore struct {
	baseURL string
	client  *httputil.Client
}

// NewProfileStore returns a ports.ProfileStore over the PostgREST interface
// of a Supabase project. Sessions are keyed by the id column of the
// profiles table.
func NewProfileStore(opts Opts) (ports.ProfileStore, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := httputil.NewClient(timeout, map[string]string{
		"apikey":        opts.APIKey,
		"Authorization": fmt.Sprintf("Bearer %s", opts.APIKey),
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	})
	baseURL := strings.TrimSuffix(opts.URL, "/") + restPath + profilesTable
	return &profileStore{baseURL, client}, nil
}

func (s *profileStore) GetEncryptedWallet(
	ctx context.Context, userID string,
) (string, error) {
	raw, err := s.selectColumn(ctx, userID, walletColumn)
	if err != nil {
		return "", err
	}
	if raw == nil {
		return "", domain.ErrNotFound
	}
	var ciphertext *string
	if err := json.Unmarshal(raw, &ciphertext); err != nil {
		return "", domain.ErrPersistence.WithCause(err)
	}
	if ciphertext == nil || *ciphertext == "" {
		return "", domain.ErrNotFound
	}
	return *ciphertext, nil
}

func (s *profileStore) SetEncryptedWallet(
	ctx context.Context, userID, ciphertext string,
) error {
	value, _ := json.Marshal(ciphertext)
	return s.upsert(ctx, userID, walletColumn, value)
}

func (s *profileStore) GetNomineeData(
	ctx context.Context, userID string,
) ([]byte, error) {
	raw, err := s.selectColumn(ctx, userID, nomineeColumn)
	if err != nil {
		return nil, err
	}
	if raw == nil || string(raw) == "null" {
		return nil, nil
	}
	// The column may be declared either as json or as text holding json.
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text == "" {
			return nil, nil
		}
		return []byte(text), nil
	}
	return raw, nil
}

func (s *profileStore) SetNomineeData(
	ctx context.Context, userID string, data []byte,
) error {
	value := json.RawMessage("null")
	if data != nil {
		if !json.Valid(data) {
			return domain.ErrInternal.WithMessage("nominee data is not valid json")
		}
		value = data
	}
	return s.upsert(ctx, userID, nomineeColumn, value)
}

func (s *profileStore) Close() {}

// selectColumn returns the raw json value of the column for the user, or nil
// if the user has no profile row.
func (s *profileStore) selectColumn(
	ctx context.Context, userID, column string,
) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("id", "eq."+userID)
	query.Set("select", column)

	status, body, err := s.client.NewHTTPRequest(
		ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), "", nil,
	)
	if err != nil {
		return nil, domain.ErrPersistence.WithCause(err)
	}
	if status != http.StatusOK {
		return nil, responseError(status, body)
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		return nil, domain.ErrPersistence.WithCause(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	value, ok := rows[0][column]
	if !ok {
		return nil, nil
	}
	return value, nil
}

// upsert writes a single column of the user profile, creating the row if
// missing. Other columns are left untouched.
func (s *profileStore) upsert(
	ctx context.Context, userID, column string, value json.RawMessage,
) error {
	payload, err := json.Marshal(map[string]json.RawMessage{
		"id":   mustMarshal(userID),
		column: value,
	})
	if err != nil {
		return domain.ErrInternal.WithCause(err)
	}

	status, body, err := s.client.NewHTTPRequest(
		ctx, http.MethodPost, s.baseURL+"?on_conflict=id", string(payload),
		map[string]string{
			"Prefer": "resolution=merge-duplicates,return=minimal",
		},
	)
	if err != nil {
		return domain.ErrPersistence.WithCause(err)
	}
	if status < 200 || status >= 300 {
		return responseError(status, body)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"column":  column,
	}).Debug("profile updated")
	return nil
}

type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// responseError reports the PostgREST error code without the response body,
// which may echo the request.
func responseError(status int, body string) error {
	var e restError
	// nolint
	json.Unmarshal([]byte(body), &e)
	return domain.ErrPersistence.WithCause(
		fmt.Errorf("profile store replied with status %d (code %q)", status, e.Code),
	)
}

func mustMarshal(v interface{}) json.RawMessage {
	buf, _ := json.Marshal(v)
	return buf
}
