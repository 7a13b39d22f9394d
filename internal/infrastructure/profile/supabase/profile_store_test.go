package supabase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentry-network/sentry-wallet/internal/core/domain"
	"github.com/sentry-network/sentry-wallet/internal/infrastructure/profile/supabase"
)

const apiKey = "service-role-key"

// fakePostgrest serves the subset of PostgREST used by the profile store.
type fakePostgrest struct {
	lock sync.Mutex
	rows map[string]map[string]json.RawMessage
	fail bool
}

func (f *fakePostgrest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if r.Header.Get("apikey") != apiKey ||
		r.Header.Get("Authorization") != "Bearer "+apiKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"XX000","message":"boom"}`)) // nolint
		return
	}
	if r.URL.Path != "/rest/v1/profiles" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
		column := r.URL.Query().Get("select")
		rows := []map[string]json.RawMessage{}
		if row, ok := f.rows[id]; ok {
			value, ok := row[column]
			if !ok {
				value = json.RawMessage("null")
			}
			rows = append(rows, map[string]json.RawMessage{column: value})
		}
		json.NewEncoder(w).Encode(rows) // nolint
	case http.MethodPost:
		if r.URL.Query().Get("on_conflict") != "id" ||
			!strings.Contains(r.Header.Get("Prefer"), "merge-duplicates") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		payload := map[string]json.RawMessage{}
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var id string
		json.Unmarshal(payload["id"], &id) // nolint
		row, ok := f.rows[id]
		if !ok {
			row = map[string]json.RawMessage{}
			f.rows[id] = row
		}
		for k, v := range payload {
			row[k] = v
		}
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestProfileStore(t *testing.T) {
	ctx := context.Background()
	fake := &fakePostgrest{rows: map[string]map[string]json.RawMessage{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	store, err := supabase.NewProfileStore(supabase.Opts{URL: server.URL, APIKey: apiKey})
	require.NoError(t, err)

	_, err = store.GetEncryptedWallet(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SetEncryptedWallet(ctx, "u1", "cypher"))
	ciphertext, err := store.GetEncryptedWallet(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "cypher", ciphertext)

	data, err := store.GetNomineeData(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, data)

	nominee := []byte(`{"address":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","email":"heir@example.com","share":40}`)
	require.NoError(t, store.SetNomineeData(ctx, "u1", nominee))
	data, err = store.GetNomineeData(ctx, "u1")
	require.NoError(t, err)
	require.JSONEq(t, string(nominee), string(data))

	// Writing one column leaves the other untouched.
	ciphertext, err = store.GetEncryptedWallet(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "cypher", ciphertext)

	require.NoError(t, store.SetNomineeData(ctx, "u1", nil))
	data, err = store.GetNomineeData(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, data)

	// A profile row without a wallet is reported as not found.
	require.NoError(t, store.SetNomineeData(ctx, "u2", nil))
	_, err = store.GetEncryptedWallet(ctx, "u2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileStoreFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("backend error", func(t *testing.T) {
		fake := &fakePostgrest{rows: map[string]map[string]json.RawMessage{}, fail: true}
		server := httptest.NewServer(fake)
		defer server.Close()

		store, err := supabase.NewProfileStore(supabase.Opts{URL: server.URL, APIKey: apiKey})
		require.NoError(t, err)

		_, err = store.GetEncryptedWallet(ctx, "u1")
		require.ErrorIs(t, err, domain.ErrPersistence)
		require.NotErrorIs(t, err, domain.ErrNotFound)

		err = store.SetEncryptedWallet(ctx, "u1", "cypher")
		require.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("wrong key", func(t *testing.T) {
		fake := &fakePostgrest{rows: map[string]map[string]json.RawMessage{}}
		server := httptest.NewServer(fake)
		defer server.Close()

		store, err := supabase.NewProfileStore(supabase.Opts{URL: server.URL, APIKey: "anon"})
		require.NoError(t, err)

		_, err = store.GetEncryptedWallet(ctx, "u1")
		require.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		store, err := supabase.NewProfileStore(supabase.Opts{URL: url, APIKey: apiKey})
		require.NoError(t, err)

		_, err = store.GetEncryptedWallet(ctx, "u1")
		require.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("invalid opts", func(t *testing.T) {
		_, err := supabase.NewProfileStore(supabase.Opts{APIKey: apiKey})
		require.Error(t, err)
		_, err = supabase.NewProfileStore(supabase.Opts{URL: "http://localhost"})
		require.Error(t, err)
	})
}
