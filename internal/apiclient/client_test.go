package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/worklog-dictionaries/internal/cache"
	"github.com/spec-kit/worklog-dictionaries/internal/config"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/internal/session"
	"github.com/spec-kit/worklog-dictionaries/pkg/util"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.New(cache.NewMemory(), nil)
	client := New(config.APIClientConfig{BaseURL: server.URL, TimeoutSeconds: 5}, sess, nil)
	return client, sess
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(domain.CateringVendors{})
	}))
	sess.SetCredentials(context.Background(), "tok-1", domain.UserProfile{ID: "u", Email: "e@x", Role: domain.UserRoleAdmin})

	var out domain.CateringVendors
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/dictionaries/catering", nil, &out))
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestDoOmitsHeaderWhenSignedOut(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(domain.CateringVendors{})
	}))

	var out domain.CateringVendors
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/dictionaries/catering", nil, &out))
	assert.Empty(t, gotAuth)
}

func TestDoSurfacesStatusCarryingError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	}))

	err := client.Do(context.Background(), http.MethodPost, "/dictionaries/catering", domain.VendorPayload{TaxID: "1", Name: "A"}, nil)
	require.Error(t, err)
	assert.True(t, util.IsStatus(err, http.StatusConflict))
}

func TestDoClearsSessionOn401(t *testing.T) {
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	sess.SetCredentials(context.Background(), "expired", domain.UserProfile{ID: "u", Email: "e@x", Role: domain.UserRoleUser})

	err := client.Do(context.Background(), http.MethodGet, "/dictionaries/catering", nil, nil)
	require.Error(t, err)
	assert.True(t, util.IsStatus(err, http.StatusUnauthorized), "the 401 still propagates")
	assert.False(t, sess.IsAuthenticated(), "credentials are cleared")
}

func TestDoRejectsUnknownResponseShape(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","taxId":"1","name":"A","color":"red"}`))
	}))

	var out domain.CateringVendor
	err := client.Do(context.Background(), http.MethodGet, "/dictionaries/catering/c1", nil, &out)
	require.Error(t, err)

	var decodeErr *util.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestLoginStoresCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("username") != "admin@example.com" || r.PostFormValue("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.TokenResponse{AccessToken: "tok-9", TokenType: "bearer"})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-9" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.UserProfile{ID: "u1", Email: "admin@example.com", Role: domain.UserRoleAdmin})
	})

	client, sess := newTestClient(t, mux)
	require.NoError(t, client.Login(context.Background(), "admin@example.com", "secret"))

	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, "tok-9", sess.Token())
	require.NotNil(t, sess.Profile())
	assert.Equal(t, domain.UserRoleAdmin, sess.Profile().Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := client.Login(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, util.IsStatus(err, http.StatusUnauthorized))
	assert.False(t, sess.IsAuthenticated())
}
