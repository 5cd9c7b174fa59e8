package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/worklog-dictionaries/internal/apiserver/repository"
	"github.com/spec-kit/worklog-dictionaries/internal/config"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/internal/observability"
)

func testLogger() *zap.Logger { return zap.NewNop() }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "dictionary-api-test"},
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
			AdminEmail:            "admin@example.com",
			AdminPassword:         "admin-pass",
		},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := testConfig()
	store := repository.NewMemoryStore()
	repos := Repositories{
		Users:         store.Users(),
		Catering:      store.Vendors("catering"),
		Accommodation: store.Vendors("accommodation"),
		Teams:         store.Teams(),
		Members:       store.Members(),
	}
	require.NoError(t, SeedAdmin(context.Background(), cfg.Auth, repos.Users, testLogger()))
	return New(cfg, repos, testLogger(), observability.NewMetrics())
}

func loginAs(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	req, _ := http.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token domain.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&token))
	return token.AccessToken
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestDictionariesRequireAuthentication(t *testing.T) {
	app := newTestApp(t)
	resp, _ := doJSON(t, app, http.MethodGet, "/dictionaries/catering", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInvalidTokenIsRejected(t *testing.T) {
	app := newTestApp(t)
	resp, _ := doJSON(t, app, http.MethodGet, "/dictionaries/catering", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVendorCRUDLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := loginAs(t, app, "admin@example.com", "admin-pass")

	resp, data := doJSON(t, app, http.MethodPost, "/dictionaries/catering", token,
		map[string]string{"taxId": "526-000-11-22", "name": "Bar Mleczny"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.CateringVendor
	require.NoError(t, json.Unmarshal(data, &created))
	assert.NotEmpty(t, created.ID, "ids are server-assigned")

	resp, _ = doJSON(t, app, http.MethodPost, "/dictionaries/catering", token,
		map[string]string{"taxId": "526-000-11-22", "name": "Duplicate"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data = doJSON(t, app, http.MethodPut, "/dictionaries/catering/"+created.ID, token,
		map[string]string{"taxId": "526-000-11-22", "name": "Bar Mleczny Plus"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated domain.CateringVendor
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "Bar Mleczny Plus", updated.Name)

	resp, data = doJSON(t, app, http.MethodGet, "/dictionaries/catering", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed domain.CateringVendors
	require.NoError(t, json.Unmarshal(data, &listed))
	require.Len(t, listed, 1)

	resp, _ = doJSON(t, app, http.MethodDelete, "/dictionaries/catering/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/dictionaries/catering/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMutationsRequireAdminRole(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", "",
		map[string]string{"email": "worker@example.com", "password": "pass123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token := loginAs(t, app, "worker@example.com", "pass123")

	resp, _ = doJSON(t, app, http.MethodGet, "/dictionaries/catering", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads are open to every account")

	resp, _ = doJSON(t, app, http.MethodPost, "/dictionaries/catering", token,
		map[string]string{"taxId": "1", "name": "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTeamListingEmbedsMembers(t *testing.T) {
	app := newTestApp(t)
	token := loginAs(t, app, "admin@example.com", "admin-pass")

	resp, data := doJSON(t, app, http.MethodPost, "/dictionaries/team", token, map[string]string{"name": "Budowa A"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var team domain.Team
	require.NoError(t, json.Unmarshal(data, &team))

	resp, data = doJSON(t, app, http.MethodPost, "/dictionaries/team/members", token,
		map[string]any{"name": "Adam", "role": "WORKER", "teamId": team.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var member domain.TeamMember
	require.NoError(t, json.Unmarshal(data, &member))
	require.NotNil(t, member.TeamID)
	assert.Equal(t, team.ID, *member.TeamID)

	resp, data = doJSON(t, app, http.MethodGet, "/dictionaries/team", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var teams domain.Teams
	require.NoError(t, json.Unmarshal(data, &teams))
	require.Len(t, teams, 1)
	require.Len(t, teams[0].Members, 1)
	assert.Equal(t, "Adam", teams[0].Members[0].Name)
}

func TestMemberWithUnknownTeamIsRejected(t *testing.T) {
	app := newTestApp(t)
	token := loginAs(t, app, "admin@example.com", "admin-pass")

	resp, _ := doJSON(t, app, http.MethodPost, "/dictionaries/team/members", token,
		map[string]any{"name": "Adam", "role": "WORKER", "teamId": "no-such-team"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMemberRoleIsValidated(t *testing.T) {
	app := newTestApp(t)
	token := loginAs(t, app, "admin@example.com", "admin-pass")

	resp, _ := doJSON(t, app, http.MethodPost, "/dictionaries/team/members", token,
		map[string]any{"name": "Adam", "role": "MANAGER"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDuplicateTeamNameConflicts(t *testing.T) {
	app := newTestApp(t)
	token := loginAs(t, app, "admin@example.com", "admin-pass")

	resp, _ := doJSON(t, app, http.MethodPost, "/dictionaries/team", token, map[string]string{"name": "Budowa A"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/dictionaries/team", token, map[string]string{"name": "Budowa A"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
