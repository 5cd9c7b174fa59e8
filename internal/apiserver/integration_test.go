package apiserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/worklog-dictionaries/internal/apiclient"
	"github.com/spec-kit/worklog-dictionaries/internal/cache"
	"github.com/spec-kit/worklog-dictionaries/internal/config"
	"github.com/spec-kit/worklog-dictionaries/internal/dictionary"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/internal/session"
)

// appRoundTripper routes the client's HTTP requests into the fiber app
// without opening a socket.
type appRoundTripper struct {
	app *fiber.App
}

func (rt appRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.app.Test(req, -1)
}

func newIntegrationStack(t *testing.T) (*dictionary.Store, *apiclient.Client, *cache.Memory) {
	t.Helper()
	app := newTestApp(t)

	mem := cache.NewMemory()
	sess := session.New(mem, nil)
	client := apiclient.New(
		config.APIClientConfig{BaseURL: "http://worklog.test", TimeoutSeconds: 5},
		sess, testLogger(),
		apiclient.WithHTTPClient(&http.Client{Transport: appRoundTripper{app: app}}),
	)
	store := dictionary.New(client, mem, testLogger())

	require.NoError(t, client.Login(context.Background(), "admin@example.com", "admin-pass"))
	return store, client, mem
}

func TestStoreAgainstRealServer(t *testing.T) {
	store, _, _ := newIntegrationStack(t)
	ctx := context.Background()

	require.NoError(t, store.FetchAll(ctx, false))
	assert.True(t, store.Loaded())
	assert.Empty(t, store.CateringVendors())

	created, err := store.CreateCateringVendor(ctx, domain.VendorPayload{TaxID: "526-1", Name: "Bar Mleczny"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	require.Len(t, store.CateringVendors(), 1)

	team, err := store.CreateTeam(ctx, "Budowa A")
	require.NoError(t, err)
	teamB, err := store.CreateTeam(ctx, "Budowa B")
	require.NoError(t, err)

	member, err := store.CreateTeamMember(ctx, domain.TeamMemberPayload{
		Name: "Adam", Role: domain.MemberRoleWorker, TeamID: &team.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, member.TeamID)
	assert.Equal(t, team.ID, *member.TeamID)

	// move the member and check both the server's and the mirror's view
	moved, err := store.UpdateTeamMember(ctx, member.ID, domain.TeamMemberPayload{
		Name: "Adam", Role: domain.MemberRoleSupervisor, TeamID: &teamB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, teamB.ID, *moved.TeamID)

	members := store.TeamMembers()
	require.Len(t, members, 1)
	assert.Equal(t, teamB.ID, *members[0].TeamID)
	assert.Equal(t, domain.MemberRoleSupervisor, members[0].Role)

	require.NoError(t, store.FetchAll(ctx, true))
	members = store.TeamMembers()
	require.Len(t, members, 1, "server agrees with the mirror after a full refetch")
	assert.Equal(t, teamB.ID, *members[0].TeamID)
}

func TestStoreConflictErrorCarriesStatus(t *testing.T) {
	store, _, _ := newIntegrationStack(t)
	ctx := context.Background()

	_, err := store.CreateCateringVendor(ctx, domain.VendorPayload{TaxID: "tax-1", Name: "A"})
	require.NoError(t, err)

	_, err = store.CreateCateringVendor(ctx, domain.VendorPayload{TaxID: "tax-1", Name: "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	require.Len(t, store.CateringVendors(), 1, "failed create leaves the mirror alone")
}

func TestHydrationSkipsNetworkAfterSync(t *testing.T) {
	store, client, mem := newIntegrationStack(t)
	ctx := context.Background()

	_, err := store.CreateCateringVendor(ctx, domain.VendorPayload{TaxID: "tax-1", Name: "A"})
	require.NoError(t, err)
	require.NoError(t, store.FetchAll(ctx, false))

	// a fresh store over the same cache starts warm without touching the API
	fresh := dictionary.New(client, mem, testLogger())
	fresh.HydrateFromStorage(ctx)

	assert.True(t, fresh.Loaded())
	require.Len(t, fresh.CateringVendors(), 1)
	assert.Equal(t, "A", fresh.CateringVendors()[0].Name)
	require.NoError(t, fresh.FetchAll(ctx, false), "loaded store short-circuits")
}
