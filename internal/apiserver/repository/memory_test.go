package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/worklog-dictionaries/internal/domain"
)

func TestMemoryVendorsAreIsolatedByKind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Vendors("catering").Create(ctx, "tax-1", "Bar")
	require.NoError(t, err)

	// same tax id in the other dictionary is fine
	_, err = store.Vendors("accommodation").Create(ctx, "tax-1", "Hotel")
	require.NoError(t, err)

	catering, err := store.Vendors("catering").List(ctx)
	require.NoError(t, err)
	assert.Len(t, catering, 1)
}

func TestMemoryMemberMoveShowsUpInTeamListing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	teamA, err := store.Teams().Create(ctx, "A")
	require.NoError(t, err)
	teamB, err := store.Teams().Create(ctx, "B")
	require.NoError(t, err)

	member, err := store.Members().Create(ctx, "Adam", domain.MemberRoleWorker, &teamA.ID)
	require.NoError(t, err)

	_, err = store.Members().Update(ctx, member.ID, "Adam", domain.MemberRoleWorker, &teamB.ID)
	require.NoError(t, err)

	teams, err := store.Teams().ListWithMembers(ctx)
	require.NoError(t, err)
	byID := map[string][]domain.TeamMember{}
	for _, team := range teams {
		byID[team.ID] = team.Members
	}
	assert.Empty(t, byID[teamA.ID])
	require.Len(t, byID[teamB.ID], 1)
	assert.Equal(t, "Adam", byID[teamB.ID][0].Name)
}

func TestMemoryMemberNameUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Members().Create(ctx, "Adam", domain.MemberRoleWorker, nil)
	require.NoError(t, err)
	_, err = store.Members().Create(ctx, "Adam", domain.MemberRoleSupervisor, nil)
	require.Error(t, err)
}
