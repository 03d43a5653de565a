package leads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/territory-leads/internal/access"
)

func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func seedLead(t *testing.T, repo Repository, owner string, status Status, city *string) *Lead {
	t.Helper()
	lead := &Lead{
		CompanyName:    "Company of " + owner,
		ContactChannel: ChannelOther,
		ContactValue:   "front desk",
		Status:         status,
		SourceType:     SourceGooglePlacesDiscovery,
		SourcePlaceID:  "ChIJ" + owner,
		CityProvince:   city,
		AssignedToID:   owner,
	}
	require.NoError(t, repo.Create(context.Background(), lead))
	return lead
}

func TestInMemoryRepository_CreateAssignsIDAndTime(t *testing.T) {
	repo := NewInMemoryRepository()
	lead := seedLead(t, repo, "rm-a", StatusNew, nil)

	assert.NotEmpty(t, lead.ID)
	assert.False(t, lead.CreatedAt.IsZero())

	found, err := repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, found.ID)
	assert.Equal(t, "rm-a", found.AssignedToID)
}

func TestInMemoryRepository_CreateRequiresOwner(t *testing.T) {
	repo := NewInMemoryRepository()
	err := repo.Create(context.Background(), &Lead{CompanyName: "Orphan"})
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestInMemoryRepository_GetByIDNotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	lead := seedLead(t, repo, "rm-a", StatusNew, nil)

	found, err := repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	found.AssignedToID = "rm-b"

	again, err := repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "rm-a", again.AssignedToID)
}

func TestInMemoryRepository_ListFiltersNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.now = steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	first := seedLead(t, repo, "rm-a", StatusNew, ptr("Makati City"))
	second := seedLead(t, repo, "rm-b", StatusNew, ptr("Cebu City"))
	third := seedLead(t, repo, "rm-a", StatusContacted, ptr("makati"))

	all, err := repo.List(context.Background(), access.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	byCity, err := repo.List(context.Background(), access.LeadFilter{City: "MAKATI"})
	require.NoError(t, err)
	assert.Len(t, byCity, 2)

	cityAndStatus, err := repo.List(context.Background(), access.LeadFilter{City: "makati", Status: "NEW"})
	require.NoError(t, err)
	require.Len(t, cityAndStatus, 1)
	assert.Equal(t, first.ID, cityAndStatus[0].ID)

	byOwner, err := repo.List(context.Background(), access.LeadFilter{OwnerID: "rm-b"})
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, second.ID, byOwner[0].ID)
}
