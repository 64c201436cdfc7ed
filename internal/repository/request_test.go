package repository

import (
	"context"
	"testing"
	"time"

	"capstonehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRepository_ActivePairAndCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	dosen := seedUser(t, db, models.RoleDosen)
	leader := seedUser(t, db, models.RoleMahasiswa)
	group := seedGroup(t, db, leader)
	capstone := seedCapstone(t, db, dosen)

	pair, err := repo.GetActivePair(ctx, group.ID, capstone.ID)
	require.NoError(t, err)
	assert.Nil(t, pair, "no request yet")

	req := &models.Request{GroupID: group.ID, CapstoneID: capstone.ID, Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, req))

	pair, err = repo.GetActivePair(ctx, group.ID, capstone.ID)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, req.ID, pair.ID)

	active, err := repo.CountActiveByGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)

	pending, err := repo.CountPendingByCapstone(ctx, capstone.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	// A rejected request no longer counts as active for either side.
	rows, err := repo.UpdateStatusIfPending(ctx, req.ID, models.RequestStatusRejected, "changed our minds")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	pair, err = repo.GetActivePair(ctx, group.ID, capstone.ID)
	require.NoError(t, err)
	assert.Nil(t, pair)

	active, err = repo.CountActiveByGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Zero(t, active)
}

func TestRequestRepository_UpdateStatusIfPending_AlreadyReviewed(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	dosen := seedUser(t, db, models.RoleDosen)
	leader := seedUser(t, db, models.RoleMahasiswa)
	group := seedGroup(t, db, leader)
	capstone := seedCapstone(t, db, dosen)

	req := &models.Request{GroupID: group.ID, CapstoneID: capstone.ID, Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, req))

	rows, err := repo.UpdateStatusIfPending(ctx, req.ID, models.RequestStatusAccepted, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// A second transition loses the race: the guard matches zero rows and the
	// stored decision is untouched.
	rows, err = repo.UpdateStatusIfPending(ctx, req.ID, models.RequestStatusRejected, "too late")
	require.NoError(t, err)
	assert.Zero(t, rows)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, got.Status)
	assert.Empty(t, got.Reason)
}

func TestRequestRepository_HasAcceptedAndPendingList(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	dosen := seedUser(t, db, models.RoleDosen)
	capstone := seedCapstone(t, db, dosen)

	groups := make([]*models.Group, 3)
	reqs := make([]*models.Request, 3)
	for i := range groups {
		leader := seedUser(t, db, models.RoleMahasiswa)
		groups[i] = seedGroup(t, db, leader)
		reqs[i] = &models.Request{GroupID: groups[i].ID, CapstoneID: capstone.ID, Status: models.RequestStatusPending}
		require.NoError(t, repo.Create(ctx, reqs[i]))
	}

	accepted, err := repo.HasAccepted(ctx, capstone.ID)
	require.NoError(t, err)
	assert.False(t, accepted)

	rows, err := repo.UpdateStatusIfPending(ctx, reqs[0].ID, models.RequestStatusAccepted, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	accepted, err = repo.HasAccepted(ctx, capstone.ID)
	require.NoError(t, err)
	assert.True(t, accepted)

	winner, err := repo.GetAcceptedByCapstone(ctx, capstone.ID)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, reqs[0].ID, winner.ID)

	// The siblings still pending exclude the winner.
	siblings, err := repo.ListPendingByCapstone(ctx, capstone.ID, reqs[0].ID)
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	for _, s := range siblings {
		assert.NotEqual(t, reqs[0].ID, s.ID)
		assert.Equal(t, models.RequestStatusPending, s.Status)
	}
}

func TestRequestRepository_ListExpiredPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	dosen := seedUser(t, db, models.RoleDosen)
	capstone := seedCapstone(t, db, dosen)

	oldLeader := seedUser(t, db, models.RoleMahasiswa)
	oldGroup := seedGroup(t, db, oldLeader)
	stale := &models.Request{GroupID: oldGroup.ID, CapstoneID: capstone.ID, Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, stale))
	// Backdate past the expiry window.
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().Add(-80*time.Hour)).Error)

	freshLeader := seedUser(t, db, models.RoleMahasiswa)
	freshGroup := seedGroup(t, db, freshLeader)
	fresh := &models.Request{GroupID: freshGroup.ID, CapstoneID: capstone.ID, Status: models.RequestStatusPending}
	require.NoError(t, repo.Create(ctx, fresh))

	cutoff := time.Now().Add(-72 * time.Hour)
	expired, err := repo.ListExpiredPending(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
}

func TestRequestRepository_ListByCapstoneOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, models.RoleDosen)
	other := seedUser(t, db, models.RoleDosen)
	mine := seedCapstone(t, db, owner)
	theirs := seedCapstone(t, db, other)

	leader := seedUser(t, db, models.RoleMahasiswa)
	group := seedGroup(t, db, leader)
	require.NoError(t, repo.Create(ctx, &models.Request{GroupID: group.ID, CapstoneID: mine.ID, Status: models.RequestStatusPending}))

	leader2 := seedUser(t, db, models.RoleMahasiswa)
	group2 := seedGroup(t, db, leader2)
	require.NoError(t, repo.Create(ctx, &models.Request{GroupID: group2.ID, CapstoneID: theirs.ID, Status: models.RequestStatusPending}))

	inbox, err := repo.ListByCapstoneOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, mine.ID, inbox[0].CapstoneID)
	assert.Equal(t, group.ID, inbox[0].Group.ID)
}
