package service

import (
	"context"
	"testing"

	"capstonehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapstoneService(f *fixture) *CapstoneService {
	return NewCapstoneService(f.capstones, f.requests, f.groups, f.users, NoopFileStorage{})
}

func TestCapstoneService_CreateRoleCheck(t *testing.T) {
	f := newFixture(t)
	svc := newCapstoneService(f)
	ctx := context.Background()

	student := f.user(t, models.RoleMahasiswa)
	_, err := svc.Create(ctx, student.ID, models.RoleMahasiswa, CreateCapstoneInput{Title: "Judul"})
	assert.Equal(t, "FORBIDDEN", appCode(t, err))

	alumni := f.user(t, models.RoleAlumni)
	capstone, err := svc.Create(ctx, alumni.ID, models.RoleAlumni, CreateCapstoneInput{
		Title:    "Sistem Presensi Berbasis RFID",
		Category: "IoT",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CapstoneStatusAvailable, capstone.Status)

	_, err = svc.Create(ctx, alumni.ID, models.RoleAlumni, CreateCapstoneInput{})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestCapstoneService_CreateValidatesDosen(t *testing.T) {
	f := newFixture(t)
	svc := newCapstoneService(f)
	ctx := context.Background()

	alumni := f.user(t, models.RoleAlumni)
	notADosen := f.user(t, models.RoleMahasiswa)

	_, err := svc.Create(ctx, alumni.ID, models.RoleAlumni, CreateCapstoneInput{
		Title:   "Judul",
		DosenID: &notADosen.ID,
	})
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))

	dosen := f.user(t, models.RoleDosen)
	capstone, err := svc.Create(ctx, alumni.ID, models.RoleAlumni, CreateCapstoneInput{
		Title:   "Judul",
		DosenID: &dosen.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, capstone.DosenID)
	assert.Equal(t, dosen.ID, *capstone.DosenID)
}

func TestCapstoneService_DecorationsAndProposalGating(t *testing.T) {
	f := newFixture(t)
	svc := newCapstoneService(f)
	ctx := context.Background()

	owner := f.user(t, models.RoleAlumni)
	capstone := f.capstone(t, owner)

	winnerLeader, winnerGroup := f.leaderWithGroup(t)
	winnerReq, err := f.matching.SubmitRequest(ctx, winnerLeader.ID, SubmitRequestInput{CapstoneID: capstone.ID})
	require.NoError(t, err)

	otherLeader, _ := f.leaderWithGroup(t)
	_, err = f.matching.SubmitRequest(ctx, otherLeader.ID, SubmitRequestInput{CapstoneID: capstone.ID})
	require.NoError(t, err)

	t.Run("pending state hides proposal from everyone but authors", func(t *testing.T) {
		view, err := svc.Get(ctx, capstone.ID, Viewer{ID: winnerLeader.ID, Role: models.RoleMahasiswa})
		require.NoError(t, err)
		assert.Nil(t, view.TakenBy)
		assert.Equal(t, int64(2), view.PendingGroupsCount)
		assert.Empty(t, view.ProposalURL)
	})

	_, err = f.matching.ReviewRequest(ctx, owner.ID, winnerReq.ID, ReviewInput{Decision: models.RequestStatusAccepted})
	require.NoError(t, err)

	t.Run("winning group sees proposal and takenBy", func(t *testing.T) {
		view, err := svc.Get(ctx, capstone.ID, Viewer{ID: winnerLeader.ID, Role: models.RoleMahasiswa})
		require.NoError(t, err)
		require.NotNil(t, view.TakenBy)
		assert.Equal(t, winnerGroup.ID, view.TakenBy.ID)
		assert.Equal(t, capstone.ProposalURL, view.ProposalURL)
	})

	t.Run("losing group does not see proposal", func(t *testing.T) {
		view, err := svc.Get(ctx, capstone.ID, Viewer{ID: otherLeader.ID, Role: models.RoleMahasiswa})
		require.NoError(t, err)
		assert.Empty(t, view.ProposalURL)
	})

	t.Run("anonymous sees nothing extra", func(t *testing.T) {
		view, err := svc.Get(ctx, capstone.ID, Viewer{})
		require.NoError(t, err)
		assert.Empty(t, view.ProposalURL)
	})

	t.Run("admin and owner always see proposal", func(t *testing.T) {
		admin := f.user(t, models.RoleAdmin)
		view, err := svc.Get(ctx, capstone.ID, Viewer{ID: admin.ID, Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, capstone.ProposalURL, view.ProposalURL)

		view, err = svc.Get(ctx, capstone.ID, Viewer{ID: owner.ID, Role: models.RoleAlumni})
		require.NoError(t, err)
		assert.Equal(t, capstone.ProposalURL, view.ProposalURL)
	})
}

func TestCapstoneService_DeleteRules(t *testing.T) {
	f := newFixture(t)
	svc := newCapstoneService(f)
	ctx := context.Background()

	owner := f.user(t, models.RoleAlumni)
	capstone := f.capstone(t, owner)

	stranger := f.user(t, models.RoleAlumni)
	err := svc.Delete(ctx, stranger.ID, models.RoleAlumni, capstone.ID)
	assert.Equal(t, "FORBIDDEN", appCode(t, err))

	leader, _ := f.leaderWithGroup(t)
	req, err := f.matching.SubmitRequest(ctx, leader.ID, SubmitRequestInput{CapstoneID: capstone.ID})
	require.NoError(t, err)
	_, err = f.matching.ReviewRequest(ctx, owner.ID, req.ID, ReviewInput{Decision: models.RequestStatusAccepted})
	require.NoError(t, err)

	// A taken capstone cannot be deleted even by its owner.
	err = svc.Delete(ctx, owner.ID, models.RoleAlumni, capstone.ID)
	assert.Equal(t, "CONFLICT", appCode(t, err))

	untouched := f.capstone(t, owner)
	require.NoError(t, svc.Delete(ctx, owner.ID, models.RoleAlumni, untouched.ID))
	_, err = svc.Get(ctx, untouched.ID, Viewer{})
	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

func TestCapstoneService_UpdateNeverTouchesStatus(t *testing.T) {
	f := newFixture(t)
	svc := newCapstoneService(f)
	ctx := context.Background()

	owner := f.user(t, models.RoleAlumni)
	capstone := f.capstone(t, owner)
	require.NoError(t, f.capstones.UpdateStatus(ctx, capstone.ID, models.CapstoneStatusUnavailable))

	updated, err := svc.Update(ctx, owner.ID, models.RoleAlumni, capstone.ID, UpdateCapstoneInput{
		Title: "Judul Baru",
	})
	require.NoError(t, err)
	assert.Equal(t, "Judul Baru", updated.Title)
	assert.Equal(t, models.CapstoneStatusUnavailable, updated.Status)
}
