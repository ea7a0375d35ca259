package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/decorly/decorly-backend/internal/models"
)

func validGenerateInput() GenerateDesignInput {
	return GenerateDesignInput{
		Image:       "data:image/jpeg;base64,Zm9v",
		RoomType:    "living_room",
		DesignStyle: "scandinavian",
		ColorTone:   "warm",
	}
}

type designFixture struct {
	userRepo   *fakeUserRepo
	designRepo *fakeDesignRepo
	projector  *fixedProjector
	images     *fakeImageStore
	generator  *fakeGenerator
	svc        DesignService
}

func newDesignFixture() *designFixture {
	f := &designFixture{
		userRepo:   newFakeUserRepo(),
		designRepo: newFakeDesignRepo(),
		projector:  &fixedProjector{},
		images:     &fakeImageStore{},
		generator:  &fakeGenerator{result: "Z2VuZXJhdGVk"},
	}
	f.svc = NewDesignService(f.designRepo, f.userRepo, f.projector, f.images, f.generator, zap.NewNop())
	return f
}

func TestGenerateChargesFreeQuotaExactlyOnce(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com", FreeDesignsUsed: 1})

	design, err := f.svc.Generate(context.Background(), user.ID, validGenerateInput())
	require.NoError(t, err)
	assert.NotEmpty(t, design.GeneratedImage)
	assert.Equal(t, 2, f.images.uploads, "source and generated images are both stored")

	stored, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.FreeDesignsUsed)
}

func TestGenerateRejectsExhaustedFreeQuota(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com", FreeDesignsUsed: models.FreeDesignQuota})

	_, err := f.svc.Generate(context.Background(), user.ID, validGenerateInput())
	assert.ErrorIs(t, err, ErrUpgradeRequired)

	// No side effects of any kind.
	assert.Equal(t, 0, f.images.uploads)
	assert.Equal(t, 0, f.generator.calls)
	count, _ := f.designRepo.CountByUser(context.Background(), user.ID)
	assert.Equal(t, 0, count)
	stored, _ := f.userRepo.GetByID(context.Background(), user.ID)
	assert.Equal(t, models.FreeDesignQuota, stored.FreeDesignsUsed)
}

func TestGenerateBypassesQuotaForSubscribers(t *testing.T) {
	f := newDesignFixture()
	f.projector.status = SubscriptionStatus{IsSubscribed: true}
	user := f.userRepo.add(&models.User{Email: "ada@example.com", FreeDesignsUsed: models.FreeDesignQuota})

	_, err := f.svc.Generate(context.Background(), user.ID, validGenerateInput())
	require.NoError(t, err)

	stored, err := f.userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FreeDesignQuota, stored.FreeDesignsUsed, "paying users never consume the free counter")
}

func TestGenerateBypassesQuotaForPremium(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com", IsPremium: true, FreeDesignsUsed: models.FreeDesignQuota})

	_, err := f.svc.Generate(context.Background(), user.ID, validGenerateInput())
	assert.NoError(t, err)
}

func TestGenerateFailurePersistsNothingAndChargesNothing(t *testing.T) {
	f := newDesignFixture()
	f.generator.err = assert.AnError
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})

	_, err := f.svc.Generate(context.Background(), user.ID, validGenerateInput())
	assert.ErrorIs(t, err, ErrGenerationFailed)

	count, _ := f.designRepo.CountByUser(context.Background(), user.ID)
	assert.Equal(t, 0, count)
	stored, _ := f.userRepo.GetByID(context.Background(), user.ID)
	assert.Equal(t, 0, stored.FreeDesignsUsed)
}

func TestGenerateUploadFailure(t *testing.T) {
	f := newDesignFixture()
	f.images.uploadErr = assert.AnError
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})

	_, err := f.svc.Generate(context.Background(), user.ID, validGenerateInput())
	assert.ErrorIs(t, err, ErrImageStoreFailed)
	assert.Equal(t, 0, f.generator.calls, "generator is not called when the source upload fails")
}

func TestGenerateValidatesRequiredFields(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})

	input := validGenerateInput()
	input.RoomType = ""
	_, err := f.svc.Generate(context.Background(), user.ID, input)
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})
	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 12; i++ {
		f.designRepo.add(&models.Design{
			UserID:    user.ID,
			RoomType:  fmt.Sprintf("room-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := f.svc.List(context.Background(), user.ID, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 12, page.TotalDesigns)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Output, 5)
	// Newest first: page 2 of 5 holds items 7 down to 3.
	assert.Equal(t, "room-7", page.Output[0].RoomType)
	assert.Equal(t, "room-3", page.Output[4].RoomType)
}

func TestListPastTheEndIsEmptyNotNil(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})

	page, err := f.svc.List(context.Background(), user.ID, 3, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Output)
	assert.Empty(t, page.Output)
	assert.Equal(t, 0, page.TotalPages)
}

func TestListRejectsNonPositivePagination(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})

	_, err := f.svc.List(context.Background(), user.ID, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidPagination)
	_, err = f.svc.List(context.Background(), user.ID, 1, -1)
	assert.ErrorIs(t, err, ErrInvalidPagination)
}

func TestDeleteDestroysImagesAndRecord(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})
	design := f.designRepo.add(&models.Design{
		UserID:           user.ID,
		ImageID:          "sources/pid-1",
		GeneratedImageID: "generated/pid-2",
	})

	err := f.svc.Delete(context.Background(), user.ID, design.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sources/pid-1", "generated/pid-2"}, f.images.deleted)

	count, _ := f.designRepo.CountByUser(context.Background(), user.ID)
	assert.Equal(t, 0, count)
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	f := newDesignFixture()
	owner := f.userRepo.add(&models.User{Email: "ada@example.com"})
	intruder := f.userRepo.add(&models.User{Email: "eve@example.com"})
	design := f.designRepo.add(&models.Design{UserID: owner.ID, ImageID: "sources/pid-1"})

	err := f.svc.Delete(context.Background(), intruder.ID, design.ID)
	assert.ErrorIs(t, err, ErrForbiddenAccess)

	// The record and images are untouched.
	assert.Empty(t, f.images.deleted)
	_, err = f.designRepo.GetByID(context.Background(), design.ID)
	assert.NoError(t, err)
}

func TestDeleteUnknownDesign(t *testing.T) {
	f := newDesignFixture()
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})

	err := f.svc.Delete(context.Background(), user.ID, "missing")
	assert.ErrorIs(t, err, ErrDesignNotFound)
}

func TestDeleteProceedsWhenImageStoreFails(t *testing.T) {
	f := newDesignFixture()
	f.images.deleteErr = assert.AnError
	user := f.userRepo.add(&models.User{Email: "ada@example.com"})
	design := f.designRepo.add(&models.Design{UserID: user.ID, ImageID: "sources/pid-1"})

	err := f.svc.Delete(context.Background(), user.ID, design.ID)
	assert.NoError(t, err, "storage failures must not block record deletion")

	count, _ := f.designRepo.CountByUser(context.Background(), user.ID)
	assert.Equal(t, 0, count)
}
