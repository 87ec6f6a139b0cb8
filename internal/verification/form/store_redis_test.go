//go:build integration

package form_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vouch/internal/verification/form"
	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *form.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = form.NewRedisStore(s.redis.Client, time.Hour)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	draft := models.NewFormState(userID, now)
	name := "Bluebird Barbershop"
	s.Require().NoError(draft.ApplyBusinessInfo(models.BusinessInfoPatch{BusinessName: &name}, now))
	doc := models.NewVerificationDocument(models.DocumentTypeBusinessLicense, "license.pdf", "memory://license.pdf", 1024, "application/pdf", now)
	s.Require().NoError(draft.SetDocument(doc, now))
	s.Require().NoError(draft.GoToStep(models.StepBusinessDocs, now))

	s.Require().NoError(s.store.Put(ctx, draft))

	got, err := s.store.Get(ctx, userID)
	s.Require().NoError(err)
	s.Equal("Bluebird Barbershop", got.BusinessInfo.BusinessName)
	s.Equal(models.StepBusinessDocs, got.CurrentStep)
	s.Require().NotNil(got.BusinessDocs.BusinessLicense)
	s.Equal(doc.ID, got.BusinessDocs.BusinessLicense.ID)
	s.True(got.UpdatedAt.Equal(now))
}

func (s *RedisStoreSuite) TestMissingDraft() {
	_, err := s.store.Get(context.Background(), id.UserID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestPutReplacesWholeDraft() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	now := time.Now().UTC()

	draft := models.NewFormState(userID, now)
	draft.SetAgreedToTerms(true, now)
	s.Require().NoError(s.store.Put(ctx, draft))

	// A second Put with the flag cleared must win outright.
	draft.SetAgreedToTerms(false, now)
	s.Require().NoError(s.store.Put(ctx, draft))

	got, err := s.store.Get(ctx, userID)
	s.Require().NoError(err)
	s.False(got.AgreedToTerms)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	s.Require().NoError(s.store.Put(ctx, models.NewFormState(userID, time.Now())))
	s.Require().NoError(s.store.Delete(ctx, userID))

	_, err := s.store.Get(ctx, userID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestDraftsExpire() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	short := form.NewRedisStore(s.redis.Client, 500*time.Millisecond)
	s.Require().NoError(short.Put(ctx, models.NewFormState(userID, time.Now())))

	_, err := short.Get(ctx, userID)
	s.Require().NoError(err)

	time.Sleep(time.Second)

	_, err = short.Get(ctx, userID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
