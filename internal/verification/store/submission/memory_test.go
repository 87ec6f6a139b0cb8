package submission

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

type SubmissionStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *SubmissionStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestSubmissionStoreSuite(t *testing.T) {
	suite.Run(t, new(SubmissionStoreSuite))
}

func (s *SubmissionStoreSuite) newSubmission(userID id.UserID) *models.Submission {
	form := models.NewFormState(userID, time.Now())
	form.BusinessInfo.BusinessName = "Fadeaway Barbershop"
	return models.NewSubmission(form, time.Now())
}

func (s *SubmissionStoreSuite) TestCreateAndLookups() {
	s.Run("creates and finds by user", func() {
		userID := id.UserID(uuid.New())
		sub := s.newSubmission(userID)
		s.Require().NoError(s.store.Create(s.ctx, sub))

		found, err := s.store.FindByUser(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(sub.ID, found.ID)
		s.Equal("Fadeaway Barbershop", found.BusinessName)
	})

	s.Run("finds by submission ID", func() {
		sub := s.newSubmission(id.UserID(uuid.New()))
		s.Require().NoError(s.store.Create(s.ctx, sub))

		found, err := s.store.FindByID(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(sub.UserID, found.UserID)
	})

	s.Run("returns ErrNotFound for unknown user", func() {
		_, err := s.store.FindByUser(s.ctx, id.UserID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound for unknown submission", func() {
		_, err := s.store.FindByID(s.ctx, id.SubmissionID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *SubmissionStoreSuite) TestOneSubmissionPerUser() {
	s.Run("rejects a second submission for the same user", func() {
		userID := id.UserID(uuid.New())
		s.Require().NoError(s.store.Create(s.ctx, s.newSubmission(userID)))

		err := s.store.Create(s.ctx, s.newSubmission(userID))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *SubmissionStoreSuite) TestUpdate() {
	s.Run("persists review fields", func() {
		sub := s.newSubmission(id.UserID(uuid.New()))
		s.Require().NoError(s.store.Create(s.ctx, sub))

		s.Require().NoError(sub.Approve("reviewer@vouch", time.Now()))
		s.Require().NoError(s.store.Update(s.ctx, sub))

		found, err := s.store.FindByID(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, found.Status)
		s.Equal("reviewer@vouch", found.ReviewedBy)
	})

	s.Run("returns ErrNotFound for an unknown submission", func() {
		err := s.store.Update(s.ctx, s.newSubmission(id.UserID(uuid.New())))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *SubmissionStoreSuite) TestCopyOut() {
	s.Run("mutating a returned submission does not touch the store", func() {
		userID := id.UserID(uuid.New())
		sub := s.newSubmission(userID)
		s.Require().NoError(s.store.Create(s.ctx, sub))

		found, err := s.store.FindByUser(s.ctx, userID)
		s.Require().NoError(err)
		found.BusinessName = "mutated"

		again, err := s.store.FindByUser(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal("Fadeaway Barbershop", again.BusinessName)
	})
}
