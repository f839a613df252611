package data

import (
	"context"
	"testing"
	"time"

	"ambassador-tracker/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type InvitationRepoTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo domain.InvitationRepository
	at   time.Time
}

func (s *InvitationRepoTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = NewInvitationRepo(newTestData(s.T()), log.DefaultLogger)
	s.at = time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
}

func TestInvitationRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationRepoTestSuite))
}

func (s *InvitationRepoTestSuite) invite(id, universityID, email string, status domain.InvitationStatus, offset time.Duration) *domain.Invitation {
	inv := domain.ReconstructInvitation(id, universityID, "Uni "+universityID, "Ada", email, status, s.at.Add(offset), nil)
	require.NoError(s.T(), s.repo.Create(s.ctx, inv))
	return inv
}

func (s *InvitationRepoTestSuite) TestCreateAndFindLatest() {
	s.invite("i1", "u1", "a@x.com", domain.StatusInvited, 0)
	s.invite("i2", "u2", "a@x.com", domain.StatusInvited, time.Hour)

	found, err := s.repo.FindLatestByEmail(s.ctx, "a@x.com")

	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.Equal(s.T(), "i2", found.ID())
	assert.Equal(s.T(), "Uni u2", found.UniversityName())
	assert.Equal(s.T(), domain.StatusInvited, found.Status())
	assert.Nil(s.T(), found.RespondedAt())
}

func (s *InvitationRepoTestSuite) TestFindLatestByEmail_NotFound() {
	found, err := s.repo.FindLatestByEmail(s.ctx, "nobody@x.com")

	require.NoError(s.T(), err)
	assert.Nil(s.T(), found)
}

func (s *InvitationRepoTestSuite) TestUpdate() {
	inv := s.invite("i1", "u1", "a@x.com", domain.StatusInvited, 0)
	require.NoError(s.T(), inv.Respond(domain.StatusDeclined, s.at.Add(time.Hour)))

	require.NoError(s.T(), s.repo.Update(s.ctx, inv))

	found, err := s.repo.FindLatestByEmail(s.ctx, "a@x.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.StatusDeclined, found.Status())
	require.NotNil(s.T(), found.RespondedAt())
	assert.True(s.T(), s.at.Add(time.Hour).Equal(*found.RespondedAt()))
}

func (s *InvitationRepoTestSuite) TestUpdate_NotFound() {
	inv := domain.ReconstructInvitation("ghost", "u1", "", "Ada", "a@x.com", domain.StatusInvited, s.at, nil)

	err := s.repo.Update(s.ctx, inv)

	assert.ErrorIs(s.T(), err, domain.ErrInvitationNotFound)
}

func (s *InvitationRepoTestSuite) TestFindActive() {
	s.invite("i1", "u1", "a@x.com", domain.StatusDeclined, time.Hour)
	s.invite("i2", "u1", "a@x.com", domain.StatusAccepted, 0)

	found, err := s.repo.FindActive(s.ctx, "u1", "a@x.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.Equal(s.T(), "i2", found.ID())

	found, err = s.repo.FindActive(s.ctx, "u2", "a@x.com")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), found)
}

func (s *InvitationRepoTestSuite) TestListByUniversity_Pagination() {
	s.invite("i1", "u1", "a@x.com", domain.StatusInvited, 0)
	s.invite("i2", "u1", "b@x.com", domain.StatusInvited, time.Minute)
	s.invite("i3", "u1", "c@x.com", domain.StatusInvited, 2*time.Minute)
	s.invite("i4", "u2", "d@x.com", domain.StatusInvited, 3*time.Minute)

	all, err := s.repo.ListByUniversity(s.ctx, "u1", 0, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), "i3", all[0].ID())

	page, err := s.repo.ListByUniversity(s.ctx, "u1", 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 1)
	assert.Equal(s.T(), "i2", page[0].ID())

	rest, err := s.repo.ListByUniversity(s.ctx, "u1", 2, 0)
	require.NoError(s.T(), err)
	require.Len(s.T(), rest, 1)
	assert.Equal(s.T(), "i1", rest[0].ID())
}

func (s *InvitationRepoTestSuite) TestCountByStatus_ZeroFilled() {
	s.invite("i1", "u1", "a@x.com", domain.StatusJoined, 0)
	s.invite("i2", "u1", "b@x.com", domain.StatusJoined, 0)
	s.invite("i3", "u1", "c@x.com", domain.StatusInvited, 0)

	counts, err := s.repo.CountByStatus(s.ctx, "u1")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), counts[domain.StatusJoined])
	assert.Equal(s.T(), int64(1), counts[domain.StatusInvited])
	assert.Equal(s.T(), int64(0), counts[domain.StatusDeclined])
	assert.Equal(s.T(), int64(3), counts.Total())
}

func (s *InvitationRepoTestSuite) TestTransitionByEmail_AcrossUniversities() {
	s.invite("i1", "u1", "a@x.com", domain.StatusAccepted, 0)
	s.invite("i2", "u2", "a@x.com", domain.StatusAccepted, 0)
	s.invite("i3", "u3", "a@x.com", domain.StatusDeclined, 0)
	s.invite("i4", "u1", "b@x.com", domain.StatusAccepted, 0)

	n, err := s.repo.TransitionByEmail(s.ctx, "a@x.com", domain.StatusAccepted, domain.StatusJoined, s.at.Add(time.Hour))

	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), n)

	joined, err := s.repo.CountByEmailAndStatus(s.ctx, "a@x.com", domain.StatusJoined)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), joined)

	declined, err := s.repo.CountByEmailAndStatus(s.ctx, "a@x.com", domain.StatusDeclined)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), declined)

	other, err := s.repo.ListByUniversityAndStatus(s.ctx, "u1", domain.StatusAccepted)
	require.NoError(s.T(), err)
	require.Len(s.T(), other, 1)
	assert.Equal(s.T(), "b@x.com", other[0].AmbassadorEmail())
}
