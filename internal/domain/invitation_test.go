package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvitationStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    InvitationStatus
		wantErr bool
	}{
		{in: "ACCEPTED", want: StatusAccepted},
		{in: "declined", want: StatusDeclined},
		{in: " joined ", want: StatusJoined},
		{in: "INVITED", want: StatusInvited},
		{in: "MAYBE", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInvitationStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	email, err := NormalizeEmail("  A@X.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	for _, bad := range []string{"", "not-an-email", "John <j@x.com>"} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestNewInvitation(t *testing.T) {
	inv, err := NewInvitation("inv-1", "uni-1", "Uni", "Ada", "Ada@Example.com")
	require.NoError(t, err)

	assert.Equal(t, StatusInvited, inv.Status())
	assert.Equal(t, "ada@example.com", inv.AmbassadorEmail())
	assert.Nil(t, inv.RespondedAt())
	assert.True(t, inv.IsActive())

	_, err = NewInvitation("inv-2", "", "Uni", "Ada", "ada@example.com")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestInvitation_Respond(t *testing.T) {
	at := time.Date(2025, 1, 8, 11, 30, 0, 0, time.UTC)

	t.Run("accept stamps respondedAt", func(t *testing.T) {
		inv, _ := NewInvitation("inv-1", "uni-1", "Uni", "Ada", "a@x.com")
		require.NoError(t, inv.Respond(StatusAccepted, at))
		assert.Equal(t, StatusAccepted, inv.Status())
		require.NotNil(t, inv.RespondedAt())
		assert.Equal(t, at, *inv.RespondedAt())
	})

	t.Run("overwrites any previous status", func(t *testing.T) {
		inv := ReconstructInvitation("inv-1", "uni-1", "Uni", "Ada", "a@x.com", StatusJoined, at, &at)
		require.NoError(t, inv.Respond(StatusDeclined, at.Add(time.Hour)))
		assert.Equal(t, StatusDeclined, inv.Status())
	})

	t.Run("rejects non explicit statuses", func(t *testing.T) {
		inv, _ := NewInvitation("inv-1", "uni-1", "Uni", "Ada", "a@x.com")
		assert.ErrorIs(t, inv.Respond(StatusJoined, at), ErrInvalidStatus)
		assert.ErrorIs(t, inv.Respond(StatusInvited, at), ErrInvalidStatus)
		assert.Equal(t, StatusInvited, inv.Status())
	})
}

func TestSignupTransition(t *testing.T) {
	from, to := SignupTransition(true)
	assert.Equal(t, StatusAccepted, from)
	assert.Equal(t, StatusJoined, to)

	from, to = SignupTransition(false)
	assert.Equal(t, StatusInvited, from)
	assert.Equal(t, StatusAccepted, to)
}

func TestStatusCounts(t *testing.T) {
	c := NewStatusCounts()
	assert.Len(t, c, 4)
	assert.Zero(t, c.Total())

	c[StatusJoined] = 3
	c[StatusInvited] = 2
	assert.Equal(t, int64(5), c.Total())
}
