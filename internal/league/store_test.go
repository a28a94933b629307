package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safarifame/internal/model"
)

func TestLeaderboard_SortedByPoints(t *testing.T) {
	s := NewStore([]model.Boxer{
		{ID: 1, Name: "Low", Points: 10},
		{ID: 2, Name: "High", Points: 300},
		{ID: 3, Name: "TiedA", Points: 50},
		{ID: 4, Name: "TiedB", Points: 50},
	}, nil)

	names := []string{}
	for _, b := range s.Leaderboard() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"High", "TiedA", "TiedB", "Low"}, names)

	// Leaderboard does not reorder the underlying roster.
	assert.Equal(t, "Low", s.Boxers()[0].Name)
}

func TestSeededStore(t *testing.T) {
	s := NewSeededStore()
	assert.Len(t, s.Boxers(), 5)
	assert.Len(t, s.Requests(), 2)
	assert.Equal(t, "Tyson Fury", s.Leaderboard()[0].Name)
}

func TestAddRequest(t *testing.T) {
	s := NewSeededStore()

	req, err := s.AddRequest("  Mary Kom ", "Magnificent", "254700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(3), req.ID)
	assert.Equal(t, "Mary Kom", req.Name)
	assert.Equal(t, model.StatusPending, req.Status)

	reqs := s.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, req, reqs[2])
}

func TestAddRequest_Validation(t *testing.T) {
	s := NewStore(nil, nil)
	cases := map[string][3]string{
		"missing name":     {"", "Nick", "254700000000"},
		"missing nickname": {"Name", " ", "254700000000"},
		"missing phone":    {"Name", "Nick", ""},
		"non digit phone":  {"Name", "Nick", "+254 700"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.AddRequest(in[0], in[1], in[2])
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Empty(t, s.Requests())
}

func TestApprove(t *testing.T) {
	s := NewSeededStore()

	boxer, err := s.Approve(1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), boxer.ID)
	assert.Equal(t, "John Doe", boxer.Name)
	assert.Equal(t, "The Hammer", boxer.Nickname)
	assert.Equal(t, 0, boxer.Points)
	assert.Equal(t, model.Record{}, boxer.Record)
	assert.Equal(t, "254711223344@safarifame.com", boxer.Address)
	assert.Equal(t, "https://picsum.photos/seed/JohnDoe/200", boxer.AvatarURL)
	assert.Equal(t, newcomerBio, boxer.Bio)

	assert.Len(t, s.Boxers(), 6)
	reqs := s.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, int64(2), reqs[0].ID)

	// Newcomers rank last.
	board := s.Leaderboard()
	assert.Equal(t, "John Doe", board[len(board)-1].Name)

	_, err = s.Approve(1)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestDeny(t *testing.T) {
	s := NewSeededStore()

	require.NoError(t, s.Deny(2))
	assert.Len(t, s.Boxers(), 5)
	require.Len(t, s.Requests(), 1)

	assert.ErrorIs(t, s.Deny(2), ErrRequestNotFound)
	assert.ErrorIs(t, s.Deny(404), ErrRequestNotFound)
}

func TestStoreCopiesInput(t *testing.T) {
	boxers := SeedBoxers()
	s := NewStore(boxers, nil)
	boxers[0].Name = "mutated"
	assert.Equal(t, "Tyson Fury", s.Boxers()[0].Name)
}
