package league

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"safarifame/internal/model"
)

const (
	addressDomain = "safarifame.com"
	newcomerBio   = "A rising star in the SafariFame league."
)

var (
	ErrRequestNotFound = errors.New("join request not found")
	ErrInvalidRequest  = errors.New("invalid join request")
)

// Store owns the boxers and pending join requests. All mutation goes
// through AddRequest, Approve and Deny.
type Store struct {
	mu       sync.Mutex
	boxers   []model.Boxer
	requests []model.JoinRequest

	nextBoxerID   int64
	nextRequestID int64
}

// NewStore copies the given collections into a new Store.
func NewStore(boxers []model.Boxer, requests []model.JoinRequest) *Store {
	s := &Store{
		boxers:   slices.Clone(boxers),
		requests: slices.Clone(requests),
	}
	for _, b := range s.boxers {
		s.nextBoxerID = max(s.nextBoxerID, b.ID)
	}
	for _, r := range s.requests {
		s.nextRequestID = max(s.nextRequestID, r.ID)
	}
	return s
}

// NewSeededStore returns a Store holding the launch roster.
func NewSeededStore() *Store {
	return NewStore(SeedBoxers(), SeedRequests())
}

// Boxers returns every boxer in insertion order.
func (s *Store) Boxers() []model.Boxer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.boxers)
}

// Leaderboard returns boxers ranked by points, highest first. Ties keep
// insertion order.
func (s *Store) Leaderboard() []model.Boxer {
	ranked := s.Boxers()
	slices.SortStableFunc(ranked, func(a, b model.Boxer) int {
		return b.Points - a.Points
	})
	return ranked
}

// Requests returns the pending join requests.
func (s *Store) Requests() []model.JoinRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// AddRequest queues a new pending join request. All fields are
// required and phone must be digits only.
func (s *Store) AddRequest(name, nickname, phone string) (model.JoinRequest, error) {
	name = strings.TrimSpace(name)
	nickname = strings.TrimSpace(nickname)
	phone = strings.TrimSpace(phone)

	switch {
	case name == "":
		return model.JoinRequest{}, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	case nickname == "":
		return model.JoinRequest{}, fmt.Errorf("%w: nickname is required", ErrInvalidRequest)
	case phone == "":
		return model.JoinRequest{}, fmt.Errorf("%w: phone is required", ErrInvalidRequest)
	case !isDigits(phone):
		return model.JoinRequest{}, fmt.Errorf("%w: phone must contain digits only", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRequestID++
	req := model.JoinRequest{
		ID:       s.nextRequestID,
		Name:     name,
		Nickname: nickname,
		Phone:    phone,
		Status:   model.StatusPending,
	}
	s.requests = append(s.requests, req)
	return req, nil
}

// Approve turns a pending request into a leaderboard entry with zero
// points and removes the request.
func (s *Store) Approve(id int64) (model.Boxer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.takeRequest(id)
	if err != nil {
		return model.Boxer{}, err
	}

	s.nextBoxerID++
	boxer := model.Boxer{
		ID:        s.nextBoxerID,
		Name:      req.Name,
		Nickname:  req.Nickname,
		Address:   req.Phone + "@" + addressDomain,
		AvatarURL: avatarURL(req.Name),
		Bio:       newcomerBio,
	}
	s.boxers = append(s.boxers, boxer)
	return boxer, nil
}

// Deny discards a pending request.
func (s *Store) Deny(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.takeRequest(id)
	return err
}

// takeRequest removes and returns the request with id. Caller holds mu.
func (s *Store) takeRequest(id int64) (model.JoinRequest, error) {
	req, _, ok := lo.FindIndexOf(s.requests, func(r model.JoinRequest) bool {
		return r.ID == id
	})
	if !ok {
		return model.JoinRequest{}, fmt.Errorf("%w: %d", ErrRequestNotFound, id)
	}
	s.requests = lo.Filter(s.requests, func(r model.JoinRequest, _ int) bool {
		return r.ID != id
	})
	return req, nil
}

func avatarURL(name string) string {
	seed := strings.Join(strings.Fields(name), "")
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/200"
}

func isDigits(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
