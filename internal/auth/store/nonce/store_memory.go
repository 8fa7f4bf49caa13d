// Package nonce stores outstanding login challenges. Each address holds at
// most one challenge; issuing a new one replaces the old.
package nonce

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/internal/auth/models"
	"mintgate/pkg/platform/sentinel"
)

// InMemoryStore keeps challenges in process memory.
type InMemoryStore struct {
	mu         sync.Mutex
	challenges map[common.Address]models.Challenge
	clock      func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		challenges: make(map[common.Address]models.Challenge),
		clock:      time.Now,
	}
}

func (s *InMemoryStore) Save(_ context.Context, c *models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.Address] = *c
	return nil
}

// Consume removes and returns the challenge for address. Missing or expired
// challenges return sentinel.ErrNotFound.
func (s *InMemoryStore) Consume(_ context.Context, address common.Address) (*models.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.challenges, address)
	if c.IsExpired(s.clock()) {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}
