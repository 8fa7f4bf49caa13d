package revocation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTTL is returned when a revocation would never be stored.
var ErrInvalidTTL = errors.New("invalid revocation ttl")

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", ErrInvalidTTL)
	}
	return nil
}
