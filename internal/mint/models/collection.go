package models

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	dErrors "mintgate/pkg/domain-errors"
)

// Collection is one configured minting campaign.
//
// Invariants:
//   - ID is 1-based and sequential; there is no collection 0
//   - CollectionAddress is fixed at creation
//   - EndTime == 0 || EndTime > StartTime
//   - MintCap > 0, and any update sets it strictly above the live supply
//   - once the window has opened (StartTime == 0 || now >= StartTime),
//     StartTime and EndTime are immutable
//
// A zero PaymentToken means fees are paid in native currency. A zero StartTime
// or EndTime means that side of the window is unbounded.
type Collection struct {
	ID                uint64         `json:"id"`
	KeyID             string         `json:"key_id"`
	Artist            common.Address `json:"artist"`
	CollectionAddress common.Address `json:"collection_address"`
	Name              string         `json:"name"`
	Symbol            string         `json:"symbol"`
	BaseURI           string         `json:"base_uri"`
	PaymentToken      common.Address `json:"payment_token"`
	MintCap           uint64         `json:"mint_cap"`
	StartTime         int64          `json:"start_time"`
	EndTime           int64          `json:"end_time"`
	CreatedAt         time.Time      `json:"created_at"`
}

// CollectionSpec carries the caller-supplied fields of a new collection.
type CollectionSpec struct {
	KeyID        string
	Name         string
	Symbol       string
	BaseURI      string
	PaymentToken common.Address
	MintCap      uint64
	StartTime    int64
	EndTime      int64
}

// Validate checks creation rules against now (unix seconds).
func (s *CollectionSpec) Validate(now int64) error {
	if strings.TrimSpace(s.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(s.Symbol) == "" {
		return dErrors.New(dErrors.CodeValidation, "symbol is required")
	}
	if s.MintCap == 0 {
		return dErrors.New(dErrors.CodeValidation, "mint cap must be positive")
	}
	if s.StartTime < 0 || s.EndTime < 0 {
		return dErrors.New(dErrors.CodeValidation, "times must be unix seconds or 0")
	}
	if s.StartTime != 0 && s.StartTime <= now {
		return dErrors.New(dErrors.CodeValidation, "start time must be 0 or in the future")
	}
	if s.EndTime != 0 && s.EndTime <= s.StartTime {
		return dErrors.New(dErrors.CodeValidation, "end time must be 0 or after start time")
	}
	return nil
}

// NewCollection builds a collection after validating spec against now.
func NewCollection(id uint64, artist, address common.Address, spec CollectionSpec, now time.Time) (*Collection, error) {
	if id == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "collection id must be positive")
	}
	if err := spec.Validate(now.Unix()); err != nil {
		return nil, err
	}
	return &Collection{
		ID:                id,
		KeyID:             spec.KeyID,
		Artist:            artist,
		CollectionAddress: address,
		Name:              spec.Name,
		Symbol:            spec.Symbol,
		BaseURI:           spec.BaseURI,
		PaymentToken:      spec.PaymentToken,
		MintCap:           spec.MintCap,
		StartTime:         spec.StartTime,
		EndTime:           spec.EndTime,
		CreatedAt:         now,
	}, nil
}

// PaysNative reports whether fees are settled in native currency.
func (c *Collection) PaysNative() bool {
	return c.PaymentToken == (common.Address{})
}

// WindowOpened reports whether minting has become possible at some point up to now.
func (c *Collection) WindowOpened(now int64) bool {
	return c.StartTime == 0 || now >= c.StartTime
}

// InWindow reports whether now is inside [StartTime, EndTime], with 0 meaning unbounded.
func (c *Collection) InWindow(now int64) bool {
	return c.WindowOpened(now) && (c.EndTime == 0 || now <= c.EndTime)
}

// CanUpdateMintCap checks a cap change against the live total supply.
func (c *Collection) CanUpdateMintCap(caller common.Address, newCap, totalSupply uint64) error {
	if err := c.requireArtist(caller); err != nil {
		return err
	}
	if newCap == c.MintCap {
		return dErrors.New(dErrors.CodeValidation, "mint cap unchanged")
	}
	if newCap <= totalSupply {
		return dErrors.Newf(dErrors.CodeValidation, "mint cap must exceed current supply %d", totalSupply)
	}
	return nil
}

// CanUpdateStartTime checks a start time change at now.
func (c *Collection) CanUpdateStartTime(caller common.Address, newStart, now int64) error {
	if err := c.requireArtist(caller); err != nil {
		return err
	}
	if c.WindowOpened(now) {
		return dErrors.New(dErrors.CodeWindowLocked, "mint window already opened")
	}
	if newStart < 0 || (newStart != 0 && newStart <= now) {
		return dErrors.New(dErrors.CodeValidation, "start time must be 0 or in the future")
	}
	if c.EndTime != 0 && c.EndTime <= newStart {
		return dErrors.New(dErrors.CodeValidation, "start time must be before end time")
	}
	return nil
}

// CanUpdateEndTime checks an end time change at now.
func (c *Collection) CanUpdateEndTime(caller common.Address, newEnd, now int64) error {
	if err := c.requireArtist(caller); err != nil {
		return err
	}
	if c.WindowOpened(now) {
		return dErrors.New(dErrors.CodeWindowLocked, "mint window already opened")
	}
	if newEnd < 0 || (newEnd != 0 && newEnd <= c.StartTime) {
		return dErrors.New(dErrors.CodeValidation, "end time must be 0 or after start time")
	}
	return nil
}

func (c *Collection) requireArtist(caller common.Address) error {
	if caller != c.Artist {
		return dErrors.New(dErrors.CodeForbidden, "caller is not the collection artist")
	}
	return nil
}
