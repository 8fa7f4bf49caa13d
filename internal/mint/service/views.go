package service

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/internal/collectible"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
)

const defaultEventPage = 100

// Settings returns the governance state.
func (s *Service) Settings(ctx context.Context) (*models.Settings, error) {
	var settings *models.Settings
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		settings, err = loadSettings(ctx, store)
		return err
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Collection returns one collection's configuration.
func (s *Service) Collection(ctx context.Context, id uint64) (*models.Collection, error) {
	var c *models.Collection
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		c, err = loadCollection(ctx, store, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CollectionsByArtist lists the ids of an artist's collections in ascending order.
func (s *Service) CollectionsByArtist(ctx context.Context, artist common.Address) ([]uint64, error) {
	var ids []uint64
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		ids, err = store.CollectionIDsByArtist(ctx, artist)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list collections")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return ids, nil
}

// CollectionCount is the number of collections ever created.
func (s *Service) CollectionCount(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		count, err = store.CountCollections(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count collections")
		}
		return nil
	})
	return count, err
}

// Token returns the owner and URI of an issued token.
func (s *Service) Token(ctx context.Context, collectionID, tokenID uint64) (*models.TokenView, error) {
	var view *models.TokenView
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		c, err := loadCollection(ctx, store, collectionID)
		if err != nil {
			return err
		}
		issuer := s.host.Issuer(store, c.CollectionAddress)
		owner, err := issuer.OwnerOf(ctx, tokenID)
		if err != nil {
			return tokenError(err, collectionID, tokenID)
		}
		uri, err := issuer.TokenURI(ctx, tokenID)
		if err != nil {
			return tokenError(err, collectionID, tokenID)
		}
		view = &models.TokenView{
			CollectionID:      c.ID,
			CollectionAddress: c.CollectionAddress,
			TokenID:           tokenID,
			Owner:             owner,
			URI:               uri,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// NextTokenID is the id the next successful mint of a collection will receive.
func (s *Service) NextTokenID(ctx context.Context, collectionID uint64) (uint64, error) {
	var next uint64
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		c, err := loadCollection(ctx, store, collectionID)
		if err != nil {
			return err
		}
		supply, err := s.host.Issuer(store, c.CollectionAddress).TotalSupply(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read total supply")
		}
		next = supply + 1
		return nil
	})
	return next, err
}

// IsConsumed reports whether a trait hash has been spent by a mint.
func (s *Service) IsConsumed(ctx context.Context, hash []byte) (bool, error) {
	if len(hash) == 0 {
		return false, dErrors.New(dErrors.CodeValidation, "trait hash is required")
	}
	var consumed bool
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		consumed, err = store.IsConsumed(ctx, hash)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check trait hash")
		}
		return nil
	})
	return consumed, err
}

// Events pages through the audit log in sequence order, starting after the
// given sequence number.
func (s *Service) Events(ctx context.Context, after int64, limit int) ([]audit.Event, error) {
	if after < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "after must be non-negative")
	}
	switch {
	case limit <= 0:
		limit = defaultEventPage
	case limit > maxEventPage:
		limit = maxEventPage
	}

	var page []audit.Event
	err := s.tx.View(ctx, func(ctx context.Context, store ports.Store) error {
		var err error
		page, err = store.ListEvents(ctx, after, limit)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = []audit.Event{}
	}
	return page, nil
}

func tokenError(err error, collectionID, tokenID uint64) error {
	if errors.Is(err, collectible.ErrNonexistentToken) {
		return dErrors.Newf(dErrors.CodeNotFound, "token %d of collection %d does not exist", tokenID, collectionID)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read token")
}
