package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"

	"mintgate/internal/mint/events"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	dErrors "mintgate/pkg/domain-errors"
)

// CreateCollection registers a new collection owned by caller and deploys
// its issuance contract.
func (s *Service) CreateCollection(ctx context.Context, caller common.Address, spec models.CollectionSpec) (_ *models.Collection, err error) {
	ctx, span := s.startSpan(ctx, "mint.CreateCollection", attribute.String("artist", caller.Hex()))
	defer func() { endSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	now, _ := unixNow(ctx)
	if err := spec.Validate(now.Unix()); err != nil {
		return nil, err
	}

	var created *models.Collection
	err = s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		count, err := store.CountCollections(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count collections")
		}
		id := count + 1

		address, err := s.host.DeployIssuer(ctx, store, id, spec.Name, spec.Symbol, spec.BaseURI)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deploy issuance contract")
		}

		c, err := models.NewCollection(id, caller, address, spec, now)
		if err != nil {
			return err
		}
		if err := store.CreateCollection(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save collection")
		}
		if err := s.emit(ctx, store, caller, events.CollectionCreated{
			ID:                c.ID,
			KeyID:             c.KeyID,
			Artist:            events.Address(c.Artist),
			CollectionAddress: events.Address(c.CollectionAddress),
			Name:              c.Name,
			Symbol:            c.Symbol,
			BaseURI:           c.BaseURI,
			PaymentToken:      events.Address(c.PaymentToken),
			MintCap:           c.MintCap,
			StartTime:         c.StartTime,
			EndTime:           c.EndTime,
		}); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "collection_created",
		"collection_id", created.ID,
		"artist", caller.Hex(),
		"collection_address", created.CollectionAddress.Hex(),
		"mint_cap", created.MintCap,
	)
	if s.metrics != nil {
		s.metrics.IncCollectionCreated()
	}
	return created, nil
}

// UpdateMintCap changes a collection's cap. Artist only; the new cap must
// exceed the live supply.
func (s *Service) UpdateMintCap(ctx context.Context, caller common.Address, id, newCap uint64) (*models.Collection, error) {
	return s.updateCollection(ctx, "mint_cap", caller, id, func(ctx context.Context, store ports.Store, c *models.Collection, now int64) (events.Event, error) {
		supply, err := s.host.Issuer(store, c.CollectionAddress).TotalSupply(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read total supply")
		}
		if err := c.CanUpdateMintCap(caller, newCap, supply); err != nil {
			return nil, err
		}
		e := events.MintCapUpdated{ID: c.ID, OldCap: c.MintCap, NewCap: newCap}
		c.MintCap = newCap
		return e, nil
	})
}

// UpdateStartTime moves the window start before the window opens.
func (s *Service) UpdateStartTime(ctx context.Context, caller common.Address, id uint64, newStart int64) (*models.Collection, error) {
	return s.updateCollection(ctx, "start_time", caller, id, func(_ context.Context, _ ports.Store, c *models.Collection, now int64) (events.Event, error) {
		if err := c.CanUpdateStartTime(caller, newStart, now); err != nil {
			return nil, err
		}
		e := events.StartTimeUpdated{ID: c.ID, OldStart: c.StartTime, NewStart: newStart}
		c.StartTime = newStart
		return e, nil
	})
}

// UpdateEndTime moves the window end before the window opens.
func (s *Service) UpdateEndTime(ctx context.Context, caller common.Address, id uint64, newEnd int64) (*models.Collection, error) {
	return s.updateCollection(ctx, "end_time", caller, id, func(_ context.Context, _ ports.Store, c *models.Collection, now int64) (events.Event, error) {
		if err := c.CanUpdateEndTime(caller, newEnd, now); err != nil {
			return nil, err
		}
		e := events.EndTimeUpdated{ID: c.ID, OldEnd: c.EndTime, NewEnd: newEnd}
		c.EndTime = newEnd
		return e, nil
	})
}

// collectionChange validates and applies one update to c, returning the
// event that describes it.
type collectionChange func(ctx context.Context, store ports.Store, c *models.Collection, now int64) (events.Event, error)

func (s *Service) updateCollection(ctx context.Context, field string, caller common.Address, id uint64, change collectionChange) (_ *models.Collection, err error) {
	ctx, span := s.startSpan(ctx, "mint.UpdateCollection",
		attribute.String("field", field),
		attribute.Int64("collection_id", int64(id)),
	)
	defer func() { endSpan(span, err) }()

	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	var updated *models.Collection
	err = s.tx.RunInTx(ctx, func(ctx context.Context, store ports.Store) error {
		c, err := loadCollection(ctx, store, id)
		if err != nil {
			return err
		}
		_, now := unixNow(ctx)
		e, err := change(ctx, store, c, now)
		if err != nil {
			return err
		}
		if err := s.emit(ctx, store, caller, e); err != nil {
			return err
		}
		if err := store.UpdateCollection(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update collection")
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, "collection_updated",
		"collection_id", id,
		"field", field,
		"artist", caller.Hex(),
	)
	if s.metrics != nil {
		s.metrics.IncCollectionUpdate(field)
	}
	return updated, nil
}

func requireCaller(caller common.Address) error {
	if caller == (common.Address{}) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is required")
	}
	return nil
}
