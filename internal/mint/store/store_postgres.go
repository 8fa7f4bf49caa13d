package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lib/pq"

	"mintgate/internal/collectible"
	"mintgate/internal/mint/models"
	"mintgate/internal/platform/postgres"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/sentinel"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresTx is the ports.Store bound to one SQL transaction. Events go to the
// outbox store, which joins the same transaction through the context.
type PostgresTx struct {
	q      querier
	events audit.Store
}

// NewPostgresTx binds a store to tx. The caller owns commit and rollback.
func NewPostgresTx(tx *sql.Tx, events audit.Store) *PostgresTx {
	return &PostgresTx{q: tx, events: events}
}

func (p *PostgresTx) Settings(ctx context.Context) (*models.Settings, error) {
	var owner, feeTo, verifier []byte
	s := &models.Settings{}
	err := p.q.QueryRowContext(ctx,
		`SELECT owner, fee_to, verifier, initialized_at FROM settings WHERE id = 1`,
	).Scan(&owner, &feeTo, &verifier, &s.InitializedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s.Owner = common.BytesToAddress(owner)
	s.FeeTo = common.BytesToAddress(feeTo)
	s.Verifier = common.BytesToAddress(verifier)
	return s, nil
}

func (p *PostgresTx) SaveSettings(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (id, owner, fee_to, verifier, initialized_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			fee_to = EXCLUDED.fee_to,
			verifier = EXCLUDED.verifier
	`
	if _, err := p.q.ExecContext(ctx, query, s.Owner.Bytes(), s.FeeTo.Bytes(), s.Verifier.Bytes(), s.InitializedAt); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (p *PostgresTx) CountCollections(ctx context.Context) (uint64, error) {
	var n int64
	if err := p.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count collections: %w", err)
	}
	return uint64(n), nil
}

func (p *PostgresTx) CreateCollection(ctx context.Context, c *models.Collection) error {
	query := `
		INSERT INTO collections (
			id, key_id, artist, collection_address, name, symbol, base_uri,
			payment_token, mint_cap, start_time, end_time, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := p.q.ExecContext(ctx, query,
		int64(c.ID), c.KeyID, c.Artist.Bytes(), c.CollectionAddress.Bytes(),
		c.Name, c.Symbol, c.BaseURI, c.PaymentToken.Bytes(),
		strconv.FormatUint(c.MintCap, 10), c.StartTime, c.EndTime, c.CreatedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

func (p *PostgresTx) FindCollection(ctx context.Context, id uint64) (*models.Collection, error) {
	query := `
		SELECT id, key_id, artist, collection_address, name, symbol, base_uri,
		       payment_token, mint_cap, start_time, end_time, created_at
		FROM collections
		WHERE id = $1
	`
	var (
		c                             models.Collection
		rawID                         int64
		artist, address, paymentToken []byte
		mintCap                       string
	)
	err := p.q.QueryRowContext(ctx, query, int64(id)).Scan(
		&rawID, &c.KeyID, &artist, &address, &c.Name, &c.Symbol, &c.BaseURI,
		&paymentToken, &mintCap, &c.StartTime, &c.EndTime, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load collection %d: %w", id, err)
	}
	c.ID = uint64(rawID)
	c.Artist = common.BytesToAddress(artist)
	c.CollectionAddress = common.BytesToAddress(address)
	c.PaymentToken = common.BytesToAddress(paymentToken)
	if c.MintCap, err = strconv.ParseUint(mintCap, 10, 64); err != nil {
		return nil, fmt.Errorf("parse mint cap of collection %d: %w", id, err)
	}
	return &c, nil
}

func (p *PostgresTx) UpdateCollection(ctx context.Context, c *models.Collection) error {
	query := `
		UPDATE collections
		SET mint_cap = $2, start_time = $3, end_time = $4
		WHERE id = $1
	`
	res, err := p.q.ExecContext(ctx, query, int64(c.ID), strconv.FormatUint(c.MintCap, 10), c.StartTime, c.EndTime)
	if err != nil {
		return fmt.Errorf("update collection %d: %w", c.ID, err)
	}
	return requireRow(res)
}

func (p *PostgresTx) CollectionIDsByArtist(ctx context.Context, artist common.Address) ([]uint64, error) {
	var ids pq.Int64Array
	err := p.q.QueryRowContext(ctx,
		`SELECT COALESCE(array_agg(id ORDER BY id), '{}') FROM collections WHERE artist = $1`,
		artist.Bytes(),
	).Scan(&ids)
	if err != nil {
		return nil, fmt.Errorf("list collections by artist: %w", err)
	}
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out, nil
}

func (p *PostgresTx) IsConsumed(ctx context.Context, hash []byte) (bool, error) {
	var exists bool
	err := p.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM consumed_hashes WHERE hash = $1)`, hash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check consumed hash: %w", err)
	}
	return exists, nil
}

func (p *PostgresTx) ConsumeHash(ctx context.Context, rec *models.ConsumedHash) error {
	query := `
		INSERT INTO consumed_hashes (hash, collection_id, token_id, consumed_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := p.q.ExecContext(ctx, query, rec.Hash, int64(rec.CollectionID), int64(rec.TokenID), rec.ConsumedAt)
	if postgres.IsUniqueViolation(err) {
		return sentinel.ErrAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("consume hash: %w", err)
	}
	return nil
}

func (p *PostgresTx) AppendEvent(ctx context.Context, e *audit.Event) error {
	return p.events.Append(ctx, e)
}

func (p *PostgresTx) ListEvents(ctx context.Context, afterSequence int64, limit int) ([]audit.Event, error) {
	return p.events.List(ctx, afterSequence, limit)
}

func (p *PostgresTx) CreateContract(ctx context.Context, c *collectible.Contract) error {
	query := `
		INSERT INTO issuers (address, name, symbol, base_uri, minter, total_supply, deployed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := p.q.ExecContext(ctx, query,
		c.Address.Bytes(), c.Name, c.Symbol, c.BaseURI, c.Minter.Bytes(), int64(c.TotalSupply), c.DeployedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert issuer: %w", err)
	}
	return nil
}

func (p *PostgresTx) FindContract(ctx context.Context, address common.Address) (*collectible.Contract, error) {
	var (
		c      collectible.Contract
		minter []byte
		supply int64
	)
	err := p.q.QueryRowContext(ctx,
		`SELECT name, symbol, base_uri, minter, total_supply, deployed_at FROM issuers WHERE address = $1`,
		address.Bytes(),
	).Scan(&c.Name, &c.Symbol, &c.BaseURI, &minter, &supply, &c.DeployedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load issuer: %w", err)
	}
	c.Address = address
	c.Minter = common.BytesToAddress(minter)
	c.TotalSupply = uint64(supply)
	return &c, nil
}

func (p *PostgresTx) UpdateContract(ctx context.Context, c *collectible.Contract) error {
	res, err := p.q.ExecContext(ctx,
		`UPDATE issuers SET total_supply = $2 WHERE address = $1`,
		c.Address.Bytes(), int64(c.TotalSupply),
	)
	if err != nil {
		return fmt.Errorf("update issuer: %w", err)
	}
	return requireRow(res)
}

func (p *PostgresTx) InsertToken(ctx context.Context, t *collectible.Token) error {
	query := `
		INSERT INTO issued_tokens (contract, token_id, owner, uri, minted_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := p.q.ExecContext(ctx, query, t.Contract.Bytes(), int64(t.ID), t.Owner.Bytes(), t.URI, t.MintedAt)
	if postgres.IsUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (p *PostgresTx) FindToken(ctx context.Context, contract common.Address, id uint64) (*collectible.Token, error) {
	var (
		owner    []byte
		uri      string
		mintedAt time.Time
	)
	err := p.q.QueryRowContext(ctx,
		`SELECT owner, uri, minted_at FROM issued_tokens WHERE contract = $1 AND token_id = $2`,
		contract.Bytes(), int64(id),
	).Scan(&owner, &uri, &mintedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &collectible.Token{
		Contract: contract,
		ID:       id,
		Owner:    common.BytesToAddress(owner),
		URI:      uri,
		MintedAt: mintedAt,
	}, nil
}

func (p *PostgresTx) Balance(ctx context.Context, asset, holder common.Address) (*big.Int, error) {
	var amount string
	err := p.q.QueryRowContext(ctx,
		`SELECT amount FROM balances WHERE asset = $1 AND holder = $2`,
		asset.Bytes(), holder.Bytes(),
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load balance: %w", err)
	}
	return parseAmount(amount)
}

func (p *PostgresTx) SetBalance(ctx context.Context, asset, holder common.Address, amount *big.Int) error {
	query := `
		INSERT INTO balances (asset, holder, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset, holder) DO UPDATE SET amount = EXCLUDED.amount
	`
	if _, err := p.q.ExecContext(ctx, query, asset.Bytes(), holder.Bytes(), amount.String()); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

func (p *PostgresTx) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	var amount string
	err := p.q.QueryRowContext(ctx,
		`SELECT amount FROM allowances WHERE token = $1 AND owner = $2 AND spender = $3`,
		token.Bytes(), owner.Bytes(), spender.Bytes(),
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load allowance: %w", err)
	}
	return parseAmount(amount)
}

func (p *PostgresTx) SetAllowance(ctx context.Context, token, owner, spender common.Address, amount *big.Int) error {
	query := `
		INSERT INTO allowances (token, owner, spender, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token, owner, spender) DO UPDATE SET amount = EXCLUDED.amount
	`
	if _, err := p.q.ExecContext(ctx, query, token.Bytes(), owner.Bytes(), spender.Bytes(), amount.String()); err != nil {
		return fmt.Errorf("save allowance: %w", err)
	}
	return nil
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("parse amount %q", s)
	}
	return v, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
