package store

import (
	"context"
	"maps"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"mintgate/internal/collectible"
	"mintgate/internal/mint/models"
	"mintgate/internal/mint/ports"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	auditmemory "mintgate/pkg/platform/audit/store/memory"
	"mintgate/pkg/platform/sentinel"
)

const defaultTxTimeout = 5 * time.Second

type tokenKey struct {
	contract common.Address
	id       uint64
}

type balanceKey struct {
	asset  common.Address
	holder common.Address
}

type allowanceKey struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

// state is the whole ledger. Values are stored by value (or as immutable
// *big.Int) so a shallow map copy is an independent snapshot.
type state struct {
	settings    *models.Settings
	collections map[uint64]models.Collection
	byArtist    map[common.Address][]uint64
	consumed    map[string]models.ConsumedHash
	contracts   map[common.Address]collectible.Contract
	tokens      map[tokenKey]collectible.Token
	balances    map[balanceKey]*big.Int
	allowances  map[allowanceKey]*big.Int
	outbox      *auditmemory.Store
}

func newState() *state {
	return &state{
		collections: make(map[uint64]models.Collection),
		byArtist:    make(map[common.Address][]uint64),
		consumed:    make(map[string]models.ConsumedHash),
		contracts:   make(map[common.Address]collectible.Contract),
		tokens:      make(map[tokenKey]collectible.Token),
		balances:    make(map[balanceKey]*big.Int),
		allowances:  make(map[allowanceKey]*big.Int),
		outbox:      auditmemory.NewStore(),
	}
}

func (s *state) clone() *state {
	c := &state{
		collections: maps.Clone(s.collections),
		byArtist:    make(map[common.Address][]uint64, len(s.byArtist)),
		consumed:    maps.Clone(s.consumed),
		contracts:   maps.Clone(s.contracts),
		tokens:      maps.Clone(s.tokens),
		balances:    maps.Clone(s.balances),
		allowances:  maps.Clone(s.allowances),
		outbox:      s.outbox.Clone(),
	}
	if s.settings != nil {
		settings := *s.settings
		c.settings = &settings
	}
	for artist, ids := range s.byArtist {
		c.byArtist[artist] = slices.Clone(ids)
	}
	return c
}

// InMemory is the in-process ledger. A single mutex serializes every
// transaction; each transaction works on a private copy of the state that
// replaces the live state only when fn succeeds.
type InMemory struct {
	mu      sync.RWMutex
	state   *state
	timeout time.Duration
}

func NewInMemory() *InMemory {
	return &InMemory{state: newState(), timeout: defaultTxTimeout}
}

func (m *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	working := m.state.clone()
	if err := fn(ctx, &memTx{st: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted before commit")
	}
	m.state = working
	return nil
}

func (m *InMemory) View(ctx context.Context, fn func(ctx context.Context, store ports.Store) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(ctx, &memTx{st: m.state, readOnly: true})
}

// Pending and MarkPublished expose the outbox to the relay.
func (m *InMemory) Pending(ctx context.Context, limit int) ([]audit.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.outbox.Pending(ctx, limit)
}

func (m *InMemory) MarkPublished(ctx context.Context, sequences []int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.outbox.MarkPublished(ctx, sequences, at)
}

// memTx is the ports.Store handed to one transaction or view.
type memTx struct {
	st       *state
	readOnly bool
}

func (t *memTx) writable() error {
	if t.readOnly {
		return sentinel.ErrReadOnly
	}
	return nil
}

func (t *memTx) Settings(_ context.Context) (*models.Settings, error) {
	if t.st.settings == nil {
		return nil, sentinel.ErrNotFound
	}
	s := *t.st.settings
	return &s, nil
}

func (t *memTx) SaveSettings(_ context.Context, s *models.Settings) error {
	if err := t.writable(); err != nil {
		return err
	}
	cp := *s
	t.st.settings = &cp
	return nil
}

func (t *memTx) CountCollections(_ context.Context) (uint64, error) {
	return uint64(len(t.st.collections)), nil
}

func (t *memTx) CreateCollection(_ context.Context, c *models.Collection) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.collections[c.ID]; exists {
		return sentinel.ErrConflict
	}
	t.st.collections[c.ID] = *c
	t.st.byArtist[c.Artist] = append(t.st.byArtist[c.Artist], c.ID)
	return nil
}

func (t *memTx) FindCollection(_ context.Context, id uint64) (*models.Collection, error) {
	c, ok := t.st.collections[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (t *memTx) UpdateCollection(_ context.Context, c *models.Collection) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.collections[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	t.st.collections[c.ID] = *c
	return nil
}

func (t *memTx) CollectionIDsByArtist(_ context.Context, artist common.Address) ([]uint64, error) {
	return slices.Clone(t.st.byArtist[artist]), nil
}

func (t *memTx) IsConsumed(_ context.Context, hash []byte) (bool, error) {
	_, ok := t.st.consumed[string(hash)]
	return ok, nil
}

func (t *memTx) ConsumeHash(_ context.Context, rec *models.ConsumedHash) error {
	if err := t.writable(); err != nil {
		return err
	}
	key := string(rec.Hash)
	if _, ok := t.st.consumed[key]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *rec
	cp.Hash = slices.Clone(rec.Hash)
	t.st.consumed[key] = cp
	return nil
}

func (t *memTx) AppendEvent(ctx context.Context, e *audit.Event) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.st.outbox.Append(ctx, e)
}

func (t *memTx) ListEvents(ctx context.Context, afterSequence int64, limit int) ([]audit.Event, error) {
	return t.st.outbox.List(ctx, afterSequence, limit)
}

func (t *memTx) CreateContract(_ context.Context, c *collectible.Contract) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.contracts[c.Address]; exists {
		return sentinel.ErrConflict
	}
	t.st.contracts[c.Address] = *c
	return nil
}

func (t *memTx) FindContract(_ context.Context, address common.Address) (*collectible.Contract, error) {
	c, ok := t.st.contracts[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (t *memTx) UpdateContract(_ context.Context, c *collectible.Contract) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.contracts[c.Address]; !ok {
		return sentinel.ErrNotFound
	}
	t.st.contracts[c.Address] = *c
	return nil
}

func (t *memTx) InsertToken(_ context.Context, tok *collectible.Token) error {
	if err := t.writable(); err != nil {
		return err
	}
	key := tokenKey{contract: tok.Contract, id: tok.ID}
	if _, exists := t.st.tokens[key]; exists {
		return sentinel.ErrConflict
	}
	t.st.tokens[key] = *tok
	return nil
}

func (t *memTx) FindToken(_ context.Context, contract common.Address, id uint64) (*collectible.Token, error) {
	tok, ok := t.st.tokens[tokenKey{contract: contract, id: id}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &tok, nil
}

func (t *memTx) Balance(_ context.Context, asset, holder common.Address) (*big.Int, error) {
	if b, ok := t.st.balances[balanceKey{asset: asset, holder: holder}]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (t *memTx) SetBalance(_ context.Context, asset, holder common.Address, amount *big.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.st.balances[balanceKey{asset: asset, holder: holder}] = new(big.Int).Set(amount)
	return nil
}

func (t *memTx) Allowance(_ context.Context, token, owner, spender common.Address) (*big.Int, error) {
	if a, ok := t.st.allowances[allowanceKey{token: token, owner: owner, spender: spender}]; ok {
		return new(big.Int).Set(a), nil
	}
	return new(big.Int), nil
}

func (t *memTx) SetAllowance(_ context.Context, token, owner, spender common.Address, amount *big.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.st.allowances[allowanceKey{token: token, owner: owner, spender: spender}] = new(big.Int).Set(amount)
	return nil
}
