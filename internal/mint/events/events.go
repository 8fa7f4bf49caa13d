// Package events defines the controller's audit log entries. Struct field
// order is the JSON field order downstream indexers read, so fields must not
// be reordered.
package events

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	audit "mintgate/pkg/platform/audit"
)

// Event is a typed log entry.
type Event interface {
	EventName() string
	Category() audit.EventCategory
	Aggregate() string
}

func collectionAggregate(id uint64) string {
	return "collection:" + strconv.FormatUint(id, 10)
}

const controllerAggregate = "controller"

// Address encodes as an EIP-55 checksummed hex string, the same form the
// HTTP API and the record's actor use.
type Address common.Address

func (a Address) MarshalText() ([]byte, error) {
	return []byte(common.Address(a).Hex()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	return (*common.Address)(a).UnmarshalText(input)
}

type Initialized struct {
	Owner    Address `json:"owner"`
	FeeTo    Address `json:"feeTo"`
	Verifier Address `json:"verifier"`
}

func (Initialized) EventName() string             { return "Initialized" }
func (Initialized) Category() audit.EventCategory { return audit.CategoryGovernance }
func (Initialized) Aggregate() string             { return controllerAggregate }

type CollectionCreated struct {
	ID                uint64  `json:"id"`
	KeyID             string  `json:"keyId"`
	Artist            Address `json:"artist"`
	CollectionAddress Address `json:"collectionAddress"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	BaseURI           string  `json:"baseUri"`
	PaymentToken      Address `json:"paymentToken"`
	MintCap           uint64  `json:"mintCap"`
	StartTime         int64   `json:"startTime"`
	EndTime           int64   `json:"endTime"`
}

func (CollectionCreated) EventName() string             { return "CollectionCreated" }
func (CollectionCreated) Category() audit.EventCategory { return audit.CategoryLifecycle }
func (e CollectionCreated) Aggregate() string           { return collectionAggregate(e.ID) }

type MintCapUpdated struct {
	ID     uint64 `json:"id"`
	OldCap uint64 `json:"oldCap"`
	NewCap uint64 `json:"newCap"`
}

func (MintCapUpdated) EventName() string             { return "MintCapUpdated" }
func (MintCapUpdated) Category() audit.EventCategory { return audit.CategoryLifecycle }
func (e MintCapUpdated) Aggregate() string           { return collectionAggregate(e.ID) }

type StartTimeUpdated struct {
	ID       uint64 `json:"id"`
	OldStart int64  `json:"oldStartTime"`
	NewStart int64  `json:"newStartTime"`
}

func (StartTimeUpdated) EventName() string             { return "StartTimeUpdated" }
func (StartTimeUpdated) Category() audit.EventCategory { return audit.CategoryLifecycle }
func (e StartTimeUpdated) Aggregate() string           { return collectionAggregate(e.ID) }

type EndTimeUpdated struct {
	ID     uint64 `json:"id"`
	OldEnd int64  `json:"oldEndTime"`
	NewEnd int64  `json:"newEndTime"`
}

func (EndTimeUpdated) EventName() string             { return "EndTimeUpdated" }
func (EndTimeUpdated) Category() audit.EventCategory { return audit.CategoryLifecycle }
func (e EndTimeUpdated) Aggregate() string           { return collectionAggregate(e.ID) }

type Minted struct {
	CollectionID      uint64  `json:"collectionId"`
	CollectionAddress Address `json:"collectionAddress"`
	Caller            Address `json:"caller"`
	URI               string  `json:"uri"`
	TokenID           uint64  `json:"tokenId"`
}

func (Minted) EventName() string             { return "Minted" }
func (Minted) Category() audit.EventCategory { return audit.CategoryIssuance }
func (e Minted) Aggregate() string           { return collectionAggregate(e.CollectionID) }

type FeeToChanged struct {
	Old Address `json:"oldFeeTo"`
	New Address `json:"newFeeTo"`
}

func (FeeToChanged) EventName() string             { return "FeeToChanged" }
func (FeeToChanged) Category() audit.EventCategory { return audit.CategoryGovernance }
func (FeeToChanged) Aggregate() string             { return controllerAggregate }

type VerifierChanged struct {
	Old Address `json:"oldVerifier"`
	New Address `json:"newVerifier"`
}

func (VerifierChanged) EventName() string             { return "VerifierChanged" }
func (VerifierChanged) Category() audit.EventCategory { return audit.CategoryGovernance }
func (VerifierChanged) Aggregate() string             { return controllerAggregate }

// Withdrawn amounts are decimal strings; uint256 values overflow JSON numbers.
type Withdrawn struct {
	Token  Address `json:"token"`
	To     Address `json:"to"`
	Amount string  `json:"amount"`
}

// NewWithdrawn formats amount as a decimal string.
func NewWithdrawn(token, to common.Address, amount *big.Int) Withdrawn {
	return Withdrawn{Token: Address(token), To: Address(to), Amount: amount.String()}
}

func (Withdrawn) EventName() string             { return "Withdrawn" }
func (Withdrawn) Category() audit.EventCategory { return audit.CategoryTreasury }
func (Withdrawn) Aggregate() string             { return controllerAggregate }

// Record wraps e into a log entry ready to append.
func Record(e Event, actor common.Address, requestID string, at time.Time) (*audit.Event, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.EventName(), err)
	}
	return &audit.Event{
		Category:    e.Category(),
		Name:        e.EventName(),
		Actor:       actor.Hex(),
		AggregateID: e.Aggregate(),
		Payload:     payload,
		RequestID:   requestID,
		Timestamp:   at,
	}, nil
}
