package events

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "mintgate/pkg/platform/audit"
)

var (
	alice = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")

	aliceAddr = Address(alice)
	bobAddr   = Address(bob)
)

// Indexers read payloads positionally, so these compare raw bytes rather
// than JSON equivalence.
func TestPayloadFieldOrder(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "Initialized",
			event: Initialized{Owner: aliceAddr, FeeTo: bobAddr, Verifier: aliceAddr},
			want:  `{"owner":"` + alice.Hex() + `","feeTo":"` + bob.Hex() + `","verifier":"` + alice.Hex() + `"}`,
		},
		{
			name:  "MintCapUpdated",
			event: MintCapUpdated{ID: 3, OldCap: 10, NewCap: 20},
			want:  `{"id":3,"oldCap":10,"newCap":20}`,
		},
		{
			name:  "StartTimeUpdated",
			event: StartTimeUpdated{ID: 3, OldStart: 5, NewStart: 0},
			want:  `{"id":3,"oldStartTime":5,"newStartTime":0}`,
		},
		{
			name:  "Minted",
			event: Minted{CollectionID: 1, CollectionAddress: bobAddr, Caller: aliceAddr, URI: "u", TokenID: 7},
			want: `{"collectionId":1,"collectionAddress":"` + bob.Hex() + `","caller":"` + alice.Hex() +
				`","uri":"u","tokenId":7}`,
		},
		{
			name:  "Withdrawn keeps uint256 precision",
			event: NewWithdrawn(common.Address{}, alice, new(big.Int).Lsh(big.NewInt(1), 200)),
			want: `{"token":"` + common.Address{}.Hex() + `","to":"` + alice.Hex() +
				`","amount":"1606938044258990275541962092341162602522202993782792835301376"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Record(tt.event, alice, "req-1", time.Unix(0, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(rec.Payload))
		})
	}
}

func TestRecord(t *testing.T) {
	at := time.Unix(1_700_000_000, 0).UTC()
	rec, err := Record(CollectionCreated{ID: 4, Artist: aliceAddr}, bob, "req-9", at)
	require.NoError(t, err)

	assert.Equal(t, "CollectionCreated", rec.Name)
	assert.Equal(t, audit.CategoryLifecycle, rec.Category)
	assert.Equal(t, "collection:4", rec.AggregateID)
	assert.Equal(t, bob.Hex(), rec.Actor)
	assert.Equal(t, "req-9", rec.RequestID)
	assert.Equal(t, at, rec.Timestamp)
	assert.Zero(t, rec.Sequence, "sequence is assigned by the log")
}

func TestCategories(t *testing.T) {
	assert.Equal(t, audit.CategoryGovernance, FeeToChanged{}.Category())
	assert.Equal(t, audit.CategoryGovernance, VerifierChanged{}.Category())
	assert.Equal(t, audit.CategoryIssuance, Minted{}.Category())
	assert.Equal(t, audit.CategoryTreasury, Withdrawn{}.Category())
	assert.Equal(t, "controller", Withdrawn{}.Aggregate())
}

func TestAddressesMatchActorEncoding(t *testing.T) {
	rec, err := Record(FeeToChanged{Old: bobAddr, New: bobAddr}, bob, "req-1", time.Unix(0, 0))
	require.NoError(t, err)

	var payload struct {
		Old string `json:"oldFeeTo"`
		New string `json:"newFeeTo"`
	}
	require.NoError(t, json.Unmarshal(rec.Payload, &payload))
	assert.Equal(t, rec.Actor, payload.Old)
	assert.Equal(t, rec.Actor, payload.New)
	assert.Equal(t, "0x0000000000000000000000000000000000000B0b", payload.New)

	var decoded FeeToChanged
	require.NoError(t, json.Unmarshal(rec.Payload, &decoded))
	assert.Equal(t, bob, common.Address(decoded.New))
}
