package models

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mintgate/pkg/domain-errors"
)

var (
	artist   = common.HexToAddress("0x00000000000000000000000000000000000a7715")
	stranger = common.HexToAddress("0x0000000000000000000000000000000000005eed")
)

const now int64 = 1_000

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end int64
		at         int64
		opened     bool
		inWindow   bool
	}{
		{"unbounded", 0, 0, now, true, true},
		{"before start", 1_100, 0, now, false, false},
		{"at start", 1_000, 0, now, true, true},
		{"at end", 0, 1_000, now, true, true},
		{"after end", 0, 999, now, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Collection{StartTime: tt.start, EndTime: tt.end}
			assert.Equal(t, tt.opened, c.WindowOpened(tt.at))
			assert.Equal(t, tt.inWindow, c.InWindow(tt.at))
		})
	}
}

func TestNewCollection(t *testing.T) {
	spec := CollectionSpec{Name: "n", Symbol: "s", MintCap: 1}

	t.Run("id zero is an invariant violation", func(t *testing.T) {
		_, err := NewCollection(0, artist, common.Address{}, spec, time.Unix(now, 0))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("copies the spec", func(t *testing.T) {
		c, err := NewCollection(1, artist, stranger, spec, time.Unix(now, 0))
		require.NoError(t, err)
		assert.Equal(t, artist, c.Artist)
		assert.Equal(t, stranger, c.CollectionAddress)
		assert.True(t, c.PaysNative())
	})
}

func TestCanUpdateMintCap(t *testing.T) {
	c := &Collection{Artist: artist, MintCap: 5}

	assert.True(t, dErrors.HasCode(c.CanUpdateMintCap(stranger, 6, 0), dErrors.CodeForbidden))
	assert.True(t, dErrors.HasCode(c.CanUpdateMintCap(artist, 5, 0), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(c.CanUpdateMintCap(artist, 3, 3), dErrors.CodeValidation))
	assert.NoError(t, c.CanUpdateMintCap(artist, 4, 3))
}

func TestCanUpdateTimes(t *testing.T) {
	pending := &Collection{Artist: artist, StartTime: 2_000, EndTime: 3_000}
	opened := &Collection{Artist: artist, StartTime: 500}

	assert.NoError(t, pending.CanUpdateStartTime(artist, 0, now))
	assert.NoError(t, pending.CanUpdateEndTime(artist, 0, now))
	assert.True(t, dErrors.HasCode(pending.CanUpdateStartTime(stranger, 2_500, now), dErrors.CodeForbidden))
	assert.True(t, dErrors.HasCode(pending.CanUpdateStartTime(artist, 3_000, now), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(pending.CanUpdateEndTime(artist, 2_000, now), dErrors.CodeValidation))
	assert.True(t, dErrors.HasCode(opened.CanUpdateStartTime(artist, 5_000, now), dErrors.CodeWindowLocked))
	assert.True(t, dErrors.HasCode(opened.CanUpdateEndTime(artist, 5_000, now), dErrors.CodeWindowLocked))
}
