package config

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"MINTGATE_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "CHAIN_ID", "OWNER_ADDRESS",
		"FEE_TO_ADDRESS", "VERIFIER_ADDRESS", "JWT_TTL", "TX_TIMEOUT", "DEV_SEED",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, int64(1337), cfg.Chain.ChainID.Int64())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "mintgate.events", cfg.Kafka.EventsTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.Chain.Bootstrap())
	assert.Nil(t, cfg.DevSeed)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("CHAIN_ID", "31337")
	t.Setenv("OWNER_ADDRESS", "0x000000000000000000000000000000000000a11c")
	t.Setenv("FEE_TO_ADDRESS", "0x000000000000000000000000000000000000fee5")
	t.Setenv("VERIFIER_ADDRESS", "0x0000000000000000000000000000000000000b0b")
	t.Setenv("TX_TIMEOUT", "250ms")
	t.Setenv("DEV_SEED", `[{"holder":"0x000000000000000000000000000000000000a11c","amount":"1000"},
		{"asset":"0x0000000000000000000000000000000000000da1","holder":"0x000000000000000000000000000000000000a11c","amount":"5"}]`)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, int64(31337), cfg.Chain.ChainID.Int64())
	assert.True(t, cfg.Chain.Bootstrap())
	assert.Equal(t, 250*time.Millisecond, cfg.TxTimeout)
	require.Len(t, cfg.DevSeed, 2)
	assert.Equal(t, common.Address{}, cfg.DevSeed[0].Asset)
	assert.Equal(t, "1000", cfg.DevSeed[0].Amount.String())
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"chain id":      {"CHAIN_ID", "0"},
		"owner":         {"OWNER_ADDRESS", "alice"},
		"ttl":           {"JWT_TTL", "soon"},
		"seed json":     {"DEV_SEED", "{"},
		"seed negative": {"DEV_SEED", `[{"holder":"0x000000000000000000000000000000000000a11c","amount":"-1"}]`},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
