// Package config reads process configuration from the environment. Every
// setting has a development default so the server starts with no env at all.
package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	pkgstrings "mintgate/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	LogLevel    string
	DatabaseURL string
	TxTimeout   time.Duration

	// RateLimitDisabled turns off request limiting; tests and local runs.
	RateLimitDisabled bool

	Redis RedisConfig
	Kafka KafkaConfig
	Chain ChainConfig
	Auth  AuthConfig

	// DevSeed credits balances at startup; development only.
	DevSeed []SeedBalance
}

// RedisConfig configures the shared challenge and revocation stores. An
// empty URL keeps both in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the event relay. No brokers disables it.
type KafkaConfig struct {
	Brokers      []string
	EventsTopic  string
	PollInterval time.Duration
	BatchSize    int
}

// ChainConfig names the controller and its initial governance.
type ChainConfig struct {
	ChainID    *big.Int
	Controller common.Address
	Owner      common.Address
	FeeTo      common.Address
	Verifier   common.Address
}

// AuthConfig configures wallet sign-in.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration
	ChallengeTTL  time.Duration
}

// SeedBalance is one DEV_SEED entry. An empty asset means native currency.
type SeedBalance struct {
	Asset  common.Address
	Holder common.Address
	Amount *big.Int
}

type seedEntry struct {
	Asset  string `json:"asset"`
	Holder string `json:"holder"`
	Amount string `json:"amount"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:        envOr("MINTGATE_ADDR", ":8080"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RateLimitDisabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",

		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			EventsTopic: envOr("KAFKA_EVENTS_TOPIC", "mintgate.events"),
			BatchSize:   100,
		},
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     "mintgate",
			JWTAudience:   "mintgate-api",
		},
	}

	var err error
	cfg.Kafka.Brokers = pkgstrings.SplitList(os.Getenv("KAFKA_BROKERS"))
	if cfg.Kafka.PollInterval, err = durationOr("KAFKA_POLL_INTERVAL", time.Second); err != nil {
		return Server{}, err
	}
	if cfg.TxTimeout, err = durationOr("TX_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Auth.TokenTTL, err = durationOr("JWT_TTL", time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.Auth.ChallengeTTL, err = durationOr("CHALLENGE_TTL", 5*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Chain, err = chainFromEnv(); err != nil {
		return Server{}, err
	}
	if cfg.DevSeed, err = parseSeed(os.Getenv("DEV_SEED")); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func chainFromEnv() (ChainConfig, error) {
	var c ChainConfig
	chainID, err := strconv.ParseInt(envOr("CHAIN_ID", "1337"), 10, 64)
	if err != nil || chainID <= 0 {
		return c, fmt.Errorf("CHAIN_ID must be a positive integer")
	}
	c.ChainID = big.NewInt(chainID)

	// The default controller is an arbitrary fixed address for local runs.
	if c.Controller, err = addressFromEnv("CONTROLLER_ADDRESS", "0x00000000000000000000000000000000006d696e"); err != nil {
		return c, err
	}
	if c.Owner, err = addressFromEnv("OWNER_ADDRESS", ""); err != nil {
		return c, err
	}
	if c.FeeTo, err = addressFromEnv("FEE_TO_ADDRESS", ""); err != nil {
		return c, err
	}
	if c.Verifier, err = addressFromEnv("VERIFIER_ADDRESS", ""); err != nil {
		return c, err
	}
	return c, nil
}

// Bootstrap reports whether governance should be initialized at startup.
func (c ChainConfig) Bootstrap() bool {
	zero := common.Address{}
	return c.Owner != zero && c.FeeTo != zero && c.Verifier != zero
}

func parseSeed(raw string) ([]SeedBalance, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var entries []seedEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("DEV_SEED: %w", err)
	}
	seed := make([]SeedBalance, 0, len(entries))
	for i, e := range entries {
		var b SeedBalance
		if e.Asset != "" {
			if !common.IsHexAddress(e.Asset) {
				return nil, fmt.Errorf("DEV_SEED[%d]: invalid asset %q", i, e.Asset)
			}
			b.Asset = common.HexToAddress(e.Asset)
		}
		if !common.IsHexAddress(e.Holder) {
			return nil, fmt.Errorf("DEV_SEED[%d]: invalid holder %q", i, e.Holder)
		}
		b.Holder = common.HexToAddress(e.Holder)
		amount, ok := new(big.Int).SetString(e.Amount, 10)
		if !ok || amount.Sign() < 0 {
			return nil, fmt.Errorf("DEV_SEED[%d]: invalid amount %q", i, e.Amount)
		}
		b.Amount = amount
		seed = append(seed, b)
	}
	return seed, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func addressFromEnv(key, fallback string) (common.Address, error) {
	raw := envOr(key, fallback)
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%s must be a hex address", key)
	}
	return common.HexToAddress(raw), nil
}
