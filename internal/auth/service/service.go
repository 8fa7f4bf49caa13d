// Package service signs wallets in. A caller asks for a challenge, signs its
// message with personal_sign and trades the signature for an access token.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"mintgate/internal/auth/models"
	jwttoken "mintgate/internal/jwt_token"
	"mintgate/internal/signing"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ChallengeStore,RevocationList,TokenIssuer

const (
	defaultChallengeTTL = 5 * time.Minute
	defaultTokenTTL     = 1 * time.Hour
	nonceBytes          = 16
)

// ChallengeStore holds at most one outstanding challenge per address.
type ChallengeStore interface {
	Save(ctx context.Context, c *models.Challenge) error
	Consume(ctx context.Context, address common.Address) (*models.Challenge, error)
}

// RevocationList records tokens revoked before their expiry.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenIssuer signs access tokens for an address.
type TokenIssuer interface {
	GenerateAccessToken(caller common.Address, expiresIn time.Duration) (*jwttoken.IssuedToken, error)
}

type Service struct {
	challenges   ChallengeStore
	revocations  RevocationList
	tokens       TokenIssuer
	verifier     *signing.Verifier
	logger       *slog.Logger
	challengeTTL time.Duration
	tokenTTL     time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithChallengeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.challengeTTL = ttl
		}
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(challenges ChallengeStore, revocations RevocationList, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		challenges:   challenges,
		revocations:  revocations,
		tokens:       tokens,
		verifier:     signing.NewVerifier(signing.PersonalSign),
		logger:       slog.Default(),
		challengeTTL: defaultChallengeTTL,
		tokenTTL:     defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenTTL is the lifetime of issued access tokens.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Challenge issues a fresh nonce for address, replacing any earlier one.
func (s *Service) Challenge(ctx context.Context, address common.Address) (*models.Challenge, error) {
	if address == (common.Address{}) {
		return nil, dErrors.New(dErrors.CodeValidation, "address is required")
	}
	raw := make([]byte, nonceBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate nonce")
	}
	now := requestcontext.Now(ctx)
	c := &models.Challenge{
		Address:   address,
		Nonce:     hexutil.Encode(raw),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}
	if err := s.challenges.Save(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store challenge")
	}
	return c, nil
}

// Token redeems the outstanding challenge for address. The challenge is
// consumed whether or not the signature checks out.
func (s *Service) Token(ctx context.Context, address common.Address, signature []byte) (*models.TokenResult, error) {
	if address == (common.Address{}) {
		return nil, dErrors.New(dErrors.CodeValidation, "address is required")
	}
	c, err := s.challenges.Consume(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "no outstanding challenge for address")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load challenge")
	}
	if c.IsExpired(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "challenge has expired")
	}

	signer, err := s.verifier.RecoverText([]byte(c.Message()), signature)
	if err != nil || signer != address {
		s.logger.WarnContext(ctx, "challenge signature rejected",
			"address", address.Hex(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeInvalidSignature, "signature does not match address")
	}

	issued, err := s.tokens.GenerateAccessToken(address, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	s.logger.InfoContext(ctx, "wallet signed in",
		"address", address.Hex(),
		"jti", issued.JTI,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.TokenResult{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
		Address:     address,
	}, nil
}

// Logout revokes the token with the given id for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, jti string) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "token id is missing")
	}
	if err := s.revocations.RevokeToken(ctx, jti, s.tokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	return nil
}

// IsTokenRevoked satisfies the bearer middleware's revocation check.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revocations.IsRevoked(ctx, jti)
}
