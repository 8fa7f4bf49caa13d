package auth

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	NewWallet() error
	Key() *ecdsa.PrivateKey
	Address() common.Address
	AccessToken() string
	SetAccessToken(token string)
	POST(ctx context.Context, path string, body any) error
	Authed(ctx context.Context, method, path string, body any) error
	Replay() error
	Status() int
	Body() []byte
	Field(field string) (any, error)
}

// RegisterSteps registers wallet sign-in step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I have a fresh wallet$`, tc.NewWallet)
	ctx.Step(`^I request a sign-in challenge$`, steps.requestChallenge)
	ctx.Step(`^I sign the challenge and request a token$`, steps.signAndExchange)
	ctx.Step(`^another wallet signs the challenge$`, steps.foreignSignature)
	ctx.Step(`^I replay the last request$`, tc.Replay)
	ctx.Step(`^I am signed in$`, steps.signIn)
	ctx.Step(`^I (GET|POST|PUT) "([^"]*)" as the signed-in wallet$`, steps.authedRequest)
}

type authSteps struct {
	tc      TestContext
	message string
}

func (s *authSteps) requestChallenge(ctx context.Context) error {
	if err := s.tc.POST(ctx, "/auth/challenge", map[string]string{"address": s.tc.Address().Hex()}); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusOK {
		return nil
	}
	msg, err := s.tc.Field("message")
	if err != nil {
		return err
	}
	s.message = fmt.Sprint(msg)
	return nil
}

func (s *authSteps) signAndExchange(ctx context.Context) error {
	return s.exchange(ctx, s.tc.Key())
}

func (s *authSteps) foreignSignature(ctx context.Context) error {
	other, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	return s.exchange(ctx, other)
}

func (s *authSteps) exchange(ctx context.Context, key *ecdsa.PrivateKey) error {
	if s.message == "" {
		return fmt.Errorf("no challenge was issued")
	}
	sig, err := crypto.Sign(accounts.TextHash([]byte(s.message)), key)
	if err != nil {
		return err
	}
	sig[crypto.RecoveryIDOffset] += 27

	err = s.tc.POST(ctx, "/auth/token", map[string]string{
		"address":   s.tc.Address().Hex(),
		"signature": hexutil.Encode(sig),
	})
	if err != nil || s.tc.Status() != http.StatusOK {
		return err
	}
	token, err := s.tc.Field("access_token")
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(fmt.Sprint(token))
	return nil
}

func (s *authSteps) signIn(ctx context.Context) error {
	if s.tc.Key() == nil {
		if err := s.tc.NewWallet(); err != nil {
			return err
		}
	}
	if err := s.requestChallenge(ctx); err != nil {
		return err
	}
	if err := s.signAndExchange(ctx); err != nil {
		return err
	}
	if s.tc.AccessToken() == "" {
		return fmt.Errorf("sign-in failed with %d: %s", s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *authSteps) authedRequest(ctx context.Context, method, path string) error {
	var body any
	if method != http.MethodGet {
		body = map[string]any{}
	}
	return s.tc.Authed(ctx, method, path, body)
}
