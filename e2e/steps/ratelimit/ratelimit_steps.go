package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cucumber/godog"
	"github.com/ethereum/go-ethereum/common"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Address() common.Address
	POST(ctx context.Context, path string, body any) error
	Status() int
	Header(k string) string
}

// RegisterSteps registers rate-limiting step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I request (\d+) sign-in challenges in a row$`, steps.burstChallenges)
	ctx.Step(`^at least one request should be rate limited$`, steps.someRequestLimited)
	ctx.Step(`^the limited response should carry Retry-After$`, steps.limitedHasRetryAfter)
}

type ratelimitSteps struct {
	tc         TestContext
	limited    int
	retryAfter string
}

func (s *ratelimitSteps) burstChallenges(ctx context.Context, n int) error {
	s.limited, s.retryAfter = 0, ""
	for range n {
		if err := s.tc.POST(ctx, "/auth/challenge", map[string]string{"address": s.tc.Address().Hex()}); err != nil {
			return err
		}
		if s.tc.Status() == http.StatusTooManyRequests {
			s.limited++
			s.retryAfter = s.tc.Header("Retry-After")
		}
	}
	return nil
}

func (s *ratelimitSteps) someRequestLimited() error {
	if s.limited == 0 {
		return fmt.Errorf("no request was rate limited")
	}
	return nil
}

func (s *ratelimitSteps) limitedHasRetryAfter() error {
	seconds, err := strconv.Atoi(s.retryAfter)
	if err != nil || seconds < 1 {
		return fmt.Errorf("invalid Retry-After %q", s.retryAfter)
	}
	return nil
}
