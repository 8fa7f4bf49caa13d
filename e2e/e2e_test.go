package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the feature files against MINTGATE_E2E_URL. The default
// run expects a server with RATE_LIMIT_DISABLED=true; set
// MINTGATE_E2E_RATELIMIT=true to run only @ratelimit against a limited one.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("MINTGATE_E2E_URL")
	if baseURL == "" {
		t.Skip("MINTGATE_E2E_URL not set")
	}
	tc := NewTestContext(baseURL)
	tags := "~@ratelimit"
	if os.Getenv("MINTGATE_E2E_RATELIMIT") == "true" {
		tags = "@ratelimit"
	}

	suite := godog.TestSuite{
		Name: "mintgate",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(sc, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Tags:     tags,
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}
