package e2e

import (
	"github.com/cucumber/godog"

	"mintgate/e2e/steps/auth"
	"mintgate/e2e/steps/collections"
	"mintgate/e2e/steps/common"
	"mintgate/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
	collections.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
