package collections

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Authed(ctx context.Context, method, path string, body any) error
	Expand(s string) string
	Remember(name, value string)
	Status() int
	Body() []byte
	Field(field string) (any, error)
}

// RegisterSteps registers collection lifecycle step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &collectionSteps{tc: tc}

	ctx.Step(`^I create a collection "([^"]*)" with mint cap (\d+)$`, steps.createCollection)
	ctx.Step(`^I create a collection "([^"]*)" with mint cap (\d+) opening at (\d+)$`, steps.createScheduledCollection)
	ctx.Step(`^I set the mint cap of "([^"]*)" to (\d+)$`, steps.setMintCap)
	ctx.Step(`^I set the start time of "([^"]*)" to (\d+)$`, steps.setStartTime)
}

type collectionSteps struct {
	tc TestContext
}

func (s *collectionSteps) createCollection(ctx context.Context, name string, mintCap int) error {
	return s.create(ctx, name, mintCap, 0)
}

func (s *collectionSteps) createScheduledCollection(ctx context.Context, name string, mintCap, start int) error {
	return s.create(ctx, name, mintCap, int64(start))
}

func (s *collectionSteps) create(ctx context.Context, name string, mintCap int, start int64) error {
	err := s.tc.Authed(ctx, http.MethodPost, "/collections", map[string]any{
		"name":       name,
		"symbol":     "E2E",
		"base_uri":   "ipfs://e2e/",
		"mint_cap":   mintCap,
		"start_time": start,
	})
	if err != nil || s.tc.Status() != http.StatusCreated {
		return err
	}
	id, err := s.tc.Field("id")
	if err != nil {
		return err
	}
	s.tc.Remember(name, fmt.Sprintf("%.0f", id))
	return nil
}

func (s *collectionSteps) setMintCap(ctx context.Context, name string, mintCap int) error {
	return s.tc.Authed(ctx, http.MethodPut, s.tc.Expand("/collections/{"+name+"}/mint-cap"),
		map[string]any{"mint_cap": mintCap})
}

func (s *collectionSteps) setStartTime(ctx context.Context, name string, start int) error {
	return s.tc.Authed(ctx, http.MethodPut, s.tc.Expand("/collections/{"+name+"}/start-time"),
		map[string]any{"start_time": start})
}
