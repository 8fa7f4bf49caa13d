package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Ping(ctx context.Context) error
	GET(ctx context.Context, path string) error
	Expand(s string) string
	Status() int
	Body() []byte
	Field(field string) (any, error)
}

// RegisterSteps registers background, generic request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the mintgate API is running$`, steps.apiIsRunning)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should equal (\d+)$`, steps.fieldShouldEqualNumber)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.bodyShouldContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) apiIsRunning(ctx context.Context) error {
	return s.tc.Ping(ctx)
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(ctx, s.tc.Expand(path))
}

func (s *commonSteps) statusShouldBe(expected int) error {
	if s.tc.Status() != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *commonSteps) fieldShouldEqual(field, expected string) error {
	v, err := s.tc.Field(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); !strings.EqualFold(got, s.tc.Expand(expected)) {
		return fmt.Errorf("field %q: expected %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldEqualNumber(field string, expected int) error {
	v, err := s.tc.Field(field)
	if err != nil {
		return err
	}
	n, ok := v.(float64)
	if !ok || int(n) != expected {
		return fmt.Errorf("field %q: expected %d, got %v", field, expected, v)
	}
	return nil
}

func (s *commonSteps) bodyShouldContain(text string) error {
	if !strings.Contains(string(s.tc.Body()), s.tc.Expand(text)) {
		return fmt.Errorf("response does not contain %q: %s", text, s.tc.Body())
	}
	return nil
}
