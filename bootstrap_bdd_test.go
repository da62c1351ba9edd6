package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

// Static error variables for BDD steps
var (
	errNoReport             = errors.New("bootstrap has not produced a report")
	errModuleNotFailed      = errors.New("module was not reported as failed")
	errUnexpectedFailure    = errors.New("report contains unexpected failures")
	errWrongInitializedSet  = errors.New("initialized modules do not match")
	errWrongPhase           = errors.New("module failed in unexpected phase")
	errFailureDetailMissing = errors.New("failure message missing expected detail")
	errWrongInitCount       = errors.New("unexpected initialization count")
)

// bootstrapBDDContext holds the state threaded through one scenario.
type bootstrapBDDContext struct {
	container *Container
	registry  *Registry[*testHost]
	host      *testHost
	record    []string
	report    *Report
}

func (c *bootstrapBDDContext) reset() {
	c.container = New()
	c.registry = NewRegistry[*testHost](c.container, NopLogger())
	c.host = &testHost{}
	c.record = nil
	c.report = nil
}

func splitList(list string) []string {
	parts := strings.Split(list, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (c *bootstrapBDDContext) aContainerProviding(tokens string) error {
	for _, token := range splitList(tokens) {
		if err := c.container.RegisterInstance(Token(token), "provided:"+token); err != nil {
			return err
		}
	}
	return nil
}

func (c *bootstrapBDDContext) aModuleRequiring(name, tokens string) error {
	deps := make([]Token, 0)
	for _, token := range splitList(tokens) {
		deps = append(deps, Token(token))
	}
	return c.registry.Register(newLifecycleModule(name, &c.record, deps...))
}

func (c *bootstrapBDDContext) aPanickingModule(name string) error {
	module := newLifecycleModule(name, &c.record)
	module.onInit = func(ctx context.Context, h *testHost) error {
		panic(name + " exploded")
	}
	return c.registry.Register(module)
}

func (c *bootstrapBDDContext) iBootstrapTheRegistry() error {
	c.report = c.registry.Bootstrap(context.Background(), c.host)
	return nil
}

func (c *bootstrapBDDContext) theReportShouldListInitialized(names string) error {
	if c.report == nil {
		return errNoReport
	}
	want := splitList(names)
	got := c.report.Initialized
	if len(got) != len(want) {
		return fmt.Errorf("%w: got %v, want %v", errWrongInitializedSet, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: got %v, want %v", errWrongInitializedSet, got, want)
		}
	}
	return nil
}

func (c *bootstrapBDDContext) theReportShouldListNoFailures() error {
	if c.report == nil {
		return errNoReport
	}
	if !c.report.Ok() {
		return fmt.Errorf("%w: %v", errUnexpectedFailure, c.report.FailedNames())
	}
	return nil
}

func (c *bootstrapBDDContext) theReportShouldMarkFailedDuring(name, phase string) error {
	if c.report == nil {
		return errNoReport
	}
	failure, ok := c.report.FailureFor(name)
	if !ok {
		return fmt.Errorf("%w: %s", errModuleNotFailed, name)
	}
	if string(failure.Phase) != phase {
		return fmt.Errorf("%w: %s failed during %q, want %q", errWrongPhase, name, failure.Phase, phase)
	}
	return nil
}

func (c *bootstrapBDDContext) theFailureShouldMention(name, fragment string) error {
	failure, ok := c.report.FailureFor(name)
	if !ok {
		return fmt.Errorf("%w: %s", errModuleNotFailed, name)
	}
	if !strings.Contains(failure.Err.Error(), fragment) {
		return fmt.Errorf("%w: %q does not mention %q", errFailureDetailMissing, failure.Err, fragment)
	}
	return nil
}

func (c *bootstrapBDDContext) theModuleShouldHaveBootstrappedOnce(name string) error {
	count := 0
	for _, entry := range c.record {
		if entry == "init:"+name {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("%w: %s initialized %d times, want 1", errWrongInitCount, name, count)
	}
	return nil
}

// InitializeBootstrapScenario wires the step definitions.
func InitializeBootstrapScenario(ctx *godog.ScenarioContext) {
	testCtx := &bootstrapBDDContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		testCtx.reset()
		return ctx, nil
	})

	ctx.Step(`^a container providing "([^"]*)"$`, testCtx.aContainerProviding)
	ctx.Step(`^a module "([^"]*)" requiring "([^"]*)"$`, testCtx.aModuleRequiring)
	ctx.Step(`^a module "([^"]*)" that panics during initialization$`, testCtx.aPanickingModule)
	ctx.Step(`^I bootstrap the registry( again)?$`, func(string) error { return testCtx.iBootstrapTheRegistry() })
	ctx.Step(`^the report should list "([^"]*)" as initialized$`, testCtx.theReportShouldListInitialized)
	ctx.Step(`^the report should list no failures$`, testCtx.theReportShouldListNoFailures)
	ctx.Step(`^the report should mark "([^"]*)" failed during "([^"]*)"$`, testCtx.theReportShouldMarkFailedDuring)
	ctx.Step(`^the failure for "([^"]*)" should mention "([^"]*)"$`, testCtx.theFailureShouldMention)
	ctx.Step(`^the module "([^"]*)" should have bootstrapped exactly once$`, testCtx.theModuleShouldHaveBootstrappedOnce)
}

// TestBootstrapFeatures runs the BDD suite for registry bootstrap.
func TestBootstrapFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeBootstrapScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/bootstrap.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
