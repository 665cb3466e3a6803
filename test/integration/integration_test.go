package integration

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs features/*.feature against a ledger in a PostgreSQL
// container. GODOG_TAGS narrows the run, for example GODOG_TAGS=@ledger.
func TestFeatures(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("set INTEGRATION_TEST=1 to run the integration features")
	}

	ctx := context.Background()
	tc, err := NewTestContext(ctx)
	if err != nil {
		t.Fatalf("starting test environment: %v", err)
	}
	t.Cleanup(func() { tc.Close(ctx) })

	opts := &godog.Options{
		Format:   "pretty",
		Paths:    []string{"features"},
		Tags:     os.Getenv("GODOG_TAGS"),
		Strict:   true,
		TestingT: t,
	}
	status := godog.TestSuite{
		Name: "snowforge",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			NewStepsContext(tc).RegisterSteps(sc)
		},
		Options: opts,
	}.Run()
	if status != 0 {
		t.Fatalf("feature suite exited with status %d", status)
	}
}
