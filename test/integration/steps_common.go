package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/snowforge/snowforge/pkg/server/middleware"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	server       *ServerInstance
	response     *http.Response
	responseBody []byte
	authToken    string
	lastRunID    string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.server != nil {
			s.server.Stop()
			s.server = nil
		}
		return ctx, err
	})

	// Background steps
	sc.Step(`^a snowforge server is running$`, s.aSnowforgeServerIsRunning)
	sc.Step(`^I am authenticated as "([^"]*)"$`, s.iAmAuthenticatedAs)
	sc.Step(`^I am not authenticated$`, s.iAmNotAuthenticated)

	// Request steps
	sc.Step(`^I request the server status$`, s.iRequestTheServerStatus)
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, s.iSendARequestTo)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response JSON at "([^"]*)" should be "([^"]*)"$`, s.theResponseJSONAtShouldBe)
	sc.Step(`^the response JSON at "([^"]*)" should have (\d+) items?$`, s.theResponseJSONAtShouldHaveItems)
	sc.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)

	s.registerAuthSteps(sc)
	s.registerWorkflowSteps(sc)
}

// Background steps

func (s *StepsContext) aSnowforgeServerIsRunning() error {
	if err := s.tc.Reset(); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	instance, err := StartServer(s.tc)
	if err != nil {
		return err
	}
	s.server = instance
	return nil
}

func (s *StepsContext) iAmAuthenticatedAs(subject string) error {
	token, err := middleware.IssueToken(s.tc.Secret, subject, time.Hour)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iAmNotAuthenticated() error {
	s.authToken = ""
	return nil
}

// Request steps

func (s *StepsContext) iRequestTheServerStatus() error {
	return s.do(http.MethodGet, "/", "")
}

func (s *StepsContext) iSendARequestTo(method, path string) error {
	return s.do(method, strings.ReplaceAll(path, "{last_run}", s.lastRunID), "")
}

func (s *StepsContext) do(method, path, body string) error {
	if s.server == nil {
		return fmt.Errorf("no server is running")
	}
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/yaml")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseJSONAtShouldBe(path, expected string) error {
	value, err := s.jsonAt(path)
	if err != nil {
		return err
	}
	if actual := fmt.Sprint(value); actual != expected {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, actual)
	}
	return nil
}

func (s *StepsContext) theResponseJSONAtShouldHaveItems(path string, count int) error {
	value, err := s.jsonAt(path)
	if err != nil {
		return err
	}
	items, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("%s is not a list: %v", path, value)
	}
	if len(items) != count {
		return fmt.Errorf("expected %d items at %s, got %d", count, path, len(items))
	}
	return nil
}

func (s *StepsContext) theResponseShouldContain(substr string) error {
	if !strings.Contains(string(s.responseBody), substr) {
		return fmt.Errorf("response does not contain %q: %s", substr, string(s.responseBody))
	}
	return nil
}

// jsonAt resolves a dotted path such as "statements.0.key" in the last
// response body.
func (s *StepsContext) jsonAt(path string) (interface{}, error) {
	var value interface{}
	if err := json.Unmarshal(s.responseBody, &value); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, part := range strings.Split(path, ".") {
		switch node := value.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("no %q in %s", part, path)
			}
			value = next
		case []interface{}:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("bad index %q in %s", part, path)
			}
			value = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %q in %s", part, path)
		}
	}
	return value, nil
}
