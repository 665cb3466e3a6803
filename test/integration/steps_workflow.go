package integration

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cucumber/godog"

	"github.com/snowforge/snowforge/pkg/ledger"
)

func (s *StepsContext) registerWorkflowSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I plan the workflow "([^"]*)":$`, s.iPlanTheWorkflow)
	sc.Step(`^I dry-run the workflow "([^"]*)":$`, s.iDryRunTheWorkflow)
	sc.Step(`^I apply the workflow "([^"]*)":$`, s.iApplyTheWorkflow)
	sc.Step(`^the planned statements should be:$`, s.thePlannedStatementsShouldBe)

	sc.Step(`^the ledger should contain (\d+) runs?$`, s.theLedgerShouldContainRuns)
	sc.Step(`^the last run should have status "([^"]*)" with (\d+) steps?$`, s.theLastRunShouldHaveStatus)
	sc.Step(`^an audit message should mention "([^"]*)"$`, s.anAuditMessageShouldMention)
}

func (s *StepsContext) iPlanTheWorkflow(name string, body *godog.DocString) error {
	return s.do("POST", "/workflows/plan?name="+url.QueryEscape(name), body.Content)
}

func (s *StepsContext) iDryRunTheWorkflow(name string, body *godog.DocString) error {
	return s.apply(name, body.Content, true)
}

func (s *StepsContext) iApplyTheWorkflow(name string, body *godog.DocString) error {
	return s.apply(name, body.Content, false)
}

func (s *StepsContext) apply(name, body string, dryRun bool) error {
	query := url.Values{"name": {name}}
	if dryRun {
		query.Set("dry_run", "true")
	}
	if err := s.do("POST", "/workflows/apply?"+query.Encode(), body); err != nil {
		return err
	}
	if id, err := s.jsonAt("run_id"); err == nil {
		s.lastRunID = fmt.Sprint(id)
	} else if id, err := s.jsonAt("result.run_id"); err == nil {
		s.lastRunID = fmt.Sprint(id)
	}
	return nil
}

// thePlannedStatementsShouldBe compares the key and action columns of the
// table with the plan in the last response.
func (s *StepsContext) thePlannedStatementsShouldBe(table *godog.Table) error {
	rows := table.Rows[1:]
	if err := s.theResponseJSONAtShouldHaveItems("statements", len(rows)); err != nil {
		return err
	}
	for i, row := range rows {
		for j, cell := range row.Cells {
			column := table.Rows[0].Cells[j].Value
			if err := s.theResponseJSONAtShouldBe(fmt.Sprintf("statements.%d.%s", i, column), cell.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *StepsContext) theLedgerShouldContainRuns(count int) error {
	var actual int64
	if err := s.tc.DB.Model(&ledger.Run{}).Count(&actual).Error; err != nil {
		return err
	}
	if actual != int64(count) {
		return fmt.Errorf("expected %d runs in the ledger, found %d", count, actual)
	}
	return nil
}

func (s *StepsContext) theLastRunShouldHaveStatus(status string, steps int) error {
	if s.lastRunID == "" {
		return fmt.Errorf("no run id in any response")
	}
	var run ledger.Run
	if err := s.tc.DB.Where("id = ?", s.lastRunID).First(&run).Error; err != nil {
		return fmt.Errorf("run %s: %w", s.lastRunID, err)
	}
	if run.Status != status {
		return fmt.Errorf("expected run status %q, got %q", status, run.Status)
	}
	var recorded int64
	if err := s.tc.DB.Model(&ledger.RunStep{}).Where("run_id = ?", s.lastRunID).Count(&recorded).Error; err != nil {
		return err
	}
	if run.Steps != steps || recorded != int64(steps) {
		return fmt.Errorf("expected %d steps, run says %d and %d are recorded", steps, run.Steps, recorded)
	}
	return nil
}

func (s *StepsContext) anAuditMessageShouldMention(text string) error {
	var messages []string
	if err := s.tc.DB.Raw(`SELECT message FROM audit_messages ORDER BY id`).Scan(&messages).Error; err != nil {
		return err
	}
	for _, m := range messages {
		if strings.Contains(m, text) {
			return nil
		}
	}
	return fmt.Errorf("no audit message mentions %q in %v", text, messages)
}
