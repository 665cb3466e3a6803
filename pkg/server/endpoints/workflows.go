package endpoints

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/ledger"
	"github.com/snowforge/snowforge/pkg/server"
	"github.com/snowforge/snowforge/pkg/server/middleware"
	"github.com/snowforge/snowforge/pkg/workflow"
	"github.com/snowforge/snowforge/pkg/workflow/plan"
)

// PlannedStatement is one statement of a plan response, in execution order.
type PlannedStatement struct {
	Position  int          `json:"position"`
	Key       string       `json:"key"`
	Action    forge.Action `json:"action"`
	Kind      string       `json:"kind"`
	Object    string       `json:"object"`
	SQL       string       `json:"sql"`
	DependsOn []string     `json:"depends_on,omitempty"`
}

// PlanResponse represents the response from POST /workflows/plan
type PlanResponse struct {
	Workflow   string             `json:"workflow"`
	SHA256     string             `json:"sha256"`
	Statements []PlannedStatement `json:"statements"`
}

// ApplyErrorResponse is returned when a workflow fails during execution.
type ApplyErrorResponse struct {
	Error  errorBody     `json:"error"`
	Result *forge.Result `json:"result"`
}

// RegisterWorkflowEndpoints registers plan and apply on a router that
// already authenticates requests.
func RegisterWorkflowEndpoints(s *server.Server, auth *middleware.JWTAuthenticator) {
	api := s.Router.PathPrefix("/workflows").Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("/plan", handlePlan(s)).Methods("POST")
	api.HandleFunc("/apply", handleApply(s)).Methods("POST")
}

func workflowName(r *http.Request) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}
	return "request"
}

// readWorkflow parses the request body. It writes the error response
// itself and returns nil when the body is not a workflow.
func readWorkflow(w http.ResponseWriter, r *http.Request) *workflow.File {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWorkflowBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeBadRequest, "unable to read request body: "+err.Error())
		return nil
	}
	file, err := workflow.ParseSource(workflowName(r), body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return nil
	}
	return file
}

func handlePlan(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := readWorkflow(w, r)
		if file == nil {
			return
		}

		var steps []plan.Step
		p, err := file.Plan()
		if err == nil {
			steps, err = p.Steps()
		}
		if s.Auditor != nil {
			s.Auditor.Plan(file.Name, file.SHA256(), len(steps), err)
		}
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, codeInvalid, err.Error())
			return
		}

		response := PlanResponse{
			Workflow:   file.Name,
			SHA256:     file.SHA256(),
			Statements: make([]PlannedStatement, len(steps)),
		}
		for i, step := range steps {
			response.Statements[i] = PlannedStatement{
				Position:  i + 1,
				Key:       step.Key,
				Action:    forge.ActionFor(step.Statement),
				Kind:      step.Statement.Kind().String(),
				Object:    step.Statement.ObjectName(),
				SQL:       step.Statement.SQL(),
				DependsOn: step.DependsOn,
			}
		}
		s.Log.WithField("subject", middleware.Subject(r.Context())).
			Infof("planned workflow %s: %d statements", file.Name, len(steps))
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleApply(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dryRun := false
		if raw := r.URL.Query().Get("dry_run"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, codeBadRequest, "dry_run must be a boolean")
				return
			}
			dryRun = parsed
		}

		file := readWorkflow(w, r)
		if file == nil {
			return
		}

		engine, err := s.Engines(r.Context())
		if err != nil {
			s.Log.WithError(err).Error("unable to create engine")
			respondWithError(w, http.StatusServiceUnavailable, codeUnavailable, err.Error())
			return
		}
		defer closeEngine(s, engine)

		subject := middleware.Subject(r.Context())
		engine.WithLogger(s.Log.WithField("subject", subject))
		if s.Ledger != nil {
			engine.WithRecorder(ledger.NewRecorder(s.Ledger))
		}
		if s.Auditor != nil {
			engine.WithAuditor(s.Auditor)
		}

		wf, err := file.Workflow(engine)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, codeInvalid, err.Error())
			return
		}
		result, err := wf.WithDryRun(dryRun).Execute(r.Context())
		if err != nil {
			respondWithJSON(w, http.StatusBadGateway, ApplyErrorResponse{
				Error:  errorBody{Code: codeExecution, Message: err.Error()},
				Result: result,
			})
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

func closeEngine(s *server.Server, engine *forge.Forge) {
	// the request context may already be cancelled
	if err := engine.Close(context.Background()); err != nil {
		s.Log.WithError(err).Warn("unable to close engine")
	}
}
