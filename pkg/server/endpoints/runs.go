package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/snowforge/snowforge/pkg/ledger"
	"github.com/snowforge/snowforge/pkg/server"
	"github.com/snowforge/snowforge/pkg/server/middleware"
)

// RunResponse represents the response from GET /runs/{id}
type RunResponse struct {
	Run   *ledger.Run      `json:"run"`
	Steps []ledger.RunStep `json:"steps"`
}

// RunsResponse represents the response from GET /runs
type RunsResponse struct {
	Runs []ledger.Run `json:"runs"`
}

func RegisterRunsEndpoints(s *server.Server, auth *middleware.JWTAuthenticator) {
	api := s.Router.PathPrefix("/runs").Subrouter()
	api.Use(auth.Middleware)

	api.HandleFunc("", handleListRuns(s.Ledger)).Methods("GET")
	api.HandleFunc("/{id}", handleGetRun(s.Ledger)).Methods("GET")
}

func ledgerDisabled(w http.ResponseWriter) {
	respondWithError(w, http.StatusNotFound, codeNotFound, "run ledger is not configured")
}

func handleListRuns(store ledger.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			ledgerDisabled(w)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				respondWithError(w, http.StatusBadRequest, codeBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		runs, err := store.ListRuns(r.Context(), limit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, codeInternal, err.Error())
			return
		}
		if runs == nil {
			runs = []ledger.Run{}
		}
		respondWithJSON(w, http.StatusOK, RunsResponse{Runs: runs})
	}
}

func handleGetRun(store ledger.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			ledgerDisabled(w)
			return
		}

		id, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, codeBadRequest, "run id must be a UUID")
			return
		}

		run, err := store.GetRun(r.Context(), id)
		if errors.Is(err, ledger.ErrRunNotFound) {
			respondWithError(w, http.StatusNotFound, codeNotFound, err.Error())
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, codeInternal, err.Error())
			return
		}

		steps, err := store.ListSteps(r.Context(), id)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, codeInternal, err.Error())
			return
		}
		if steps == nil {
			steps = []ledger.RunStep{}
		}
		respondWithJSON(w, http.StatusOK, RunResponse{Run: run, Steps: steps})
	}
}
