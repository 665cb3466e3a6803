package endpoints

import (
	"net/http"

	"github.com/snowforge/snowforge/pkg/server"
	"github.com/snowforge/snowforge/pkg/version"
)

// StatusResponse represents the response from GET /
type StatusResponse struct {
	Version string `json:"version"`
	Status  string `json:"status"`
	Ledger  bool   `json:"ledger"`
}

// RegisterStatusEndpoints registers the status endpoint (no auth required)
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/", handleStatus(s.Ledger != nil)).Methods("GET")
}

func handleStatus(ledgerEnabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{
			Version: version.Version,
			Status:  "ok",
			Ledger:  ledgerEnabled,
		})
	}
}
