package endpoints

import (
	"github.com/snowforge/snowforge/pkg/server"
	"github.com/snowforge/snowforge/pkg/server/middleware"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	auth := middleware.NewJWTAuthenticator(srv.Secret)

	RegisterStatusEndpoints(srv)
	RegisterWorkflowEndpoints(srv, auth)
	RegisterRunsEndpoints(srv, auth)
}
