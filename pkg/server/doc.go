// Package server provides the HTTP API for planning and applying workflows.
//
// The server uses gorilla/mux for routing. Every route except the status
// page sits behind a bearer token check, see the middleware subpackage.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, engines, "0.0.0.0", "8080")
//	srv.Ledger = store
//	srv.Secret = []byte(os.Getenv(middleware.SecretEnv))
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
//   - GET / - status and version
//   - POST /workflows/plan - order a workflow document and render its SQL
//   - POST /workflows/apply - execute a workflow document (?dry_run=true)
//   - GET /runs - recent runs from the ledger
//   - GET /runs/{id} - one run with its steps
package server
