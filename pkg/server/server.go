package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/snowforge/snowforge/pkg/audit"
	"github.com/snowforge/snowforge/pkg/config"
	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/ledger"
	"github.com/snowforge/snowforge/pkg/logger"
)

// EngineFactory returns a new, unconnected engine for one request.
type EngineFactory func(ctx context.Context) (*forge.Forge, error)

type Server struct {
	Router  *mux.Router
	Config  *config.Config
	Engines EngineFactory
	// Ledger is nil when no run ledger is configured.
	Ledger  ledger.Store
	Auditor *audit.Auditor
	Secret  []byte
	Log     logger.Log
	srv     *http.Server
}

func NewServer(
	cfg *config.Config,
	engines EngineFactory,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler:      handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, router)),
		Addr:         host + ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:  router,
		Config:  cfg,
		Engines: engines,
		Log:     logger.NoOp(""),
		srv:     srv,
	}
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
