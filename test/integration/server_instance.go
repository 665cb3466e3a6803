package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/snowforge/snowforge/pkg/audit"
	"github.com/snowforge/snowforge/pkg/config"
	"github.com/snowforge/snowforge/pkg/db"
	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/ledger"
	"github.com/snowforge/snowforge/pkg/server"
	"github.com/snowforge/snowforge/pkg/server/endpoints"
	"github.com/snowforge/snowforge/pkg/server/middleware"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

var errNoWarehouse = errors.New("no Snowflake account is available to integration tests")

// ServerInstance is a snowforge API started for a single scenario.
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	serverProcess *exec.Cmd
	cancel        context.CancelFunc
}

// StartServer starts an API backed by the test ledger. Workflows can only be
// planned or dry-run: engines refuse to open a Snowflake connection.
func StartServer(tc *TestContext) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc)
	}
	return startBinaryServerInstance(tc)
}

func startInlineServerInstance(tc *TestContext) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	audit.SetEnabled(true)
	audit.DefaultLogger.SetWriter(os.Stderr)

	s := server.NewServer(&config.Config{LedgerEnabled: true, AuditEnabled: true}, offlineEngines, "127.0.0.1", fmt.Sprintf("%d", port))
	s.Ledger = ledger.NewGormStore(tc.DB)
	s.Auditor = audit.NewAuditor(audit.DefaultLogger, audit.NewStoreWithDB(tc.RawDB))
	s.Secret = tc.Secret
	endpoints.RegisterAll(s)

	go func() {
		_ = s.Start()
	}()

	instance := &ServerInstance{
		Server:    s,
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
	}
	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

func offlineEngines(ctx context.Context) (*forge.Forge, error) {
	return forge.New(func(ctx context.Context) (*sql.DB, error) {
		return nil, errNoWarehouse
	}), nil
}

// startBinaryServerInstance runs "snowforge server" against the test ledger.
// The Snowflake variables are placeholders; dry runs never connect.
func startBinaryServerInstance(tc *TestContext) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))
	portStr := fmt.Sprintf("%d", port)

	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, tc.BinaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", portStr)
	cmd.Env = append(os.Environ(),
		db.LedgerURLEnv+"="+tc.DatabaseURL,
		"SNOWFORGE_AUDIT_DATABASE_URL="+tc.DatabaseURL,
		"SNOWFORGE_LEDGER_ENABLED=true",
		"SNOWFORGE_AUDIT_ENABLED=true",
		middleware.SecretEnv+"="+string(tc.Secret),
		"SNOWFLAKE_ACCOUNT=integration",
		"SNOWFLAKE_USER=integration",
		"SNOWFLAKE_PASSWORD=integration",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:          port,
		serverProcess: cmd,
		cancel:        cancel,
	}
	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts the server down.
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = si.Server.Shutdown(ctx)
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
