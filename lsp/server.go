// Copyright © 2026 The rpmspec-ls authors

// Package lsp implements the rpmspec language server. It publishes
// rpmlint diagnostics for open spec files and, when an external RPM
// language server is installed, bridges the session to it so its
// diagnostics are merged with rpmlint's.
package lsp

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	"github.com/rpmdev/rpmspec-ls/client"
	"github.com/rpmdev/rpmspec-ls/speclint"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	serverName = "rpmspec-ls"

	// languageID is the only language this server tracks. Documents
	// opened with any other language identifier are ignored.
	languageID = "rpmspec"
)

var log = commonlog.GetLogger("rpmspec-ls.lsp")

// Config holds the feature switches and executable paths for a session.
type Config struct {
	// LintEnabled controls whether rpmlint runs on open and save.
	LintEnabled bool
	// ServerEnabled controls whether the external language server is
	// probed and bridged.
	ServerEnabled bool
	// RpmlintPath is the rpmlint executable name or path.
	RpmlintPath string
	// ServerPath is the external language server executable name or path.
	ServerPath string
}

// DefaultConfig returns the built-in defaults: both features on, bare
// executable names resolved through PATH.
func DefaultConfig() Config {
	return Config{
		LintEnabled:   true,
		ServerEnabled: true,
		RpmlintPath:   "rpmlint",
		ServerPath:    "rpm_lsp_server",
	}
}

// bridge is the slice of client.Client the server drives. Narrowed to
// an interface so tests can substitute a recorder.
type bridge interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	DidOpen(ctx context.Context, uri, languageID string, version int32, text string)
	DidChange(ctx context.Context, uri string, version int32, text string)
	DidSave(ctx context.Context, uri string)
	DidClose(ctx context.Context, uri string)
}

// Server is the rpmspec language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	pub      *Publisher
	rootURI  string
	rootPath string

	// config is re-read at every decision point so settings changes
	// take effect without restarting the session.
	config func() Config

	// runner spawns rpmlint and probe subprocesses.
	runner speclint.Runner

	// Bridge to the external language server. nil until activation
	// succeeds. newBridge is overridable for testing.
	bridgeMu  sync.Mutex
	bridge    bridge
	newBridge func(cfg client.Config) bridge

	// activation runs once per session, after the initialized
	// notification.
	activateOnce sync.Once
	activateWG   sync.WaitGroup

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithConfig installs a configuration source. The function is invoked
// on every lint run and at activation.
func WithConfig(fn func() Config) Option {
	return func(s *Server) { s.config = fn }
}

// WithRunner injects the subprocess runner used for rpmlint and probes.
func WithRunner(r speclint.Runner) Option {
	return func(s *Server) { s.runner = r }
}

// New creates a new rpmspec language server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:   NewDocumentStore(),
		config: DefaultConfig,
		runner: speclint.NewRunner(),
		exitFn: os.Exit,
	}
	for _, o := range opts {
		o(s)
	}
	s.pub = NewPublisher(s.sendNotification)
	s.newBridge = func(cfg client.Config) bridge {
		return client.New(cfg, client.WithDiagnosticsHandler(s.pub.SetServerDiagnostics))
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	version := client.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// initialized handles the initialized notification by kicking off
// session activation in the background. The probes run subprocesses and
// must not block the notification handler.
func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	s.activateOnce.Do(func() {
		s.activateWG.Add(1)
		go func() {
			defer s.activateWG.Done()
			s.activate(context.Background())
		}()
	})
	return nil
}

// activate probes the session's external tools and switches on the
// features whose tools respond. rpmlint failing its sanity check is
// surfaced to the user as a warning; a missing language server is a
// silent downgrade to lint-only operation.
func (s *Server) activate(ctx context.Context) {
	cfg := s.config()

	if cfg.LintEnabled {
		lc := speclint.NewContext(cfg.RpmlintPath, s.rootPath)
		if err := speclint.SanityCheck(ctx, s.runner, lc); err != nil {
			log.Warningf("rpmlint unavailable: %s", err)
			s.showWarning(fmt.Sprintf("rpmlint is not usable (%s): spec file linting is disabled", err))
		} else {
			s.pub.Activate()
			for _, doc := range s.docs.All() {
				s.lint(doc)
			}
		}
	}

	if cfg.ServerEnabled {
		lc := speclint.NewContext(cfg.ServerPath, s.rootPath)
		if err := speclint.ProbeExecutable(ctx, s.runner, lc); err != nil {
			log.Infof("language server unavailable, running lint-only: %s", err)
			return
		}
		b := s.newBridge(client.Config{
			ServerPath: cfg.ServerPath,
			RootPath:   s.rootPath,
			Env:        lc.Env,
		})
		if err := b.Start(ctx); err != nil {
			log.Errorf("language server failed to start: %s", err)
			return
		}
		s.bridgeMu.Lock()
		s.bridge = b
		s.bridgeMu.Unlock()

		// Replay documents opened before activation completed.
		for _, doc := range s.docs.All() {
			b.DidOpen(ctx, doc.URI, doc.LanguageID, doc.Version, doc.Content)
		}
	}
}

// currentBridge returns the active bridge, or nil when the external
// server is not running.
func (s *Server) currentBridge() bridge {
	s.bridgeMu.Lock()
	defer s.bridgeMu.Unlock()
	return s.bridge
}

// shutdown handles the LSP shutdown request. The external server is
// told to stop in the background; its failure to comply does not hold
// up this session's own shutdown.
func (s *Server) shutdown(_ *glsp.Context) error {
	s.bridgeMu.Lock()
	b := s.bridge
	s.bridge = nil
	s.bridgeMu.Unlock()
	if b != nil {
		go func() { _ = b.Stop(context.Background()) }()
	}
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// showWarning sends a window/showMessage warning to the editor.
func (s *Server) showWarning(msg string) {
	s.sendNotification(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeWarning,
		Message: msg,
	})
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a lint run).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
