// Copyright © 2026 The rpmspec-ls authors

// Package client bridges to an external RPM language server. It owns the
// server subprocess, speaks the client side of the Language Server
// Protocol over the child's stdio, and relays the diagnostics the server
// publishes back to whoever is embedding the bridge.
//
// The bridge implements no language semantics of its own: it launches
// the configured binary with --stdio, performs the initialize handshake,
// forwards document lifecycle notifications, and shuts the session down
// once at the end of its lifetime.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var log = commonlog.GetLogger("rpmspec-ls.client")

// Config describes the language-server session to establish.
type Config struct {
	// ServerPath is the executable to launch with --stdio.
	ServerPath string

	// RootPath is the workspace root; it becomes the subprocess working
	// directory and the rootUri of the initialize request.
	RootPath string

	// Env is the subprocess environment.
	Env []string
}

// DiagnosticsHandler receives diagnostics published by the server.
type DiagnosticsHandler func(params *protocol.PublishDiagnosticsParams)

// Client is a single language-client session. It is started at most
// once and stopped at most once; both are enforced internally.
type Client struct {
	cfg           Config
	onDiagnostics DiagnosticsHandler

	// startProcess launches the server and returns its stdio as a
	// read/write stream. Overridable so tests can supply an in-process
	// server over a pipe.
	startProcess func(ctx context.Context) (io.ReadWriteCloser, error)

	mu       sync.Mutex
	conn     *jsonrpc2.Conn
	stopOnce sync.Once
}

// Option configures the client.
type Option func(*Client)

// WithDiagnosticsHandler registers a callback for the server's
// textDocument/publishDiagnostics notifications.
func WithDiagnosticsHandler(h DiagnosticsHandler) Option {
	return func(c *Client) { c.onDiagnostics = h }
}

// New creates a client for the given session configuration. Nothing is
// spawned until Start is called.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{cfg: cfg}
	c.startProcess = c.spawnServer
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start launches the server process and performs the LSP initialize
// handshake. It returns once the server has answered initialize and the
// initialized notification has been sent.
func (c *Client) Start(ctx context.Context) error {
	rwc, err := c.startProcess(ctx)
	if err != nil {
		return fmt.Errorf("start language server: %w", err)
	}

	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.AsyncHandler(jsonrpc2.HandlerWithError(c.handle)))

	var result json.RawMessage
	if err := conn.Call(ctx, "initialize", c.initializeParams(), &result); err != nil {
		_ = conn.Close()
		return fmt.Errorf("initialize %s: %w", c.cfg.ServerPath, err)
	}
	if err := conn.Notify(ctx, "initialized", struct{}{}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("initialized %s: %w", c.cfg.ServerPath, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	log.Infof("language server session started: %s --stdio", c.cfg.ServerPath)
	return nil
}

// Stop ends the session: shutdown request, exit notification, close.
// Subsequent calls are no-ops. Errors are logged, not returned — by the
// time Stop runs the editor is going away and there is nobody left to
// tell.
func (c *Client) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()
		if conn == nil {
			return
		}
		var result json.RawMessage
		if err := conn.Call(ctx, "shutdown", nil, &result); err != nil {
			log.Warningf("language server shutdown: %v", err)
		}
		if err := conn.Notify(ctx, "exit", nil); err != nil {
			log.Warningf("language server exit: %v", err)
		}
		_ = conn.Close()
	})
	return nil
}

// DidOpen forwards a textDocument/didOpen notification.
func (c *Client) DidOpen(ctx context.Context, uri, languageID string, version int32, text string) {
	c.notify(ctx, "textDocument/didOpen", &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    protocol.Integer(version),
			Text:       text,
		},
	})
}

// DidChange forwards a full-document textDocument/didChange notification.
func (c *Client) DidChange(ctx context.Context, uri string, version int32, text string) {
	c.notify(ctx, "textDocument/didChange", &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                protocol.Integer(version),
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: text},
		},
	})
}

// DidSave forwards a textDocument/didSave notification.
func (c *Client) DidSave(ctx context.Context, uri string) {
	c.notify(ctx, "textDocument/didSave", &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
}

// DidClose forwards a textDocument/didClose notification.
func (c *Client) DidClose(ctx context.Context, uri string) {
	c.notify(ctx, "textDocument/didClose", &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
}

func (c *Client) notify(ctx context.Context, method string, params any) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Notify(ctx, method, params); err != nil {
		log.Warningf("%s: %v", method, err)
	}
}

// handle dispatches requests and notifications arriving from the server.
// Diagnostics are relayed; log chatter is logged; anything else the
// bridge does not understand is answered with MethodNotFound so the
// server can degrade gracefully.
func (c *Client) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case "textDocument/publishDiagnostics":
		if c.onDiagnostics == nil || req.Params == nil {
			return nil, nil
		}
		var params protocol.PublishDiagnosticsParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			log.Errorf("publishDiagnostics: %v", err)
			return nil, nil
		}
		c.onDiagnostics(&params)
		return nil, nil
	case "window/showMessage", "window/logMessage":
		var params protocol.LogMessageParams
		if req.Params != nil {
			_ = json.Unmarshal(*req.Params, &params)
		}
		log.Infof("server message: %s", params.Message)
		return nil, nil
	case "client/registerCapability", "client/unregisterCapability":
		// Accepted and ignored: the bridge registers nothing dynamically.
		return nil, nil
	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", req.Method),
		}
	}
}

// initializeParams builds the handshake request. The wire shape is kept
// as a local struct so exactly what this bridge claims to support stays
// visible in one place.
func (c *Client) initializeParams() *initializeParams {
	p := &initializeParams{
		ProcessID: os.Getpid(),
		ClientInfo: clientInfo{
			Name:    "rpmspec-ls",
			Version: Version,
		},
	}
	if c.cfg.RootPath != "" {
		p.RootPath = c.cfg.RootPath
		p.RootURI = pathToURI(c.cfg.RootPath)
	}
	return p
}

// Version is the client version reported in the initialize handshake.
const Version = "0.1.0"

type initializeParams struct {
	ProcessID    int        `json:"processId"`
	ClientInfo   clientInfo `json:"clientInfo"`
	RootPath     string     `json:"rootPath,omitempty"`
	RootURI      string     `json:"rootUri,omitempty"`
	Capabilities struct{}   `json:"capabilities"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// spawnServer launches the configured binary with --stdio and returns a
// stream over its stdin/stdout. Stderr is passed through so server-side
// crashes stay visible in this process's logs.
func (c *Client) spawnServer(ctx context.Context) (io.ReadWriteCloser, error) {
	cmd := buildServerCmd(ctx, c.cfg)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go func() {
		// Reap the child to avoid a zombie once the session ends.
		if err := cmd.Wait(); err != nil {
			log.Infof("language server exited: %v", err)
		}
	}()
	return &stdio{ReadCloser: stdout, WriteCloser: stdin}, nil
}

// buildServerCmd constructs the server invocation: the configured path,
// the fixed --stdio transport flag, the spawn environment from the
// sanity context, and the workspace root as working directory.
func buildServerCmd(ctx context.Context, cfg Config) *exec.Cmd {
	cmd := exec.CommandContext(ctx, cfg.ServerPath, "--stdio")
	cmd.Dir = cfg.RootPath
	cmd.Env = cfg.Env
	cmd.Stderr = os.Stderr
	return cmd
}

// stdio glues a subprocess's stdout (read side) and stdin (write side)
// into a single stream for jsonrpc2.
type stdio struct {
	io.ReadCloser
	io.WriteCloser
}

func (s *stdio) Read(p []byte) (int, error)  { return s.ReadCloser.Read(p) }
func (s *stdio) Write(p []byte) (int, error) { return s.WriteCloser.Write(p) }

func (s *stdio) Close() error {
	werr := s.WriteCloser.Close()
	rerr := s.ReadCloser.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
