package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/leapstack-labs/surqls/pkg/analysis"
)

// ErrExitWithoutShutdown is returned by Run when the client sent exit
// without a preceding shutdown request.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// ServerName is reported to clients in the initialize response.
const ServerName = "surqls"

// Server implements the Language Server Protocol for SurrealQL.
type Server struct {
	documents *DocumentStore
	analyzer  *analysis.Analyzer
	version   string

	// I/O
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	logger *slog.Logger

	// Lifecycle state
	stateMu     sync.RWMutex
	initialized bool
	shutdown    bool

	// passes tracks analysis passes still running.
	passes sync.WaitGroup
}

// NewServer creates a server that reads requests from reader and writes
// responses to writer, analyzing documents with analyzer.
func NewServer(reader io.Reader, writer io.Writer, analyzer *analysis.Analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		documents: NewDocumentStore(),
		analyzer:  analyzer,
		reader:    bufio.NewReader(reader),
		writer:    writer,
		logger:    logger,
	}
}

// SetVersion sets the version reported in the initialize response.
func (s *Server) SetVersion(v string) {
	s.version = v
}

// Documents returns the server's document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

type readResult struct {
	msg *JSONRPCMessage
	err error
}

// Run processes JSON-RPC messages until the client sends exit, the input
// ends or ctx is cancelled. Pending analysis passes finish before it returns.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("surqls language server starting")
	defer s.passes.Wait()

	messages := make(chan readResult)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			msg, err := s.readMessage()
			select {
			case messages <- readResult{msg, err}:
			case <-done:
				return
			}
			if err != nil && isDisconnect(err) {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("server stopped", "reason", ctx.Err())
			return nil
		case r := <-messages:
			if r.err != nil {
				if isDisconnect(r.err) {
					s.logger.Info("client disconnected")
					return nil
				}
				s.logger.Error("error reading message", "error", r.err)
				s.sendResponse(nil, nil, &JSONRPCError{Code: CodeParseError, Message: r.err.Error()})
				continue
			}

			if r.msg.Method == "exit" {
				return s.handleExit()
			}
			if err := s.handleMessage(r.msg); err != nil {
				s.logger.Error("error handling message", "method", r.msg.Method, "error", err)
			}
		}
	}
}

func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe)
}

// readMessage reads a JSON-RPC message from the input stream.
func (s *Server) readMessage() (*JSONRPCMessage, error) {
	// Read headers
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break // End of headers
		}

		if value, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			contentLength, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}

	if contentLength <= 0 {
		return nil, errors.New("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}

	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	return &msg, nil
}

// sendResponse sends a JSON-RPC response.
func (s *Server) sendResponse(id *json.RawMessage, result any, rpcErr *JSONRPCError) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
	}

	if rpcErr != nil {
		msg.Error = rpcErr
	} else {
		body, err := json.Marshal(result)
		if err != nil {
			s.logger.Error("error marshaling result", "error", err)
			msg.Error = &JSONRPCError{Code: CodeInvalidRequest, Message: err.Error()}
		} else {
			msg.Result = body
		}
	}

	s.writeMessage(&msg)
}

// sendNotification sends a JSON-RPC notification (no ID).
func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
	}

	if params != nil {
		body, err := json.Marshal(params)
		if err != nil {
			s.logger.Error("error marshaling params", "method", method, "error", err)
			return
		}
		msg.Params = body
	}

	s.writeMessage(&msg)
}

// writeMessage writes a JSON-RPC message to the output stream.
func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("error marshaling message", "error", err)
		return
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(s.writer, header); err != nil {
		s.logger.Error("error writing message", "error", err)
		return
	}
	if _, err := s.writer.Write(body); err != nil {
		s.logger.Error("error writing message", "error", err)
	}
}

// handleMessage dispatches a message to the appropriate handler.
func (s *Server) handleMessage(msg *JSONRPCMessage) error {
	s.logger.Debug("received", "method", msg.Method)

	s.stateMu.RLock()
	initialized, shutdown := s.initialized, s.shutdown
	s.stateMu.RUnlock()

	isRequest := msg.ID != nil
	switch {
	case shutdown:
		if isRequest {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidRequest, Message: "server is shut down"})
		}
		return nil
	case !initialized && msg.Method != "initialize":
		if isRequest {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeServerNotInitialized, Message: "server not initialized"})
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	default:
		if isRequest {
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    CodeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.stateMu.Lock()
	s.initialized = true
	s.stateMu.Unlock()

	if params.ClientInfo != nil {
		s.logger.Info("client connected", "name", params.ClientInfo.Name, "version", params.ClientInfo.Version)
	}
	if params.RootURI != "" {
		s.logger.Info("workspace root", "path", URIToPath(params.RootURI))
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			CompletionProvider: &CompletionOptions{
				TriggerCharacters: []string{".", "$", ":"},
			},
			HoverProvider: true,
		},
		ServerInfo: ServerInfo{Name: ServerName, Version: s.version},
	}

	s.sendResponse(msg.ID, result, nil)
	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.stateMu.Lock()
	s.shutdown = true
	s.stateMu.Unlock()

	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("server shutdown")
	return nil
}

func (s *Server) handleExit() error {
	s.stateMu.RLock()
	shutdown := s.shutdown
	s.stateMu.RUnlock()

	s.logger.Info("server exit", "clean", shutdown)
	if !shutdown {
		return ErrExitWithoutShutdown
	}
	return nil
}

// --- Document handlers ---

func (s *Server) handleDidOpen(msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	item := params.TextDocument
	doc := s.documents.Open(item.URI, item.Text, item.Version)
	s.logger.Debug("opened", "uri", item.URI, "version", item.Version)

	s.schedulePass(doc)
	return nil
}

func (s *Server) handleDidChange(msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}

	// Full sync: the last change holds the whole text.
	uri := params.TextDocument.URI
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	doc := s.documents.Update(uri, text, params.TextDocument.Version)
	if doc == nil {
		s.logger.Warn("change for unknown or stale document", "uri", uri, "version", params.TextDocument.Version)
		return nil
	}

	s.schedulePass(doc)
	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	uri := params.TextDocument.URI
	s.documents.Close(uri)
	s.analyzer.Invalidate(uri)
	s.logger.Debug("closed", "uri", uri)

	// Clear diagnostics
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	})
	return nil
}

// --- Feature handlers ---

func (s *Server) handleCompletion(msg *JSONRPCMessage) error {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	items := s.getCompletions(params)
	s.sendResponse(msg.ID, &CompletionList{Items: items}, nil)
	return nil
}

func (s *Server) handleHover(msg *JSONRPCMessage) error {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: CodeInvalidParams, Message: err.Error()})
		return err
	}

	s.sendResponse(msg.ID, s.getHover(params), nil)
	return nil
}

// --- Analysis passes ---

// schedulePass analyzes doc in the background and publishes the result
// unless a newer version arrived meanwhile.
func (s *Server) schedulePass(doc *Document) {
	s.passes.Add(1)
	go func() {
		defer s.passes.Done()
		s.runPass(doc)
	}()
}

func (s *Server) runPass(doc *Document) {
	pass := uuid.New()
	log := s.logger.With("pass", pass, "uri", doc.URI, "version", doc.Version)

	result := s.analyzer.GetOrAnalyze(doc.URI, doc.Content, doc.Version)

	cur := s.documents.Get(doc.URI)
	if cur == nil || cur.Version != result.Version || cur.Version != doc.Version {
		log.Debug("discarded superseded pass")
		return
	}

	log.Debug("analysis pass", "diagnostics", len(result.Diagnostics))
	s.publishDiagnostics(cur, result)
}

// refreshAll re-analyzes every open document, for example after the
// schema changed.
func (s *Server) refreshAll() {
	for _, uri := range s.documents.List() {
		if doc := s.documents.Get(uri); doc != nil {
			s.schedulePass(doc)
		}
	}
}

// analyzed returns the analysis result for the current text of doc.
func (s *Server) analyzed(doc *Document) *analysis.Document {
	return s.analyzer.GetOrAnalyze(doc.URI, doc.Content, doc.Version)
}
