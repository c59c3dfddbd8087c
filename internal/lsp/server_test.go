package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surqls/internal/testutil"
	"github.com/leapstack-labs/surqls/pkg/analysis"
	"github.com/leapstack-labs/surqls/pkg/types"
)

const messageTimeout = 5 * time.Second

func testTables() map[string]types.Object {
	return map[string]types.Object{
		"person": {Fields: []types.Field{
			types.NewField("id", types.Option(types.Record("person"))),
			types.NewField("name", types.String),
			types.NewField("age", types.Option(types.Int)),
			types.NewField("friend", types.Option(types.Record("person"))),
			types.NewField("address", types.Option(types.ObjectOf(types.NewField("city", types.String)))),
		}},
	}
}

// testClient talks to a server over in-memory pipes.
type testClient struct {
	t      *testing.T
	in     *io.PipeWriter
	msgs   chan *JSONRPCMessage
	queue  []*JSONRPCMessage
	done   chan error
	nextID int
}

func startServer(t *testing.T) *testClient {
	t.Helper()

	clientIn, serverOut := io.Pipe()
	serverIn, clientOut := io.Pipe()

	logger := testutil.NewTestLogger(t)
	analyzer := analysis.New(testTables(), analysis.DefaultOptions(), logger)
	srv := NewServer(serverIn, serverOut, analyzer, logger)

	c := &testClient{
		t:    t,
		in:   clientOut,
		msgs: make(chan *JSONRPCMessage, 64),
		done: make(chan error, 1),
	}

	go func() {
		c.done <- srv.Run(context.Background())
		_ = serverOut.Close()
	}()

	// Read continuously so the server never blocks on a write.
	go func() {
		defer close(c.msgs)
		r := bufio.NewReader(clientIn)
		for {
			msg, err := readFramed(r)
			if err != nil {
				return
			}
			c.msgs <- msg
		}
	}()

	t.Cleanup(func() {
		_ = clientOut.Close()
		select {
		case <-c.done:
		case <-time.After(messageTimeout):
			t.Error("server did not stop")
		}
	})
	return c
}

func readFramed(r *bufio.Reader) (*JSONRPCMessage, error) {
	length := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			length, _ = strconv.Atoi(v)
		}
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	var msg JSONRPCMessage
	return &msg, json.Unmarshal(body, &msg)
}

func (c *testClient) send(msg any) {
	c.t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(c.t, err)
	_, err = fmt.Fprintf(c.in, "Content-Length: %d\r\n\r\n%s", len(body), body)
	require.NoError(c.t, err)
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.send(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

// request sends a request and returns its response, queueing any
// notifications that arrive first.
func (c *testClient) request(method string, params any) *JSONRPCMessage {
	c.t.Helper()
	c.nextID++
	id := c.nextID
	c.send(map[string]any{"jsonrpc": "2.0", "id": id, "method": method, "params": params})

	for {
		msg := c.next()
		if msg.ID != nil && string(*msg.ID) == strconv.Itoa(id) {
			return msg
		}
		c.queue = append(c.queue, msg)
	}
}

func (c *testClient) next() *JSONRPCMessage {
	c.t.Helper()
	select {
	case msg, ok := <-c.msgs:
		require.True(c.t, ok, "server closed the connection")
		return msg
	case <-time.After(messageTimeout):
		c.t.Fatal("timed out waiting for a message")
		return nil
	}
}

// diagnostics waits for the publishDiagnostics notification for uri at
// version.
func (c *testClient) diagnostics(uri string, version int) PublishDiagnosticsParams {
	c.t.Helper()
	for {
		var msg *JSONRPCMessage
		if len(c.queue) > 0 {
			msg, c.queue = c.queue[0], c.queue[1:]
		} else {
			msg = c.next()
		}
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params PublishDiagnosticsParams
		require.NoError(c.t, json.Unmarshal(msg.Params, &params))
		if params.URI != uri {
			continue
		}
		if params.Version == nil || *params.Version == version {
			return params
		}
	}
}

func (c *testClient) initialize() {
	c.t.Helper()
	resp := c.request("initialize", map[string]any{"processId": 1, "rootUri": "file:///work"})
	require.Nil(c.t, resp.Error)
	c.notify("initialized", map[string]any{})
}

func (c *testClient) open(uri, text string) {
	c.notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{"uri": uri, "languageId": "surql", "version": 1, "text": text},
	})
}

func (c *testClient) waitExit() error {
	c.t.Helper()
	select {
	case err := <-c.done:
		c.done <- err // for cleanup
		return err
	case <-time.After(messageTimeout):
		c.t.Fatal("server did not exit")
		return nil
	}
}

func TestServer_Lifecycle(t *testing.T) {
	c := startServer(t)

	resp := c.request("initialize", map[string]any{"processId": 1, "clientInfo": map[string]any{"name": "test"}})
	require.Nil(t, resp.Error)

	var result InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, ServerName, result.ServerInfo.Name)
	require.NotNil(t, result.Capabilities.TextDocumentSync)
	assert.Equal(t, TextDocumentSyncKindFull, result.Capabilities.TextDocumentSync.Change)
	assert.True(t, result.Capabilities.HoverProvider)
	assert.Contains(t, result.Capabilities.CompletionProvider.TriggerCharacters, ".")

	resp = c.request("shutdown", nil)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "null", string(resp.Result))

	resp = c.request("textDocument/completion", map[string]any{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)

	c.notify("exit", nil)
	assert.NoError(t, c.waitExit())
}

func TestServer_ExitWithoutShutdown(t *testing.T) {
	c := startServer(t)
	c.initialize()

	c.notify("exit", nil)
	assert.ErrorIs(t, c.waitExit(), ErrExitWithoutShutdown)
}

func TestServer_RequestErrors(t *testing.T) {
	c := startServer(t)

	resp := c.request("textDocument/hover", map[string]any{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeServerNotInitialized, resp.Error.Code, "before initialize")

	c.initialize()

	resp = c.request("textDocument/definition", map[string]any{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)

	resp = c.request("textDocument/completion", "not an object")
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestServer_PublishDiagnostics(t *testing.T) {
	c := startServer(t)
	c.initialize()

	uri := "file:///work/query.surql"
	// The emoji is two UTF-16 units but four bytes.
	c.open(uri, "return '😀'; select * from nobody")

	params := c.diagnostics(uri, 1)
	require.Len(t, params.Diagnostics, 1)
	d := params.Diagnostics[0]
	assert.Equal(t, "Table 'nobody' not found", d.Message)
	assert.Equal(t, DiagnosticSeverityError, d.Severity)
	assert.Equal(t, diagnosticSource, d.Source)
	assert.Equal(t, Range{Start: Position{0, 27}, End: Position{0, 33}}, d.Range)

	c.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 2},
		"contentChanges": []map[string]any{{"text": "select oops"}, {"text": "select * from person"}},
	})
	params = c.diagnostics(uri, 2)
	assert.Empty(t, params.Diagnostics)

	c.notify("textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": uri}})
	params = c.diagnostics(uri, 0)
	assert.Nil(t, params.Version)
	assert.Empty(t, params.Diagnostics)
}

func TestServer_CompletionAndHover(t *testing.T) {
	c := startServer(t)
	c.initialize()

	uri := "file:///work/query.surql"
	c.open(uri, "select  from person")
	c.diagnostics(uri, 1)

	resp := c.request("textDocument/completion", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": 0, "character": 7},
	})
	require.Nil(t, resp.Error)
	var list CompletionList
	require.NoError(t, json.Unmarshal(resp.Result, &list))
	assert.Contains(t, labels(list.Items), "name")

	c.notify("textDocument/didChange", map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 2},
		"contentChanges": []map[string]any{{"text": "select age from person"}},
	})
	c.diagnostics(uri, 2)

	resp = c.request("textDocument/hover", map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": 0, "character": 8},
	})
	require.Nil(t, resp.Error)
	var hover Hover
	require.NoError(t, json.Unmarshal(resp.Result, &hover))
	assert.Contains(t, hover.Contents.Value, "age: option<int>")
	require.NotNil(t, hover.Range)
	assert.Equal(t, Range{Start: Position{0, 7}, End: Position{0, 10}}, *hover.Range)
}

func TestServer_MalformedMessage(t *testing.T) {
	c := startServer(t)

	_, err := fmt.Fprint(c.in, "Content-Length: 5\r\n\r\n{oops")
	require.NoError(t, err)

	msg := c.next()
	require.NotNil(t, msg.Error)
	assert.Equal(t, CodeParseError, msg.Error.Code)

	// The connection survives.
	c.initialize()
}

func TestServer_DiscardsSupersededPass(t *testing.T) {
	var out bytes.Buffer
	logger := testutil.NewTestLogger(t)
	srv := NewServer(strings.NewReader(""), &out, analysis.New(testTables(), analysis.DefaultOptions(), logger), logger)

	uri := "file:///work/query.surql"
	old := srv.documents.Open(uri, "select * from nobody", 1)
	srv.documents.Update(uri, "select * from person", 2)

	srv.runPass(old)
	assert.Empty(t, out.String(), "a pass for version 1 must not publish after version 2 arrived")

	srv.runPass(srv.documents.Get(uri))
	assert.Contains(t, out.String(), "publishDiagnostics")

	out.Reset()
	srv.documents.Close(uri)
	srv.runPass(old)
	assert.Empty(t, out.String(), "closed documents are not published")
}
