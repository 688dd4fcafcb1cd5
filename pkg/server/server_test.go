package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fieldset/pkg/formdef"
	"github.com/vango-dev/fieldset/pkg/store"
)

const serverTestDoc = `
form: signup
fields:
  - name: email
    label: Email
    autofocus: true
    required:
      message: Email is required
    pattern:
      value: '^\S+@\S+$'
      message: Invalid email
  - name: age
    kind: number
    coerce: number
    initial: "18"
    max:
      value: 130
      message: Too old
`

func wsURL(t *testing.T, baseURL, path string) string {
	t.Helper()
	if !strings.HasPrefix(baseURL, "http") {
		t.Fatalf("unexpected base URL: %q", baseURL)
	}
	return "ws" + strings.TrimPrefix(baseURL, "http") + path
}

func dialWS(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial(%q) failed: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame failed: %v", err)
	}
	var frame Frame
	if err := json.Unmarshal(msg, &frame); err != nil {
		t.Fatalf("decode frame failed: %v", err)
	}
	return frame
}

// waitForOp reads frames until one carries the wanted op type.
func waitForOp(t *testing.T, conn *websocket.Conn, want OpType) Op {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frame := readFrame(t, conn)
		for _, op := range frame.Ops {
			if op.Op == want {
				return op
			}
		}
	}
	t.Fatalf("no %q op before deadline", want)
	return Op{}
}

// expectNoFrame asserts that nothing arrives within the window. The
// read deadline poisons the connection, so this must be the last read
// on it.
func expectNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, msg, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("unexpected frame: %s", msg)
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("read failed with %v, want timeout", err)
	}
}

func sendMessage(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("encode message failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write message failed: %v", err)
	}
}

func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server, *store.MemoryStore) {
	t.Helper()

	def, err := formdef.Parse([]byte(serverTestDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	srv, err := New(def, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	st := store.NewMemoryStore()
	srv.SetStore(st, "memory")

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Sessions().Shutdown()
		ts.Close()
	})

	return srv, ts, st
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNilDefinition) {
		t.Errorf("err = %v, want ErrNilDefinition", err)
	}
	if _, err := New(&formdef.Definition{}, nil); err == nil {
		t.Error("expected a validation error for an empty definition")
	}
}

func TestServer_IndexPage(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	for _, want := range []string{
		`id="fieldset-form"`,
		`name="email"`,
		`name="age"`,
		`src="/client.js"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %s", want)
		}
	}
}

func TestServer_Healthz(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()

	var health struct {
		Status   string `json:"status"`
		Form     string `json:"form"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want %q", health.Status, "ok")
	}
	if health.Form != "signup" {
		t.Errorf("form = %q, want %q", health.Form, "signup")
	}
	if health.Sessions != 0 {
		t.Errorf("sessions = %d, want 0", health.Sessions)
	}
}

func TestServer_ClientScript(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/client.js")
	if err != nil {
		t.Fatalf("GET /client.js failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag header")
	}
	if !strings.Contains(string(body), "fieldset-form") {
		t.Error("script should reference the form element")
	}

	// A conditional request with the returned ETag revalidates.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/client.js", nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotModified {
		t.Errorf("status = %d, want 304", resp2.StatusCode)
	}
}

func TestServer_WebSocketLifecycle(t *testing.T) {
	srv, ts, st := newTestServer(t, nil)

	conn := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)

	// The hello frame announces the session and carries the mount ops
	// in definition order: autofocus first, then the seeded initial.
	hello := readFrame(t, conn)
	if len(hello.Ops) != 3 {
		t.Fatalf("hello ops = %+v, want 3 ops", hello.Ops)
	}
	if hello.Ops[0].Op != OpHello || hello.Ops[0].Session == "" || hello.Ops[0].Form != "signup" {
		t.Errorf("ops[0] = %+v, want hello for signup", hello.Ops[0])
	}
	if hello.Ops[1].Op != OpFocus || hello.Ops[1].Field != "email" {
		t.Errorf("ops[1] = %+v, want focus on email", hello.Ops[1])
	}
	if hello.Ops[2].Op != OpValue || hello.Ops[2].Field != "age" || hello.Ops[2].Value != "18" {
		t.Errorf("ops[2] = %+v, want value 18 on age", hello.Ops[2])
	}
	if srv.Sessions().Count() != 1 {
		t.Errorf("Count = %d, want 1", srv.Sessions().Count())
	}

	// An invalid change pushes the error state and refocuses the field.
	sendMessage(t, conn, ClientMessage{Type: MessageChange, Field: "email", Value: "nope"})
	errOp := waitForOp(t, conn, OpErrors)
	if errOp.Errors["email"] != "Invalid email" {
		t.Errorf("errors = %v, want Invalid email", errOp.Errors)
	}

	// Submit is not gated on the error state: the submission is stored
	// with whatever is in the value store.
	sendMessage(t, conn, ClientMessage{Type: MessageChange, Field: "age", Value: "21"})
	sendMessage(t, conn, ClientMessage{Type: MessageSubmit})
	ack := waitForOp(t, conn, OpSubmitted)
	if ack.ID == "" {
		t.Error("submitted op should carry the submission ID")
	}
	if ack.Message != "" {
		t.Errorf("submitted op message = %q, want empty", ack.Message)
	}

	subs, err := st.List(context.Background(), "signup", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("submissions = %d, want 1", len(subs))
	}
	if got := subs[0].Values.String("email"); got != "nope" {
		t.Errorf("stored email = %q, want the invalid value", got)
	}
	if got := subs[0].Values.Float("age"); got != 21 {
		t.Errorf("stored age = %v, want 21", got)
	}
}

func TestServer_ValidChangeIsSilent(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	conn := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	readFrame(t, conn) // hello

	// A valid change on a field nothing watches updates the value store
	// without producing a frame.
	sendMessage(t, conn, ClientMessage{Type: MessageChange, Field: "age", Value: "25"})
	expectNoFrame(t, conn)
}

func TestServer_UnchangedErrorIsSilent(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	conn := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	readFrame(t, conn) // hello

	sendMessage(t, conn, ClientMessage{Type: MessageChange, Field: "email", Value: "nope"})
	waitForOp(t, conn, OpErrors)

	// A second failure with the same message writes nothing, so no
	// frame goes out.
	sendMessage(t, conn, ClientMessage{Type: MessageChange, Field: "email", Value: "still-wrong"})
	expectNoFrame(t, conn)
}

func TestServer_MaxSessionsRejectsUpgrade(t *testing.T) {
	_, ts, _ := newTestServer(t, &Config{MaxSessions: 1})

	first := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	readFrame(t, first) // hello

	second := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := second.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		t.Errorf("err = %v, want close %d", err, websocket.CloseTryAgainLater)
	}
}

func TestServer_DisconnectRemovesSession(t *testing.T) {
	srv, ts, _ := newTestServer(t, nil)

	conn := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	readFrame(t, conn) // hello
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Sessions().Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if srv.Sessions().Count() != 0 {
		t.Error("session should be removed after disconnect")
	}
}

func TestServer_BroadcastReachesClient(t *testing.T) {
	srv, ts, _ := newTestServer(t, nil)

	conn := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	readFrame(t, conn) // hello

	srv.Sessions().Broadcast(Op{Op: OpReload})
	waitForOp(t, conn, OpReload)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	// Metrics register lazily with the first session.
	conn := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	readFrame(t, conn) // hello

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "fieldset_") {
		t.Error("metrics output should contain the fieldset namespace")
	}
}

func TestServer_DevReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.yaml")
	if err := os.WriteFile(path, []byte(serverTestDoc), 0o644); err != nil {
		t.Fatalf("write definition failed: %v", err)
	}

	srv, ts, _ := newTestServer(t, &Config{DevMode: true})
	initial := srv.Definition()
	srv.SetDefinitionFile(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.watchDefinition(ctx); err != nil {
		t.Fatalf("watchDefinition failed: %v", err)
	}

	// The watcher emits the current file contents first; wait for that
	// swap so the reload below is the only broadcast the client sees.
	deadline := time.Now().Add(2 * time.Second)
	for srv.Definition() == initial && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if srv.Definition() == initial {
		t.Fatal("initial definition was not emitted")
	}

	conn := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	readFrame(t, conn) // hello

	changed := strings.Replace(serverTestDoc, "form: signup", "form: signup2", 1)
	if err := os.WriteFile(path, []byte(changed), 0o644); err != nil {
		t.Fatalf("rewrite definition failed: %v", err)
	}

	waitForOp(t, conn, OpReload)

	deadline = time.Now().Add(2 * time.Second)
	for srv.Definition().Form != "signup2" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := srv.Definition().Form; got != "signup2" {
		t.Errorf("Form = %q, want %q", got, "signup2")
	}
}

func TestServer_Shutdown(t *testing.T) {
	srv, ts, _ := newTestServer(t, nil)

	conn := dialWS(t, wsURL(t, ts.URL, "/ws"), nil)
	readFrame(t, conn) // hello

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if srv.Sessions().Count() != 0 {
		t.Errorf("Count = %d, want 0", srv.Sessions().Count())
	}

	// The client observes the close handshake.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("read after shutdown should fail")
	}
}
