package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/addrnav-dev/addrnav/pkg/middleware"
	"github.com/addrnav-dev/addrnav/pkg/rewrite"
	"github.com/addrnav-dev/addrnav/pkg/wire"
)

func testMetrics() *middleware.Metrics {
	return middleware.NewMetrics(middleware.WithRegistry(prometheus.NewRegistry()))
}

type testEnv struct {
	server   *Server
	httpSrv  *httptest.Server
	sessions chan *Session
}

func newTestEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()

	sessions := make(chan *Session, 1)
	srv := New(cfg,
		WithMetrics(testMetrics()),
		OnSessionStart(func(s *Session) {
			select {
			case sessions <- s:
			default:
			}
		}),
	)
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)
	return &testEnv{server: srv, httpSrv: httpSrv, sessions: sessions}
}

// dial connects, sends the hello, and returns the conn plus the
// server-side session once its mirror reflects the hello.
func (e *testEnv) dial(t *testing.T, helloURL string) (*websocket.Conn, *Session) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(e.httpSrv.URL, "http") + e.server.BasePath() + "/_addrnav/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%q): %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	var sess *Session
	select {
	case sess = <-e.sessions:
	case <-time.After(2 * time.Second):
		t.Fatal("no session started")
	}

	writeFrame(t, conn, wire.Frame{Op: wire.OpHello, URL: helloURL, Hash: hashOf(helloURL)})
	waitFor(t, func() bool { return sess.CurrentURL() == helloURL })
	return conn, sess
}

func hashOf(url string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		return url[i:]
	}
	return ""
}

func writeFrame(t *testing.T, conn *websocket.Conn, f wire.Frame) {
	t.Helper()
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) wire.Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	f, err := wire.Decode(msg)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return f
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHelloSetsMirror(t *testing.T) {
	env := newTestEnv(t, nil)

	_, sess := env.dial(t, "/jobs?state=running#logs")
	if got := sess.CurrentURL(); got != "/jobs?state=running#logs" {
		t.Errorf("CurrentURL = %q", got)
	}
	if got := sess.CurrentHash(); got != "#logs" {
		t.Errorf("CurrentHash = %q", got)
	}
	if env.server.Sessions().Len() != 1 {
		t.Errorf("Len = %d, want 1", env.server.Sessions().Len())
	}
}

func TestRewritePushesFrame(t *testing.T) {
	env := newTestEnv(t, &Config{BasePath: "/hue"})

	conn, sess := env.dial(t, "/hue/jobs#top")
	sess.Rewrite("/metastore/tables", rewrite.WithParams(map[string]any{"db": "default"}))

	f := readFrame(t, conn)
	if f.Op != wire.OpURLPush {
		t.Fatalf("op = %q, want %q", f.Op, wire.OpURLPush)
	}
	want := "/hue/metastore/tables?db=default#top"
	if f.URL != want {
		t.Errorf("url = %q, want %q", f.URL, want)
	}
	if got := sess.CurrentURL(); got != want {
		t.Errorf("mirror = %q, want %q", got, want)
	}
}

func TestRewriteReplace(t *testing.T) {
	env := newTestEnv(t, nil)

	conn, sess := env.dial(t, "/jobs")
	sess.Rewrite("/jobs", rewrite.WithParams(map[string]any{"page": 2}), rewrite.WithReplace())

	f := readFrame(t, conn)
	if f.Op != wire.OpURLReplace {
		t.Fatalf("op = %q, want %q", f.Op, wire.OpURLReplace)
	}
	if f.URL != "/jobs?page=2" {
		t.Errorf("url = %q", f.URL)
	}
}

func TestRewriteNoopSendsNothing(t *testing.T) {
	env := newTestEnv(t, nil)

	conn, sess := env.dial(t, "/jobs?page=2")
	// Identical result: must not emit a frame.
	sess.Rewrite("/jobs", rewrite.WithParams(map[string]any{"page": 2}))
	// A differing rewrite must be the next frame the client sees.
	sess.Rewrite("/metastore")

	f := readFrame(t, conn)
	if f.Op != wire.OpURLPush || f.URL != "/metastore" {
		t.Errorf("frame = %+v, want push of /metastore", f)
	}
}

func TestLocationUpdatesMirror(t *testing.T) {
	env := newTestEnv(t, nil)

	conn, sess := env.dial(t, "/jobs")
	writeFrame(t, conn, wire.Frame{Op: wire.OpLocation, URL: "/jobs#details", Hash: "#details"})

	waitFor(t, func() bool { return sess.CurrentHash() == "#details" })
	if got := sess.CurrentURL(); got != "/jobs#details" {
		t.Errorf("CurrentURL = %q", got)
	}
}

func TestSetHash(t *testing.T) {
	env := newTestEnv(t, nil)

	conn, sess := env.dial(t, "/jobs?page=1#old")
	sess.SetHash("new")

	f := readFrame(t, conn)
	if f.Op != wire.OpHash || f.Hash != "#new" {
		t.Errorf("frame = %+v, want hash #new", f)
	}
	if got := sess.CurrentURL(); got != "/jobs?page=1#new" {
		t.Errorf("mirror = %q", got)
	}
}

func TestNavigateLeavesMirrorAlone(t *testing.T) {
	env := newTestEnv(t, nil)

	conn, sess := env.dial(t, "/jobs")
	sess.Navigate("/accounts/login")

	f := readFrame(t, conn)
	if f.Op != wire.OpNavigate || f.URL != "/accounts/login" {
		t.Errorf("frame = %+v", f)
	}
	if got := sess.CurrentURL(); got != "/jobs" {
		t.Errorf("mirror = %q, want unchanged /jobs", got)
	}
}

func TestBadFrameIgnored(t *testing.T) {
	env := newTestEnv(t, nil)

	conn, sess := env.dial(t, "/jobs")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}

	// The connection survives and keeps processing frames.
	writeFrame(t, conn, wire.Frame{Op: wire.OpLocation, URL: "/next"})
	waitFor(t, func() bool { return sess.CurrentURL() == "/next" })
}

func TestSessionRemovedOnClose(t *testing.T) {
	env := newTestEnv(t, nil)

	conn, _ := env.dial(t, "/jobs")
	_ = conn.Close()

	waitFor(t, func() bool { return env.server.Sessions().Len() == 0 })
}

func TestBroadcast(t *testing.T) {
	env := newTestEnv(t, nil)

	conn, _ := env.dial(t, "/jobs")
	env.server.Sessions().Broadcast(wire.NewNavigate("/maintenance"))

	f := readFrame(t, conn)
	if f.Op != wire.OpNavigate || f.URL != "/maintenance" {
		t.Errorf("frame = %+v", f)
	}
}

func TestThinClient(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.httpSrv.URL + "/_addrnav/client.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Errorf("content-type = %q", ct)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req, _ := http.NewRequest(http.MethodGet, env.httpSrv.URL+"/_addrnav/client.js", nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotModified {
		t.Errorf("revalidation status = %d, want 304", resp2.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.httpSrv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestWithMount(t *testing.T) {
	srv := New(&Config{BasePath: "/hue"},
		WithMetrics(testMetrics()),
		WithMount("/groups", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("groups"))
		})),
	)
	httpSrv := httptest.NewServer(srv)
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/hue/groups")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := (&Config{BasePath: "hue/"}).withDefaults()
	if cfg.Address == "" || cfg.PingInterval == 0 || cfg.SendBuffer == 0 {
		t.Error("defaults not applied")
	}
	if cfg.BasePath != "/hue" {
		t.Errorf("BasePath = %q, want /hue", cfg.BasePath)
	}

	var nilCfg *Config
	if got := nilCfg.withDefaults(); got.Address != DefaultConfig().Address {
		t.Errorf("nil config address = %q", got.Address)
	}
}
