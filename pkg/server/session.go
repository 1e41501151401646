package server

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/addrnav-dev/addrnav/pkg/middleware"
	"github.com/addrnav-dev/addrnav/pkg/rewrite"
	"github.com/addrnav-dev/addrnav/pkg/session"
	"github.com/addrnav-dev/addrnav/pkg/wire"
)

// Session is one live connection. It mirrors the client's address bar
// and implements rewrite.History over the wire: Push and Replace
// enqueue frames the thin client applies with the History API.
type Session struct {
	id      string
	conn    *websocket.Conn
	cfg     *Config
	logger  *slog.Logger
	metrics *middleware.Metrics

	rewriter *rewrite.Rewriter

	send      chan wire.Frame
	done      chan struct{}
	closeOnce sync.Once
	onClose   func(*Session)

	// histMu serializes rewrite operations; mu guards the mirror.
	histMu sync.Mutex
	mu     sync.Mutex
	url    string
	hash   string
}

func newSession(conn *websocket.Conn, cfg *Config, logger *slog.Logger, metrics *middleware.Metrics, onClose func(*Session)) *Session {
	s := &Session{
		id:      session.NewID(),
		conn:    conn,
		cfg:     cfg,
		metrics: metrics,
		send:    make(chan wire.Frame, cfg.SendBuffer),
		done:    make(chan struct{}),
		onClose: onClose,
	}
	s.logger = logger.With("session", s.id)
	s.rewriter = rewrite.NewRewriter(s, cfg.BasePath)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CurrentURL returns the mirrored address-bar URL.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// CurrentHash returns the mirrored hash fragment, leading "#"
// included, or "".
func (s *Session) CurrentHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hash
}

// Push sends a url_push frame and advances the mirror.
func (s *Session) Push(url string) {
	s.setMirror(url)
	s.enqueue(wire.NewURLPush(url))
	s.metrics.RecordPush()
}

// Replace sends a url_replace frame and advances the mirror.
func (s *Session) Replace(url string) {
	s.setMirror(url)
	s.enqueue(wire.NewURLReplace(url))
	s.metrics.RecordReplace()
}

// Rewrite rewrites this session's address bar. It applies the full
// assembly contract: base-path prefixing, query params, fragment
// preservation, and the no-op guard.
func (s *Session) Rewrite(targetPath string, opts ...rewrite.Option) {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	before := s.CurrentURL()
	s.rewriter.Rewrite(targetPath, opts...)
	if s.CurrentURL() == before {
		s.metrics.RecordNoop()
	}
}

// Navigate asks the client for a full page navigation. The mirror is
// left alone: the client reports its location in the next hello.
func (s *Session) Navigate(url string) {
	s.enqueue(wire.NewNavigate(url))
}

// SetHash sets only the hash fragment. An empty value clears it.
func (s *Session) SetHash(hash string) {
	if hash != "" && !strings.HasPrefix(hash, "#") {
		hash = "#" + hash
	}

	s.mu.Lock()
	base := s.url
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	s.url = base + hash
	s.hash = hash
	s.mu.Unlock()

	s.enqueue(wire.NewHash(hash))
}

// setMirror records a full URL, deriving the fragment.
func (s *Session) setMirror(url string) {
	hash := ""
	if i := strings.IndexByte(url, '#'); i >= 0 {
		hash = url[i:]
	}

	s.mu.Lock()
	s.url = url
	s.hash = hash
	s.mu.Unlock()
}

// enqueue queues an outbound frame. A session whose queue is full is
// too far behind to stay consistent, so it is dropped.
func (s *Session) enqueue(f wire.Frame) {
	select {
	case s.send <- f:
	case <-s.done:
	default:
		s.logger.Warn("send queue full, dropping session")
		s.metrics.RecordWSError("backpressure")
		s.Close()
	}
}

// Close tears the connection down. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
		s.metrics.SessionEnded()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

// readLoop consumes inbound frames until the connection drops.
func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(wire.MaxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "err", err)
				s.metrics.RecordWSError("read")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		frame, err := wire.Decode(msg)
		if err != nil {
			s.logger.Error("frame decode error", "err", err)
			s.metrics.RecordWSError("decode")
			continue
		}

		switch frame.Op {
		case wire.OpHello:
			s.setMirror(frame.URL)
			s.logger.Debug("hello", "url", frame.URL, "base", frame.Base)

		case wire.OpLocation:
			s.setMirror(frame.URL)
			s.logger.Debug("location", "url", frame.URL)

		default:
			s.logger.Warn("unexpected op from client", "op", frame.Op)
			s.metrics.RecordWSError("unexpected_op")
		}
	}
}

// writeLoop drains the send queue and keeps the connection alive.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	defer s.Close()

	for {
		select {
		case <-s.done:
			return

		case frame := <-s.send:
			data, err := wire.Encode(frame)
			if err != nil {
				s.logger.Error("frame encode error", "err", err)
				s.metrics.RecordWSError("encode")
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Error("write error", "err", err)
				s.metrics.RecordWSError("write")
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
