package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/pscheid92/socialsent/internal/domain"
	apperrors "github.com/pscheid92/socialsent/internal/platform/errors"
)

// Socket deadlines use wall time; the injected clock only drives pings.
const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	maxStreamMessage  = 64 << 10
	messageBufferSize = 16
)

// streamRequest is one text to analyze over the socket. ID is echoed back so
// clients can pipeline requests.
type streamRequest struct {
	ID   string  `json:"id,omitempty"`
	Text *string `json:"text"`
}

type streamResponse struct {
	ID     string                  `json:"id,omitempty"`
	Result *domain.SentimentResult `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
	Type   apperrors.ErrorType     `json:"type,omitempty"`
}

// handleStream upgrades to a WebSocket and answers each text message with its
// analysis, in order, until the client disconnects.
func (s *Server) handleStream(c echo.Context) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     newCheckOrigin(s.config.IsDevelopment()),
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		slog.DebugContext(c.Request().Context(), "WebSocket upgrade failed", "error", err)
		return nil
	}

	s.wsMetrics.ActiveConnections.Inc()
	defer s.wsMetrics.ActiveConnections.Dec()

	ctx := c.Request().Context()
	// Frames on one socket share the per-client budget of the HTTP API.
	limiter := rate.NewLimiter(rate.Limit(s.config.RateLimitRPS), s.config.RateLimitBurst)
	w := newStreamWriter(conn, s)
	defer w.stop()

	conn.SetReadLimit(maxStreamMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongDeadline))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.DebugContext(ctx, "WebSocket closed unexpectedly", "error", err)
			}
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongDeadline))

		if !w.send(s.answer(c, data, limiter)) {
			return nil
		}
	}
}

func (s *Server) answer(c echo.Context, data []byte, limiter *rate.Limiter) streamResponse {
	var req streamRequest
	err := json.Unmarshal(data, &req)

	if !limiter.Allow() {
		s.wsMetrics.MessagesHandled.WithLabelValues("rate_limited").Inc()
		return streamResponse{
			ID:    req.ID,
			Error: "rate limit exceeded",
			Type:  apperrors.TypeValidation,
		}
	}

	if err != nil || req.Text == nil {
		s.wsMetrics.MessagesHandled.WithLabelValues("invalid").Inc()
		return streamResponse{
			ID:    req.ID,
			Error: "message must be a JSON object with a text field",
			Type:  apperrors.TypeValidation,
		}
	}

	analysis, err := s.app.Analyze(c.Request().Context(), *req.Text)
	if err != nil {
		s.wsMetrics.MessagesHandled.WithLabelValues("error").Inc()
		structured := toStructuredError(err)
		logError(c, structured)
		return streamResponse{ID: req.ID, Error: structured.Message, Type: structured.Type}
	}

	s.wsMetrics.MessagesHandled.WithLabelValues("success").Inc()
	return streamResponse{ID: req.ID, Result: &analysis.Result}
}

// streamWriter owns all writes to the connection: responses and keepalive pings.
type streamWriter struct {
	conn     *websocket.Conn
	server   *Server
	messages chan streamResponse
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newStreamWriter(conn *websocket.Conn, s *Server) *streamWriter {
	w := &streamWriter{
		conn:     conn,
		server:   s,
		messages: make(chan streamResponse, messageBufferSize),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *streamWriter) run() {
	defer w.wg.Done()

	ticker := w.server.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-w.messages:
			if err := w.write(msg); err != nil {
				w.closeDone()
				return
			}
		case <-ticker.Chan():
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				w.closeDone()
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *streamWriter) write(msg streamResponse) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := w.conn.WriteJSON(msg); err != nil {
		if !errors.Is(err, websocket.ErrCloseSent) {
			slog.Debug("WebSocket write failed", "error", err)
		}
		return err
	}
	return nil
}

// send queues a response. It reports false once the writer has stopped.
func (w *streamWriter) send(msg streamResponse) bool {
	select {
	case w.messages <- msg:
		return true
	case <-w.done:
		return false
	}
}

func (w *streamWriter) closeDone() {
	w.stopOnce.Do(func() { close(w.done) })
}

// stop ends the writer and closes the connection.
func (w *streamWriter) stop() {
	w.closeDone()
	w.wg.Wait()
	_ = w.conn.Close()
}
