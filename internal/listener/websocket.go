package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultPath         = "/ws"
	DefaultReadLimit    = 64 * 1024
	defaultWriteWait    = 10 * time.Second
	defaultShutdownWait = 5 * time.Second
)

// WebsocketListener accepts WebSocket upgrades and hands each connection to
// the ConnectionManager.
type WebsocketListener struct {
	addr        string
	path        string
	metricsPath string
	origins     []string
	readLimit   int64

	cm       *ConnectionManager
	metrics  *Metrics
	upgrader websocket.Upgrader

	wg    sync.WaitGroup
	ready chan struct{}
	bound net.Addr
}

func NewWebsocketListener(addr string, cm *ConnectionManager, opts ...ListenerOpt) *WebsocketListener {
	l := &WebsocketListener{
		addr:      addr,
		path:      DefaultPath,
		readLimit: DefaultReadLimit,
		cm:        cm,
		ready:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.upgrader = websocket.Upgrader{
		CheckOrigin: l.checkOrigin,
	}

	return l
}

// Start binds the listening socket and serves until ctx is canceled. A
// failure to bind is returned as a *BindError.
func (l *WebsocketListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return &BindError{Addr: l.addr, Err: err}
	}

	l.bound = ln.Addr()
	close(l.ready)
	slog.InfoContext(ctx, "listening for websocket connections", "addr", ln.Addr().String(), "path", l.path)

	srv := &http.Server{
		Handler:           l.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	done := make(chan struct{})
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownWait)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.WarnContext(ctx, "shutting down http server", "error", err)
			}
		case <-done:
		}
	}()

	err = srv.Serve(ln)
	close(done)
	<-shutdownDone
	// Hijacked websocket connections are not tracked by Shutdown.
	l.wg.Wait()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serving websocket on %s: %w", l.addr, err)
}

// Ready is closed once the socket is bound.
func (l *WebsocketListener) Ready() <-chan struct{} {
	return l.ready
}

// Addr returns the bound address. It is nil until Ready is closed.
func (l *WebsocketListener) Addr() net.Addr {
	select {
	case <-l.ready:
		return l.bound
	default:
		return nil
	}
}

// Handler returns the HTTP handler serving the upgrade endpoint and, when
// configured, the metrics endpoint.
func (l *WebsocketListener) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+l.path, l.handleUpgrade)
	if l.metrics != nil && l.metricsPath != "" {
		mux.Handle("GET "+l.metricsPath, l.metrics.Handler())
	}
	return mux
}

func (l *WebsocketListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	l.wg.Add(1)
	defer l.wg.Done()

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.WarnContext(r.Context(), "upgrading connection", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn.SetReadLimit(l.readLimit)
	l.cm.AcceptConnection(r.Context(), &websocketTransport{conn: conn})
}

func (l *WebsocketListener) checkOrigin(r *http.Request) bool {
	if len(l.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range l.origins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// websocketTransport adapts a gorilla connection to Transport.
type websocketTransport struct {
	conn *websocket.Conn
}

func (t *websocketTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *websocketTransport) WriteMessage(data []byte) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(defaultWriteWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *websocketTransport) Close() error {
	return t.conn.Close()
}

func (t *websocketTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}
