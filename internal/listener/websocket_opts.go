package listener

type ListenerOpt func(*WebsocketListener)

// WithPath sets the URL path that accepts upgrades.
func WithPath(path string) ListenerOpt {
	return func(l *WebsocketListener) {
		l.path = path
	}
}

// WithAllowedOrigins restricts upgrades to the given Origin headers.
// An empty list allows every origin.
func WithAllowedOrigins(origins []string) ListenerOpt {
	return func(l *WebsocketListener) {
		l.origins = origins
	}
}

// WithReadLimit caps the size of a single inbound frame.
func WithReadLimit(n int64) ListenerOpt {
	return func(l *WebsocketListener) {
		l.readLimit = n
	}
}

// WithMetricsEndpoint serves m at path on the same HTTP server.
func WithMetricsEndpoint(path string, m *Metrics) ListenerOpt {
	return func(l *WebsocketListener) {
		l.metricsPath = path
		l.metrics = m
	}
}
