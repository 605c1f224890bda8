package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/structout-go/middleware"
)

// DefaultURL is the hosted realtime endpoint.
const DefaultURL = "wss://api.openai.com/v1/realtime"

// Option configures a realtime session.
type Option func(*dialConfig)

type dialConfig struct {
	url          string
	model        string
	apiKey       string
	dialer       *websocket.Dialer
	header       http.Header
	readLimit    int64
	pingInterval time.Duration
	logger       middleware.Logger
}

// WithURL sets the endpoint URL. Defaults to the hosted API.
func WithURL(u string) Option {
	return func(c *dialConfig) {
		c.url = u
	}
}

// WithModel selects the model for the session.
func WithModel(model string) Option {
	return func(c *dialConfig) {
		c.model = model
	}
}

// WithAPIKey sets the bearer token sent during the handshake.
func WithAPIKey(key string) Option {
	return func(c *dialConfig) {
		c.apiKey = key
	}
}

// WithDialer sets a custom websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *dialConfig) {
		c.dialer = d
	}
}

// WithHeader adds a header to the handshake request.
func WithHeader(key, value string) Option {
	return func(c *dialConfig) {
		c.header.Set(key, value)
	}
}

// WithReadLimit caps the size of a single incoming message in bytes.
func WithReadLimit(n int64) Option {
	return func(c *dialConfig) {
		c.readLimit = n
	}
}

// WithPingInterval sets how often keepalive pings are sent.
// Zero disables pings.
func WithPingInterval(d time.Duration) Option {
	return func(c *dialConfig) {
		c.pingInterval = d
	}
}

// WithLogger sets the logger for session events.
func WithLogger(l middleware.Logger) Option {
	return func(c *dialConfig) {
		c.logger = l
	}
}

// Dial opens a realtime session.
func Dial(ctx context.Context, opts ...Option) (*Session, error) {
	cfg := &dialConfig{
		url:          DefaultURL,
		dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		header:       make(http.Header),
		readLimit:    1 << 20,
		pingInterval: 30 * time.Second,
		logger:       middleware.NopLogger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	u, err := url.Parse(cfg.url)
	if err != nil {
		return nil, fmt.Errorf("parse realtime url: %w", err)
	}
	if cfg.model != "" {
		q := u.Query()
		q.Set("model", cfg.model)
		u.RawQuery = q.Encode()
	}

	header := cfg.header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	if cfg.apiKey != "" {
		header.Set("Authorization", "Bearer "+cfg.apiKey)
	}

	conn, resp, err := cfg.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("realtime dial: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	conn.SetReadLimit(cfg.readLimit)

	s := newSession(conn, cfg)
	go s.readLoop()
	if cfg.pingInterval > 0 {
		go s.pingLoop()
	}
	return s, nil
}
