package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/linkcrawl/internal/log"
)

const (
	// DefaultTimeout bounds a single request, body included.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodySize is the number of body bytes kept per page.
	DefaultMaxBodySize int64 = 10 << 20

	// drainLimit caps how much of a non-200 body is read before closing,
	// so the connection can be reused.
	drainLimit = 4 << 10
)

// ErrInvalidProxyAddress is returned by New for a proxy address that is
// not host:port.
var ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

// Fetcher issues GET requests and classifies their outcome.
type Fetcher struct {
	client      *http.Client
	transport   *http.Transport
	logger      log.Logger
	limiter     RateLimiter
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	proxyAddr   string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLogger sets the logger for fetch events.
func WithLogger(logger log.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRateLimiter sets the limiter consulted before each request.
func WithRateLimiter(limiter RateLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = limiter
	}
}

// WithProxy routes requests through the SOCKS5 proxy at addr (host:port).
// An empty addr means a direct connection.
func WithProxy(addr string) Option {
	return func(f *Fetcher) {
		f.proxyAddr = addr
	}
}

// WithUserAgent sets the User-Agent header. Empty keeps Go's default.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets how many body bytes are kept. Non-positive values are ignored.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithHTTPClient replaces the client built by New. The proxy setting is
// ignored when a client is supplied.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// New creates a Fetcher with its own connection pool.
func New(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		logger:      log.Nop(),
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client != nil {
		return f, nil
	}

	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not *http.Transport")
	}
	transport = transport.Clone()

	if f.proxyAddr != "" {
		dialer, err := newSOCKS5Dialer(f.proxyAddr)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dialer.DialContext
	}

	f.transport = transport
	f.client = &http.Client{
		Transport: transport,
		Timeout:   f.timeout,
	}
	return f, nil
}

// newSOCKS5Dialer validates addr and builds a context-aware SOCKS5 dialer.
func newSOCKS5Dialer(addr string) (proxy.ContextDialer, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}

	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("SOCKS5 dialer does not support contexts")
	}
	return contextDialer, nil
}

// Fetch performs a GET of rawURL.
// Only status 200 is a success; every other status is an HTTPError and
// every failure to get a response is a TransportError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Outcome {
	f.logger.Info("attempting fetch", "url", rawURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return f.transportFailure(rawURL, err)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return f.transportFailure(rawURL, fmt.Errorf("rate limiter: %w", err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return f.transportFailure(rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return f.transportFailure(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit)) //nolint:errcheck // best effort
		f.logger.Warning("received response", "url", rawURL, "status", resp.StatusCode)
		return HTTPError(rawURL, resp.StatusCode)
	}

	// Read one byte past the limit to tell a body of exactly maxBodySize
	// bytes from a longer one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return f.transportFailure(rawURL, fmt.Errorf("failed to read body: %w", err))
	}
	truncated := int64(len(body)) > f.maxBodySize
	if truncated {
		body = body[:f.maxBodySize]
	}
	f.logger.Success("received response", "url", rawURL, "status", resp.StatusCode)

	return Success(rawURL, resp.Header.Get("Content-Type"), body, truncated)
}

func (f *Fetcher) transportFailure(rawURL string, err error) Outcome {
	f.logger.Error("fetch failed", "url", rawURL, "error", err)
	return TransportError(rawURL, err)
}

// Close releases idle connections of the pool.
func (f *Fetcher) Close() error {
	if f.transport != nil {
		f.transport.CloseIdleConnections()
		return nil
	}
	f.client.CloseIdleConnections()
	return nil
}
