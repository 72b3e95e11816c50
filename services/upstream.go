// ABOUTME: HTTP client for the upstream credential REST API
// ABOUTME: Handles TLS options, optional SSH+SOCKS5 tunneling, and bearer auth

package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// Upstream is the single HTTP boundary to the credential API. The gateway,
// the domain proxies, and the dashboard aggregator all share one instance so
// timeout and proxy settings are applied uniformly.
type Upstream struct {
	baseURL string
	client  *http.Client
}

// UpstreamOptions configures the upstream client.
type UpstreamOptions struct {
	Timeout           time.Duration
	SkipSSLValidation bool
	AllProxy          string // ssh+socks5://user@host:port?private-key=/path
}

func NewUpstream(baseURL string, opts UpstreamOptions) *Upstream {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.SkipSSLValidation},
	}

	if opts.AllProxy != "" {
		if dialContext := createSOCKS5DialContextFunc(opts.AllProxy); dialContext != nil {
			transport.DialContext = dialContext
			slog.Info("Upstream API traffic tunneled through SOCKS5 proxy")
		}
	}

	return &Upstream{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
	}
}

// BaseURL returns the configured upstream origin.
func (u *Upstream) BaseURL() string {
	return u.baseURL
}

// Do performs a single request against the upstream API. Calls are one-shot:
// no retry, no backoff. A non-empty token is attached as a bearer credential.
// The caller owns the response body.
func (u *Upstream) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, contentType, token string) (*http.Response, error) {
	target := u.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request %s %s: %w", method, path, err)
	}
	return resp, nil
}

// createSOCKS5DialContextFunc creates a dial function for SSH+SOCKS5 proxy connections.
// Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
func createSOCKS5DialContextFunc(allProxy string) func(ctx context.Context, network, address string) (net.Conn, error) {
	// Strip ssh+ prefix if present
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		slog.Error("Failed to parse ALL_PROXY URL", "error", err)
		return nil
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		slog.Error("Failed to parse ALL_PROXY query params", "error", err)
		return nil
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	proxySSHKeyPath := queryMap.Get("private-key")
	if proxySSHKeyPath == "" {
		slog.Error("ALL_PROXY missing required 'private-key' query param")
		return nil
	}

	proxySSHKey, err := os.ReadFile(proxySSHKeyPath)
	if err != nil {
		slog.Error("Failed to read SSH private key", "path", proxySSHKeyPath, "error", err)
		return nil
	}

	// Create the socks5 proxy with host key callback
	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(proxySSHKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}
}
