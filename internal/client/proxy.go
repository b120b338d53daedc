// ABOUTME: SSH+SOCKS5 tunnel support for reaching the backend through a jumpbox
// ABOUTME: Parses ssh+socks5://user@host:port?private-key=/path URLs into a dialer

package client

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// DialContextFunc matches http.Transport.DialContext.
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// NewSOCKS5DialContext creates a dial function for SSH+SOCKS5 proxy connections.
// Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
// The SSH tunnel is established lazily on first dial.
func NewSOCKS5DialContext(allProxy string) (DialContextFunc, error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("unsupported proxy scheme %q (want ssh+socks5)", proxyURL.Scheme)
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("proxy URL is missing a host")
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy query: %w", err)
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := queryMap.Get("private-key")
	if keyPath == "" {
		return nil, fmt.Errorf("proxy URL missing required 'private-key' query param")
	}

	keyPath, err = validateKeyPath(keyPath)
	if err != nil {
		return nil, err
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key %s: %w", keyPath, err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.Mutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.Lock()
		if dialer == nil {
			d, err := socks5Proxy.Dialer(username, string(key), proxyURL.Host)
			if err != nil {
				mut.Unlock()
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = d
		}
		dial := dialer
		mut.Unlock()

		return dial(network, address)
	}, nil
}

// validateKeyPath rejects traversal segments and anything that is not a regular file.
func validateKeyPath(p string) (string, error) {
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", fmt.Errorf("invalid SSH key path: %w", err)
	}
	for _, seg := range strings.Split(filepath.ToSlash(decoded), "/") {
		if seg == ".." {
			return "", fmt.Errorf("SSH key path must not contain '..': %s", p)
		}
	}

	clean := filepath.Clean(decoded)
	info, err := os.Stat(clean)
	if err != nil {
		return "", fmt.Errorf("SSH key not found: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("SSH key path is not a regular file: %s", clean)
	}
	return clean, nil
}

// ProxyTransport returns a copy of the default transport that dials through allProxy.
func ProxyTransport(allProxy string) (*http.Transport, error) {
	dial, err := NewSOCKS5DialContext(allProxy)
	if err != nil {
		return nil, err
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = dial
	return t, nil
}
