// Package zeroconf advertises an inventory backend over mDNS/DNS-SD and lets
// clients find one on the LAN when no backend URL is configured.
package zeroconf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the DNS-SD service type of an inventory backend.
	ServiceType = "_inventory._tcp"
	domain      = "local."
	defaultPath = "/api"
)

// ErrNotFound is returned by Discover when no backend answered in time.
var ErrNotFound = errors.New("zeroconf: no inventory backend found")

// Service manages mDNS service registration.
type Service struct {
	name    string // instance name, usually the hostname
	port    int
	version string
	path    string
	server  *zeroconf.Server
}

// New creates a Service that will advertise the API root path on port.
func New(name string, port int, version, path string) *Service {
	if path == "" {
		path = defaultPath
	}
	return &Service{
		name:    name,
		port:    port,
		version: version,
		path:    path,
	}
}

// TXT returns the TXT records the service publishes.
func (s *Service) TXT() []string {
	return []string{"version=" + s.version, "path=" + s.path}
}

// Start registers the mDNS service and blocks until ctx is cancelled, at which
// point it shuts down the server cleanly.
func (s *Service) Start(ctx context.Context) error {
	txt := s.TXT()
	server, err := zeroconf.Register(s.name, ServiceType, domain, s.port, txt, nil)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	s.server = server
	slog.Info("zeroconf: registered mDNS service",
		"name", s.name,
		"type", ServiceType,
		"port", s.port,
		"txt", txt,
	)

	<-ctx.Done()

	server.Shutdown()
	slog.Info("zeroconf: mDNS service unregistered")
	return nil
}

// Discover browses for an inventory backend and returns the base URL of the
// first one that answers within timeout.
func Discover(ctx context.Context, timeout time.Duration) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("zeroconf resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, ServiceType, domain, entries); err != nil {
		return "", fmt.Errorf("zeroconf browse: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return "", ErrNotFound
		case entry, ok := <-entries:
			if !ok {
				return "", ErrNotFound
			}
			if u, ok := EntryURL(entry); ok {
				slog.Info("zeroconf: discovered backend", "instance", entry.Instance, "url", u)
				return u, nil
			}
		}
	}
}

// EntryURL builds the backend base URL from a resolved service entry,
// preferring IPv4. It reports false when the entry carries no address.
func EntryURL(entry *zeroconf.ServiceEntry) (string, bool) {
	if entry == nil || entry.Port == 0 {
		return "", false
	}
	var ip net.IP
	switch {
	case len(entry.AddrIPv4) > 0:
		ip = entry.AddrIPv4[0]
	case len(entry.AddrIPv6) > 0:
		ip = entry.AddrIPv6[0]
	default:
		return "", false
	}

	path := defaultPath
	for _, rec := range entry.Text {
		if v, ok := strings.CutPrefix(rec, "path="); ok && v != "" {
			path = v
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "http://" + net.JoinHostPort(ip.String(), strconv.Itoa(entry.Port)) + path, true
}
