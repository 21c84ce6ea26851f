// Package maintenance runs the inventory daemon's background chores: a
// reachability probe of the backend and daily gzip backups of the item list.
package maintenance

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/micro-nova/inventory-go/internal/models"
)

const (
	backupPrefix = models.StorageKey + "-"
	backupSuffix = ".json.gz"

	checkInterval = 5 * time.Minute
	dialTimeout   = 3 * time.Second
	backupMaxAge  = 90 * 24 * time.Hour
)

// dialFunc is a variable so tests can inject a mock dialer.
var dialFunc = func(network, address string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout(network, address, timeout)
}

// ItemSource supplies the items to back up.
type ItemSource interface {
	Items() []models.Item
}

// Service manages background maintenance goroutines.
type Service struct {
	backupDir   string
	backendAddr string // host:port, "" disables the probe
	source      ItemSource
	onReachable func(bool)
	now         func() time.Time
}

// New creates a maintenance Service. backupDir "" disables backups and
// backendAddr "" disables the reachability probe.
func New(backupDir, backendAddr string, source ItemSource, onReachable func(bool)) *Service {
	return &Service{
		backupDir:   backupDir,
		backendAddr: backendAddr,
		source:      source,
		onReachable: onReachable,
		now:         time.Now,
	}
}

// Start launches the maintenance goroutines and blocks until ctx is
// cancelled.
func (s *Service) Start(ctx context.Context) {
	if s.backendAddr != "" {
		go s.runCheckBackend(ctx)
	}
	if s.backupDir != "" && s.source != nil {
		go s.runBackup(ctx)
	}
	<-ctx.Done()
}

// BackendAddr converts a backend base URL into the host:port to probe.
func BackendAddr(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("maintenance: no host in %q", baseURL)
	}
	if u.Port() != "" {
		return u.Host, nil
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// CheckBackend dials the backend once and reports whether it answered.
func (s *Service) CheckBackend() bool {
	conn, err := dialFunc("tcp", s.backendAddr, dialTimeout)
	if conn != nil {
		conn.Close()
	}
	return err == nil
}

// runCheckBackend probes the backend every checkInterval and reports
// changes.
func (s *Service) runCheckBackend(ctx context.Context) {
	last := false
	first := true

	check := func() {
		reachable := s.CheckBackend()
		if first || reachable != last {
			first = false
			last = reachable
			slog.Info("maintenance: backend reachability", "addr", s.backendAddr, "reachable", reachable)
			if s.onReachable != nil {
				s.onReachable(reachable)
			}
		}
	}

	check()

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// runBackup writes a backup every day at 2am.
func (s *Service) runBackup(ctx context.Context) {
	for {
		now := s.now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
			path, err := s.RunBackupNow()
			if err != nil {
				slog.Error("maintenance: backup failed", "err", err)
			} else {
				slog.Info("maintenance: backup created", "file", path)
			}
		}
	}
}

// RunBackupNow writes today's backup, replacing an earlier one from the same
// day, prunes backups older than 90 days and returns the file path.
func (s *Service) RunBackupNow() (string, error) {
	if s.backupDir == "" || s.source == nil {
		return "", fmt.Errorf("maintenance: backups are not configured")
	}
	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	snap := models.Snapshot{Items: s.source.Items()}
	dest := filepath.Join(s.backupDir, backupPrefix+s.now().Format("2006-01-02")+backupSuffix)
	if err := writeBackup(dest, &snap); err != nil {
		return "", err
	}

	pruneOldBackups(s.backupDir, backupMaxAge)
	return dest, nil
}

// ListBackups returns the backup files in the backup directory, oldest first.
func (s *Service) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, e := range entries {
		if !e.IsDir() && isBackupName(e.Name()) {
			files = append(files, filepath.Join(s.backupDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ReadBackup decodes a backup file.
func ReadBackup(path string) (*models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	var snap models.Snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if snap.Items == nil {
		snap.Items = []models.Item{}
	}
	return &snap, nil
}

func writeBackup(dest string, snap *models.Snapshot) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".backup-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp backup: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := gzip.NewWriter(tmp)
	if err = json.NewEncoder(zw).Encode(snap); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("compress backup: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("rename backup: %w", err)
	}
	return nil
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupSuffix)
}

// pruneOldBackups deletes backup files older than maxAge from backupDir.
func pruneOldBackups(backupDir string, maxAge time.Duration) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() || !isBackupName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(backupDir, e.Name())
			if err := os.Remove(path); err != nil {
				slog.Warn("maintenance: failed to prune old backup", "file", path, "err", err)
			} else {
				slog.Info("maintenance: pruned old backup", "file", path)
			}
		}
	}
}
