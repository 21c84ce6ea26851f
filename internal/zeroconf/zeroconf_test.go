package zeroconf_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	grandcat "github.com/grandcat/zeroconf"

	"github.com/micro-nova/inventory-go/internal/zeroconf"
)

func TestTXT(t *testing.T) {
	svc := zeroconf.New("inventory-test", 8080, "1.2.3", "")
	txt := svc.TXT()
	if len(txt) != 2 || txt[0] != "version=1.2.3" || txt[1] != "path=/api" {
		t.Errorf("TXT() = %v", txt)
	}
}

// TestStart_Cancel verifies that Start returns once its context is cancelled.
func TestStart_Cancel(t *testing.T) {
	svc := zeroconf.New("inventory-test", 18080, "test", "/api")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- svc.Start(ctx)
	}()

	select {
	case err := <-done:
		// mDNS may be unavailable in CI; returning is what matters.
		if err != nil {
			t.Logf("Start returned error (may be expected in CI): %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return within 3 seconds after context cancellation")
	}
}

func TestEntryURL(t *testing.T) {
	entry := grandcat.NewServiceEntry("inv", zeroconf.ServiceType, "local.")
	entry.Port = 8081
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	entry.Text = []string{"version=1", "path=/inventory-api"}

	got, ok := zeroconf.EntryURL(entry)
	if !ok || got != "http://192.168.1.20:8081/inventory-api" {
		t.Errorf("EntryURL() = %q, %v", got, ok)
	}

	entry.Text = nil
	entry.AddrIPv4 = nil
	entry.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
	got, ok = zeroconf.EntryURL(entry)
	if !ok || got != "http://[fe80::1]:8081/api" {
		t.Errorf("EntryURL() ipv6 = %q, %v", got, ok)
	}

	entry.AddrIPv6 = nil
	if _, ok := zeroconf.EntryURL(entry); ok {
		t.Error("EntryURL() without address reported ok")
	}
	if _, ok := zeroconf.EntryURL(nil); ok {
		t.Error("EntryURL(nil) reported ok")
	}
}

func TestDiscoverTimesOut(t *testing.T) {
	_, err := zeroconf.Discover(context.Background(), 200*time.Millisecond)
	if err == nil {
		t.Skip("an inventory backend is advertised on this network")
	}
	if !errors.Is(err, zeroconf.ErrNotFound) {
		t.Logf("Discover returned %v (mDNS may be unavailable in CI)", err)
	}
}
