package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

func TestCheck_NoDependencies(t *testing.T) {
	report := New(nil, nil).Check(context.Background())
	if report.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %q", report.Status)
	}
	if len(report.Checks) != 0 {
		t.Fatalf("expected no checks, got %v", report.Checks)
	}
}

func TestCheck_AllOK(t *testing.T) {
	report := New(&mockPinger{}, &mockPinger{}).Check(context.Background())
	if report.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %q", report.Status)
	}
	if report.Checks["index"] != "ok" || report.Checks["cache"] != "ok" {
		t.Fatalf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_IndexDown(t *testing.T) {
	report := New(&mockPinger{err: errors.New("index gone")}, nil).Check(context.Background())
	if report.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %q", report.Status)
	}
	if report.Checks["index"] != "index gone" {
		t.Fatalf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_CacheDown(t *testing.T) {
	report := New(&mockPinger{}, &mockPinger{err: errors.New("connection refused")}).Check(context.Background())
	if report.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %q", report.Status)
	}
	if report.Checks["index"] != "ok" {
		t.Fatalf("index check lost: %v", report.Checks)
	}
	if report.Checks["cache"] != "connection refused" {
		t.Fatalf("unexpected cache check: %v", report.Checks)
	}
}
