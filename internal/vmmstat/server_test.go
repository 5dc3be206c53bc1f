package vmmstat

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/orizon-lang/vmemtrans/internal/physmem"
	"github.com/orizon-lang/vmemtrans/internal/pagefile"
	"github.com/orizon-lang/vmemtrans/internal/vmm"
)

func newTestEngine(t *testing.T) *vmm.Engine {
	t.Helper()

	dep, err := vmm.NewDeployment(4, 12, 7)
	if err != nil {
		t.Fatalf("NewDeployment: %v", err)
	}

	mem, err := physmem.New(dep.PhysicalMemorySize, dep.PageSize, pagefile.NewMemStore(dep.PageSize))
	if err != nil {
		t.Fatalf("physmem.New: %v", err)
	}

	e := vmm.NewEngine(dep, mem)
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	return e
}

// TestHandleStatsEncodesSnapshot drives the handler directly via
// httptest.ResponseRecorder; it does not stand up the real QUIC listener
// Start wires, matching how the teacher codebase unit-tests HTTP handlers
// without a live transport.
func TestHandleStatsEncodesSnapshot(t *testing.T) {
	e := newTestEngine(t)

	e.Write(13, 42)

	var got vmm.Word
	e.Read(13, &got)

	srv := New("127.0.0.1:0", e, nil)

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()

	srv.handleStats(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}

	var snap vmm.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Unmarshal: %v, body=%s", err, rec.Body.String())
	}

	if snap.Writes != 1 {
		t.Fatalf("snapshot Writes = %d, want 1", snap.Writes)
	}

	if snap.Reads != 1 {
		t.Fatalf("snapshot Reads = %d, want 1", snap.Reads)
	}

	if snap.Faults == 0 {
		t.Fatalf("snapshot Faults = 0, want > 0 (first write must fault in a path)")
	}
}

func TestNewEnforcesTLS13Minimum(t *testing.T) {
	e := newTestEngine(t)

	srv := New("127.0.0.1:0", e, nil)

	if srv.srv.TLSConfig.MinVersion < 0x0304 { // tls.VersionTLS13
		t.Fatalf("TLSConfig.MinVersion = %x, want >= TLS 1.3", srv.srv.TLSConfig.MinVersion)
	}
}
