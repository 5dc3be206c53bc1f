// Package vmmstat exposes a read-only snapshot of an Engine's allocator
// counters over HTTP/3, for remote operational visibility. It is a side
// channel: it reads vmm.Stats after the fact and never participates in
// translation, keeping spec.md §5's synchronous single-threaded core
// untouched.
//
// This mirrors the teacher codebase's internal/runtime/netstack.HTTP3Server,
// which wraps a *http3.Server lifecycle over a net.PacketConn; the wiring
// below is a direct application of that pattern to one JSON endpoint.
package vmmstat

import (
	"crypto/tls"
	"encoding/json"
	"net"
	"net/http"

	quic "github.com/quic-go/quic-go"
	http3 "github.com/quic-go/quic-go/http3"

	"github.com/orizon-lang/vmemtrans/internal/vmm"
)

// Server serves a single read-only JSON endpoint with the current
// vmm.Stats snapshot of the engine it was built with.
type Server struct {
	engine *vmm.Engine
	pc     net.PacketConn
	srv    *http3.Server
	addr   string
}

// New builds a Server bound to addr (host:port, or host:0 for an ephemeral
// port) that reports snapshots of engine. tlsCfg may be nil, in which case
// a TLS 1.3 config with the "h3" ALPN protocol is used; that config carries
// no certificate, so TLS handshakes against it do not complete. HTTP/3
// requires TLS 1.3.
func New(addr string, engine *vmm.Engine, tlsCfg *tls.Config) *Server {
	if tlsCfg == nil {
		tlsCfg = &tls.Config{MinVersion: tls.VersionTLS13, NextProtos: []string{"h3"}}
	} else if tlsCfg.MinVersion < tls.VersionTLS13 {
		c := tlsCfg.Clone()
		c.MinVersion = tls.VersionTLS13

		if len(c.NextProtos) == 0 {
			c.NextProtos = []string{"h3"}
		}

		tlsCfg = c
	}

	s := &Server{engine: engine, addr: addr}

	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)

	s.srv = &http3.Server{Addr: addr, TLSConfig: tlsCfg, Handler: mux, QUICConfig: &quic.Config{}}

	return s
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// Start begins serving on s.addr and returns the bound address.
func (s *Server) Start() (string, error) {
	pc, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return "", err
	}

	s.pc = pc

	go s.srv.Serve(pc)

	return pc.LocalAddr().String(), nil
}

// Close shuts the server down.
func (s *Server) Close() error {
	err := s.srv.Close()

	if s.pc != nil {
		_ = s.pc.Close()
	}

	return err
}
