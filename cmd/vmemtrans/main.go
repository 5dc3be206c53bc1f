// Command vmemtrans drives the hierarchical virtual-memory translator
// against a configured deployment, running a short demonstration sequence
// of reads and writes and optionally exposing a read-only stats endpoint.
//
// This is the driver/test harness spec.md §1 explicitly places outside the
// CORE; it exists only to exercise internal/vmm end to end, the same way
// the teacher codebase's cmd/orizon-kernel wraps internal/runtime/kernel.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/orizon-lang/vmemtrans/internal/pagefile"
	"github.com/orizon-lang/vmemtrans/internal/physmem"
	"github.com/orizon-lang/vmemtrans/internal/vmm"
	"github.com/orizon-lang/vmemtrans/internal/vmmconfig"
	"github.com/orizon-lang/vmemtrans/internal/vmmstat"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON deployment config (default: built-in deployment)")
	statsAddr := flag.String("stats", "", "if set, overrides config's stats_addr and serves HTTP/3 stats there")
	flag.Parse()

	logger := log.New(os.Stdout, "vmemtrans: ", log.LstdFlags)

	cfg := vmmconfig.Default()

	if *configPath != "" {
		loaded, err := vmmconfig.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}

		cfg = loaded
	}

	if *statsAddr != "" {
		cfg.StatsAddr = *statsAddr
	}

	dep, err := vmm.NewDeployment(cfg.OffsetWidth, cfg.VirtualAddressWidth, cfg.PhysicalAddressWidth)
	if err != nil {
		logger.Fatalf("invalid deployment: %v", err)
	}

	var store physmem.BackingStore
	if cfg.PageFilePath != "" {
		fs, err := pagefile.OpenFileStore(cfg.PageFilePath, dep.PageSize)
		if err != nil {
			logger.Fatalf("open page file: %v", err)
		}
		defer fs.Close()

		store = fs
	} else {
		store = pagefile.NewMemStore(dep.PageSize)
	}

	mem, err := physmem.New(dep.PhysicalMemorySize, dep.PageSize, store)
	if err != nil {
		logger.Fatalf("create physical memory: %v", err)
	}

	engine := vmm.NewEngine(dep, mem)
	if err := engine.Initialize(); err != nil {
		logger.Fatalf("initialize: %v", err)
	}

	if cfg.StatsAddr != "" {
		srv := vmmstat.New(cfg.StatsAddr, engine, nil)

		addr, err := srv.Start()
		if err != nil {
			logger.Fatalf("start stats server: %v", err)
		}

		defer srv.Close()

		logger.Printf("stats server listening on %s", addr)
	}

	runDemo(engine, cfg.Verbose, logger)
}

// runDemo exercises the translator with spec.md §8's S1/S4 scenario seeds:
// a first write that materializes a path, and a rewrite at the same
// address.
func runDemo(e *vmm.Engine, verbose bool, logger *log.Logger) {
	if ok := e.Write(13, 42); !ok {
		logger.Fatalf("write(13, 42) unexpectedly rejected")
	}

	var got vmm.Word
	if ok := e.Read(13, &got); !ok || got != 42 {
		logger.Fatalf("read(13) = %d, ok=%v; want 42, true", got, ok)
	}

	if ok := e.Write(0x20, 1); !ok {
		logger.Fatalf("write(0x20, 1) unexpectedly rejected")
	}

	if ok := e.Write(0x20, 2); !ok {
		logger.Fatalf("write(0x20, 2) unexpectedly rejected")
	}

	if ok := e.Read(0x20, &got); !ok || got != 2 {
		logger.Fatalf("read(0x20) = %d, ok=%v; want 2, true", got, ok)
	}

	if verbose {
		fmt.Printf("demo ok: stats=%+v\n", e.Snapshot())
	}
}
