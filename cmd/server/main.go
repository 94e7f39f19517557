package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"voxelisle/internal/persistence/editlog"
	persistlog "voxelisle/internal/persistence/log"
	"voxelisle/internal/sim/catalogs"
	"voxelisle/internal/sim/terrain"
	"voxelisle/internal/sim/terrain/store"
	"voxelisle/internal/sim/tuning"
	"voxelisle/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "world seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		blocksPath = flag.String("blocks", "", "path to blocks.yaml overlay (default: <configs>/blocks.yaml if present)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite edit journal (edits are then lost on eviction)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if err := tune.Validate(); err != nil {
		logger.Fatalf("invalid tuning: %v", err)
	}

	bp := strings.TrimSpace(*blocksPath)
	if bp == "" {
		bp = filepath.Join(*configDir, "blocks.yaml")
	}
	reg := catalogs.Default()
	if _, err := os.Stat(bp); err == nil {
		if reg, err = catalogs.Load(bp); err != nil {
			logger.Fatalf("load block palette: %v", err)
		}
	}

	worldDir := filepath.Join(*dataDir, "worlds", "island")
	_ = os.MkdirAll(worldDir, 0o755)

	var journal store.EditJournal
	if !*disableDB {
		j, err := editlog.Open(filepath.Join(worldDir, "edits.db"))
		if err != nil {
			logger.Fatalf("open edit journal: %v", err)
		}
		defer j.Close()
		journal = j
	}

	edits := persistlog.NewEditLogger(worldDir)
	defer edits.Close()

	gen := terrain.NewGenerator(*seed)
	st := store.New(gen, journal, tune.StoreShards)

	srv := ws.NewServer(gen, st, reg, tune, logger, edits)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s (seed=%d, palette=%s)", *addr, *seed, reg.Digest()[:12])
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Printf("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
