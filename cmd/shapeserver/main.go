package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"voxelshapes.ai/internal/celltype"
	"voxelshapes.ai/internal/mesh"
	"voxelshapes.ai/internal/meshstore"
	persistlog "voxelshapes.ai/internal/persistence/log"
	"voxelshapes.ai/internal/persistence/meshdb"
	"voxelshapes.ai/internal/service"
	"voxelshapes.ai/internal/shapecache"
	"voxelshapes.ai/internal/transport/ws"
	"voxelshapes.ai/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		cellsPath  = flag.String("cells", "", "path to cells.yaml (default: <configs>/cells.yaml)")
		meshDir    = flag.String("meshes", "", "mesh directory (default: <configs>/meshes)")
		meshDBPath = flag.String("mesh_db", "", "mesh database (default: <data>/meshes.sqlite)")
		disableDB  = flag.Bool("disable_db", false, "do not open the mesh database")
		trace      = flag.Bool("trace", true, "write shape derivations to <data>/trace")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[shapeserver] ", log.LstdFlags|log.Lmicroseconds)

	tp := orDefault(*tuningPath, filepath.Join(*configDir, "tuning.yaml"))
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	cells, err := celltype.LoadCatalog(orDefault(*cellsPath, filepath.Join(*configDir, "cells.yaml")), logger)
	if err != nil {
		logger.Fatalf("load cells: %v", err)
	}

	sources := meshstore.Chain{meshstore.NewDir(orDefault(*meshDir, filepath.Join(*configDir, "meshes")))}
	if !*disableDB {
		_ = os.MkdirAll(*dataDir, 0o755)
		db, err := meshdb.OpenSQLite(orDefault(*meshDBPath, filepath.Join(*dataDir, "meshes.sqlite")))
		if err != nil {
			logger.Fatalf("open mesh db: %v", err)
		}
		defer db.Close()
		sources = append(sources, db)
	}
	sources = append(sources, meshstore.NewPrimitives(tune.PrimitiveCells))

	reg := mesh.NewRegistry(sources, mesh.WithResolution(tune.VoxelResolution), mesh.WithLogger(logger))
	if tune.PreloadMeshes {
		start := time.Now()
		if err := reg.Preload(cells.MeshNames()...); err != nil {
			logger.Printf("preload: %v", err)
		}
		logger.Printf("preloaded %d meshes in %s", reg.Len(), time.Since(start).Round(time.Millisecond))
	}

	opts := shapecache.Options{
		EmptyBackoff:    tune.EmptyBackoff(),
		MaxEmptyBackoff: tune.MaxEmptyBackoff(),
		Logger:          logger,
	}
	var tracer *persistlog.TraceLogger
	if *trace {
		tracer = persistlog.NewTraceLogger(*dataDir, logger)
		defer tracer.Close()
		opts.Observer = tracer
	}
	cache := shapecache.New(reg, opts)
	svc := service.New(cells, reg, cache, logger)

	wsSrv := ws.NewServer(svc, ws.Config{
		HandshakeTimeout: tune.Server.HandshakeTimeout(),
		IdleTimeout:      tune.Server.IdleTimeout(),
		MaxMessageBytes:  int64(tune.Server.MaxMessageBytes),
		OutQueue:         tune.Server.OutQueue,
		TuningDigest:     fileDigest(tp),
	}, logger)

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, metricsSnapshot{
			Cache:       cache.Stats(),
			Meshes:      reg.Len(),
			MeshLoads:   reg.Loads(),
			Connections: wsSrv.Active(),
			Trace:       tracer,
		})
	})
	if envBool("VS_ENABLE_ADMIN_HTTP", true) {
		mux.HandleFunc("/admin/v1/cells", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(svc.Describe())
		})
		mux.HandleFunc("/admin/v1/invalidate", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			n, err := svc.Invalidate(r.URL.Query().Get("cell"))
			if err != nil {
				http.Error(rw, err.Error(), http.StatusNotFound)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(map[string]int{"dropped": n})
		})
	} else {
		logger.Printf("admin endpoints disabled (VS_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("VS_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatalf("listen: %v", err)
	}

	logger.Printf("listening on %s (%d cells, catalog %s)", ln.Addr(), cells.Len(), short(cells.Digest))
	if err := serve(ctx, srv, ln, 5*time.Second); err != nil {
		logger.Fatalf("serve: %v", err)
	}
	logger.Printf("shut down")
}

// serve runs srv on ln until ctx is cancelled and returns only after
// Shutdown has drained in-flight handlers.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), grace)
		defer cancel2()
		drained <- srv.Shutdown(ctx2)
	}()
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return <-drained
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func fileDigest(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
