package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/ebb-frp/ebb/pkg/frp"
	"github.com/ebb-frp/ebb/pkg/frpdebug"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a graph over HTTP",
		Long: `Serve a graph snapshot, or a live demo graph, over HTTP.

With --snapshot, the recorded snapshot is served read-only at
/graph.json and /graph.dot. Without it, a small self-driving demo
graph runs in-process with the full inspector surface, including
/metrics and the /live websocket stream.

Examples:
  ebbviz serve
  ebbviz serve --addr=:9090
  ebbviz serve --snapshot=graph.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if snapshot != "" {
				return runServeSnapshot(addr, snapshot)
			}
			return runServeDemo(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8484", "Address to listen on")
	cmd.Flags().StringVarP(&snapshot, "snapshot", "s", "", "Snapshot JSON file to serve read-only")

	return cmd
}

func runServeSnapshot(addr, path string) error {
	snap, err := loadSnapshot(path)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Get("/graph.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	})
	r.Get("/graph.dot", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write([]byte(frpdebug.DOT(snap)))
	})

	slog.Info("serving recorded snapshot", "addr", addr, "file", path,
		"nodes", len(snap.Nodes), "edges", len(snap.Edges))
	return listenAndServe(addr, r, nil)
}

func runServeDemo(addr string) error {
	graph := frp.NewGraph()
	stop := startDemoGraph(graph)

	inspector := frpdebug.NewServer(graph,
		frpdebug.WithCheckOrigin(func(*http.Request) bool { return true }))

	slog.Info("serving live demo graph", "addr", addr)
	return listenAndServe(addr, inspector.Routes(), stop)
}

// startDemoGraph builds a small self-driving graph: a ticker event folded
// into a counter, with a fused derived value on top. Returns a stop
// function for shutdown.
func startDemoGraph(g *frp.Graph) func() {
	scope := frp.NewScope()

	var emit func(int)
	frp.WithGraph(g, func() {
		scope.Run(func() {
			ticks, tick := frp.NewEvent[int]()
			emit = tick
			count := frp.Fold(ticks, 0, func(acc, _ int) int { return acc + 1 })
			frp.MapR(count, func(n int) int { return n * n })
			frp.EffectE(ticks, func(n int) {
				slog.Debug("demo tick", "n", n)
			})
		})
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		n := 0
		for {
			select {
			case <-ticker.C:
				n++
				emit(n)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		scope.Dispose()
	}
}

func listenAndServe(addr string, handler http.Handler, stop func()) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		slog.Info("shutting down", "signal", s.String())
	}

	if stop != nil {
		stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func loadSnapshot(path string) (frp.GraphSnapshot, error) {
	var snap frp.GraphSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("reading snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return snap, nil
}
