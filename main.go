package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/bootjp/txkv/adapter"
	"github.com/bootjp/txkv/store"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

var (
	redisAddr   = flag.String("redisAddress", "", "TCP host+port for the RESP front end (disabled when empty)")
	metricsAddr = flag.String("metricsAddress", "", "TCP host+port for Prometheus metrics (disabled when empty)")
	sortedKeys  = flag.Bool("sortedKeys", false, "Iterate keys in ascending order instead of insertion order")
	logLevel    = flag.String("logLevel", "warn", "Log level: debug, info, warn or error")
)

const readHeaderTimeout = 5 * time.Second

type config struct {
	redisAddress   string
	metricsAddress string
	sortedKeys     bool
}

func main() {
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid --logLevel", slog.String("value", *logLevel))
		os.Exit(2)
	}
	// stdout belongs to the interpreter
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	cfg := config{
		redisAddress:   *redisAddr,
		metricsAddress: *metricsAddr,
		sortedKeys:     *sortedKeys,
	}
	if err := run(context.Background(), cfg, os.Stdin, os.Stdout); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// run serves the interpreter on in/out until it ends, along with the optional
// RESP and metrics listeners, which are stopped once the interpreter returns.
func run(ctx context.Context, cfg config, in io.Reader, out io.Writer) error {
	opts := []store.TxnStoreOption{store.WithTxnStoreLogger(slog.Default())}
	if cfg.sortedKeys {
		opts = append(opts, store.WithSortedKeys())
	}
	st := store.NewTxnStore(opts...)

	// Both listeners are bound before anything is started so a bind failure
	// leaves no goroutine behind.
	var redisL, metricsL net.Listener
	if cfg.redisAddress != "" {
		l, err := net.Listen("tcp", cfg.redisAddress)
		if err != nil {
			return errors.WithStack(err)
		}
		redisL = l
	}
	if cfg.metricsAddress != "" {
		l, err := net.Listen("tcp", cfg.metricsAddress)
		if err != nil {
			if redisL != nil {
				_ = redisL.Close()
			}
			return errors.WithStack(err)
		}
		metricsL = l
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, runCtx := errgroup.WithContext(ctx)

	if redisL != nil {
		srv := adapter.NewRedisServer(redisL, st)
		slog.Info("serving RESP", slog.String("address", redisL.Addr().String()))
		eg.Go(srv.Run)
		eg.Go(func() error {
			<-runCtx.Done()
			srv.Stop()
			return nil
		})
	}

	if metricsL != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		hs := &http.Server{Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
		slog.Info("serving metrics", slog.String("address", metricsL.Addr().String()))
		eg.Go(func() error {
			if err := hs.Serve(metricsL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.WithStack(err)
			}
			return nil
		})
		eg.Go(func() error {
			<-runCtx.Done()
			return errors.WithStack(hs.Shutdown(context.Background()))
		})
	}

	eg.Go(func() error {
		defer cancel()
		return adapter.NewREPL(st, in, out).Run(runCtx)
	})

	return errors.WithStack(eg.Wait())
}
