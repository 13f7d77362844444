package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/imgsim"
	promexport "github.com/hupe1980/imgsim/metrics/prometheus"
	"github.com/hupe1980/imgsim/pipeline"
	"github.com/hupe1980/imgsim/resource"
	"github.com/hupe1980/imgsim/segment/sqlite"
)

// app carries the configuration shared by every subcommand.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "imgsim",
		Short:         "Content-based image retrieval: index images and search by visual similarity.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env file is fine.
			_ = godotenv.Load()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("db", "imgsim.db", "path of the sqlite segment")
	flags.String("tables", "", "hash table store URL (file://, s3://, minio://)")
	flags.String("ddb-table", "", "DynamoDB table holding the CURRENT pointer of an s3:// table store")
	flags.String("minio-access-key", "", "access key for minio:// table stores")
	flags.String("minio-secret-key", "", "secret key for minio:// table stores")
	flags.Bool("minio-secure", true, "use TLS for minio:// table stores")
	flags.String("log-level", "info", `log level ("debug", "info", "warn", "error")`)
	flags.String("log-format", "text", `log format ("text" or "json")`)
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.Int("max-image-dimension", pipeline.DefaultConfig().MaxImageDimension, "longest side images are scaled down to")
	flags.Int("workers", pipeline.DefaultConfig().MaxWorkers, "maximum concurrent descriptor extractions")
	flags.Int64("memory-limit", 0, "maximum bytes of decoded images held at once (0 = unlimited)")
	flags.Bool("ignore-metadata-errors", true, "index images whose metadata cannot be read")
	flags.Int64("cache-bytes", 64<<20, "stored feature records kept in memory while searching")

	if err := a.v.BindPFlags(flags); err != nil {
		panic(err)
	}
	a.v.SetEnvPrefix("imgsim")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.hashgenCmd(),
		a.indexCmd(),
		a.searchCmd(),
		a.deleteCmd(),
	)
	return root
}

func (a *app) logger() (*imgsim.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	switch a.v.GetString("log-format") {
	case "text":
		return imgsim.NewTextLogger(level), nil
	case "json":
		return imgsim.NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", a.v.GetString("log-format"))
	}
}

func (a *app) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.MaxImageDimension = a.v.GetInt("max-image-dimension")
	cfg.MaxWorkers = a.v.GetInt("workers")
	cfg.IgnoreMetadataErrors = a.v.GetBool("ignore-metadata-errors")
	return cfg
}

// openEngine opens the sqlite segment, loads the hash tables and starts the
// metrics endpoint. The returned func releases all of it.
func (a *app) openEngine(ctx context.Context) (*imgsim.Engine, func(), error) {
	logger, err := a.logger()
	if err != nil {
		return nil, nil, err
	}

	cfg := a.pipelineConfig()
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes: a.v.GetInt64("memory-limit"),
		MaxWorkers:       int64(max(cfg.MaxWorkers, 1)),
	})

	opts := []imgsim.Option{
		imgsim.WithLogger(logger),
		imgsim.WithPipelineConfig(cfg),
		imgsim.WithResourceController(rc),
		imgsim.WithStoredCache(a.v.GetInt64("cache-bytes")),
	}

	stopMetrics := func() {}
	if addr := a.v.GetString("metrics-addr"); addr != "" {
		collector := promexport.New(promexport.DefaultConfig())
		stop, err := serveMetrics(addr, collector, logger)
		if err != nil {
			return nil, nil, err
		}
		stopMetrics = stop
		opts = append(opts, imgsim.WithMetricsCollector(collector))
	}

	store, err := a.tableStore(ctx)
	if err != nil {
		stopMetrics()
		return nil, nil, err
	}
	if store != nil {
		opts = append(opts, imgsim.WithTableStore(store))
	}

	seg, err := sqlite.Open(ctx, a.v.GetString("db"))
	if err != nil {
		stopMetrics()
		return nil, nil, err
	}
	opts = append(opts, imgsim.WithSegment(seg))

	eng, err := imgsim.New(ctx, opts...)
	if err != nil {
		_ = seg.Close()
		stopMetrics()
		return nil, nil, err
	}

	return eng, func() {
		if err := eng.Close(); err != nil {
			logger.Error("close failed", "error", err)
		}
		stopMetrics()
	}, nil
}

func serveMetrics(addr string, collector *promexport.Collector, logger *imgsim.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
