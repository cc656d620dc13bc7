package main

import (
	"cmp"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tabrest/tabrest/pkg/db"
	mw "github.com/tabrest/tabrest/pkg/httputil/middleware"
	"github.com/tabrest/tabrest/pkg/metrics"
	"github.com/tabrest/tabrest/pkg/rest"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Starts a REST API server exposing database tables as HTTP resources`,
	Run:   runServer,
}

func init() {
	f := serveCmd.Flags()
	f.StringP("db.driver", "d", "", "database driver (postgres, duckdb, clickhouse)")
	f.StringP("db.connString", "c", "", "database connection string")
	f.String("db.schema", "", "schema context for entity resolution")
	f.StringP("server.listenAddr", "l", "", "server listen address")
	f.Int("query.defaultPageSize", 0, "default page size for list responses")
	f.Bool("cache.enabled", false, "enable the response cache")
	f.Bool("metrics.enabled", false, "serve Prometheus metrics")

	viper.BindPFlags(f)
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) {
	if cfg == nil {
		log.Fatal("Configuration not loaded")
	}

	connString := cmp.Or(
		viper.GetString("db.connString"),
		cfg.DB.ConnString,
		os.Getenv("TABREST_DB_CONNSTRING"),
	)
	if connString == "" {
		log.Fatal("database connection string required")
	}
	driver := cmp.Or(viper.GetString("db.driver"), cfg.DB.Driver)

	logger, err := buildLogger(logLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Open(ctx, driver, connString)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	server := rest.NewServer(pool, rest.Options{
		Schema:          cmp.Or(viper.GetString("db.schema"), cfg.DB.Schema),
		DefaultPageSize: cmp.Or(viper.GetInt("query.defaultPageSize"), cfg.Query.DefaultPageSize),
		Blacklist:       cfg.Query.Blacklist,
		Logger:          logger,
	})

	server.AddMiddleware(
		mw.RequestID,
		mw.CORSWithOptions(nil),
		metrics.Instrument,
	)
	if logLevel != "none" {
		server.AddMiddleware(mw.LoggerWithOptions(&mw.LoggerOptions{Logger: logger}))
	}
	// Cache innermost so hits still pass the metrics and logging layers.
	if cfg.Cache.Enabled || viper.GetBool("cache.enabled") {
		server.AddMiddleware(mw.ResponseCache(mw.NewCache(), cfg.Cache.TTL))
	}

	var wg sync.WaitGroup
	if cfg.Metrics.Enabled || viper.GetBool("metrics.enabled") {
		metrics.StartPrometheusServer(ctx, &wg, logger, &metrics.PromServerOpts{
			Addr: cfg.Metrics.Addr,
		})
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	listenAddr := cmp.Or(viper.GetString("server.listenAddr"), cfg.Server.ListenAddr)
	go func() {
		if err := server.Start(listenAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	wg.Wait()
}

func buildLogger(level string) (*zap.Logger, error) {
	if level == "none" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return cfg.Build()
}
