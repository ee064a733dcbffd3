package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	config "github.com/mwantia/tierd/internal/config/server"
	"github.com/mwantia/tierd/internal/metrics"
	"github.com/mwantia/tierd/internal/scan"
	"github.com/mwantia/tierd/internal/volume"
	"github.com/mwantia/tierd/pkg/db/store"
	"github.com/mwantia/tierd/pkg/log"
)

type TierdAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg     *config.BaseServerConfig
	sc      *container.ServiceContainer
	log     log.LoggerService
	store   store.MetadataStore
	scanner *scan.Scanner
	server  *http.Server
}

func NewAgent(cfg *config.BaseServerConfig) *TierdAgent {
	return &TierdAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService(cfg.Log.Name, cfg.Log),
	}
}

func (ta *TierdAgent) setupServices(ctx context.Context) error {
	st, err := store.NewMetadataStore(ta.cfg.Metadata)
	if err != nil {
		return err
	}
	ta.store = st

	errs := container.Errors{}

	ta.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](ta.sc,
		container.With[log.LoggerService](),
		container.WithInstance(ta.log)))

	ta.log.Debug("Registering 'MetadataStore'...")
	errs.Add(container.Register[store.SQLiteStore](ta.sc,
		container.With[store.MetadataStore](),
		container.WithInstance(ta.store)))

	if err := errs.Errors(); err != nil {
		return err
	}

	source, err := volume.NewSource(ta.cfg.Scan)
	if err != nil {
		return err
	}

	logger, err := ta.namedLogger(ctx, "scanner")
	if err != nil {
		return err
	}
	ta.scanner = scan.NewScanner(source, ta.store, volume.NewFilter(ta.cfg.Scan), ta.cfg.Tiers, logger)

	return nil
}

// namedLogger resolves a child logger the same way a fabric:"logger:<name>"
// field tag would.
func (ta *TierdAgent) namedLogger(ctx context.Context, name string) (log.LoggerService, error) {
	field := reflect.StructField{Name: name}
	resolved, err := log.NewLoggerTagProcessor().Process(ctx, ta.sc, field, "logger:"+name)
	if err != nil {
		return nil, err
	}
	return resolved.(log.LoggerService), nil
}

func (ta *TierdAgent) openStore(ctx context.Context) error {
	if err := ta.store.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect metadata store: %w", err)
	}
	if err := ta.store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate metadata store: %w", err)
	}
	return nil
}

func (ta *TierdAgent) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle(ta.cfg.Metrics.Path, metrics.Handler())

	ta.server = &http.Server{
		Addr:              ta.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ta.wait.Add(1)
	go func() {
		defer ta.wait.Done()

		ta.log.Info("Serving metrics on %s%s", ta.cfg.Metrics.Address, ta.cfg.Metrics.Path)
		if err := ta.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ta.log.Error("Metrics server stopped: %v", err)
		}
	}()
}

func (ta *TierdAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	ta.mutex.Lock()

	if err := ta.setupServices(ctx); err != nil {
		ta.mutex.Unlock()
		return err
	}
	if err := ta.openStore(ctx); err != nil {
		ta.mutex.Unlock()
		return err
	}
	defer ta.store.Close()

	if ta.cfg.Metrics.Enabled {
		ta.serveMetrics()
	}

	ta.mutex.Unlock()

	if ta.cfg.Scan.ScanOnStart {
		if _, err := ta.Scan(ctx); err != nil {
			ta.log.Error("Startup scan failed: %v", err)
		}
	}

	<-ctx.Done()
	ta.log.Info("Shutting down...")

	timeout, err := time.ParseDuration(ta.cfg.ShutdownTimeout)
	if err != nil {
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if ta.server != nil {
		if err := ta.server.Shutdown(shutdown); err != nil {
			ta.log.Warn("Failed to stop metrics server: %v", err)
		}
	}

	if err := ta.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	ta.wait.Wait()
	return nil
}

// Scan runs a single scan. Concurrent calls are serialized.
func (ta *TierdAgent) Scan(ctx context.Context) (*scan.Report, error) {
	ta.mutex.Lock()
	defer ta.mutex.Unlock()

	if ta.scanner == nil {
		return nil, fmt.Errorf("agent services are not set up")
	}
	return ta.scanner.Scan(ctx)
}
