package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/application/port"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/application/service"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/config"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/infrastructure/metrics"
)

// Container manages application dependencies and lifecycle.
// Components are initialized in order and torn down in reverse order.
type Container struct {
	config *config.Config
	logger *zap.Logger

	ledger   *LedgerBundle
	pipeline *PipelineBundle
	metrics  *metrics.Metrics
	invoices service.InvoiceService

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Download ledger (when enabled)
// 2. Metrics (when enabled)
// 3. Pipeline stages
// 4. Invoice service
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	if c.config.Database.Enabled {
		ledger, err := ProvideLedger(ctx, c.config, c.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize ledger: %w", err)
		}
		c.ledger = ledger
		c.logger.Info("Download ledger initialized", zap.String("path", c.config.Database.Path))
	}

	if c.config.Metrics.Enabled {
		c.metrics = metrics.New()
	}

	pipeline, err := ProvidePipeline(c.config, c.logger)
	if err != nil {
		c.closeLedger()
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	c.pipeline = pipeline

	var downloads port.DownloadRepository
	if c.ledger != nil {
		downloads = c.ledger.Downloads
	}
	c.invoices = service.NewInvoiceService(
		pipeline.Locator,
		pipeline.Reader,
		pipeline.Assembler,
		downloads,
		c.metrics,
		c.config.ServiceConfig(),
		c.logger.Named("invoice"),
	)

	c.ready.Store(true)
	c.logger.Info("Container started",
		zap.String("base_dir", c.config.Invoices.BaseDir),
		zap.Bool("ledger", c.ledger != nil),
		zap.Bool("metrics", c.metrics != nil))
	return nil
}

// Close releases the ledger database
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	err := c.closeLedger()
	c.ready.Store(false)
	c.closed.Store(true)
	c.logger.Info("Container closed")
	return err
}

func (c *Container) closeLedger() error {
	if c.ledger == nil {
		return nil
	}
	err := c.ledger.DB.Close()
	c.ledger = nil
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health checks the invoice directory and, when enabled, the ledger database
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.pipeline != nil {
		if _, err := c.pipeline.Locator.ListYears(); err != nil {
			status.Components["invoices"] = ComponentHealth{Healthy: false, Message: err.Error()}
			status.Overall = false
		} else {
			status.Components["invoices"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["invoices"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.ledger != nil {
		if err := c.ledger.DB.PingContext(ctx); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else if c.config.Database.Enabled {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Invoices returns the invoice service
func (c *Container) Invoices() service.InvoiceService {
	return c.invoices
}

// Pipeline returns the pipeline stages
func (c *Container) Pipeline() *PipelineBundle {
	return c.pipeline
}

// Metrics returns the metrics registry, nil when disabled
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Logger returns the container logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}
