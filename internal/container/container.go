package container

import (
	"context"
	"fmt"
	"os"

	"gopulse/adapters/excel"
	"gopulse/app"
	"gopulse/internal"
	"gopulse/internal/config"
	"gopulse/internal/lessons"
	"gopulse/internal/testkit"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Data sources
	TestKit *testkit.TestKit
	Catalog *lessons.Catalog
	Reader  *excel.DataReader

	// ExampleTable is the optional table preloaded from Data.ExampleFile
	ExampleTable *excel.Table

	Service *app.AnalysisService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLoggerTo(cfg.Log.Level, cfg.Log.Format, os.Stderr),
	}
	return c, nil
}

// Init builds the example kit, lesson catalog, table reader and service
func (c *Container) Init(ctx context.Context) error {
	if err := c.initTestKit(); err != nil {
		return fmt.Errorf("failed to initialize test kit: %w", err)
	}

	catalog, err := lessons.Load(c.Config.Examples.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load lesson catalog: %w", err)
	}
	c.Catalog = catalog
	c.Logger.Info("Loaded %d lessons from %s", len(catalog.Lessons), catalog.Source)

	c.Reader = excel.NewDataReader(excel.ReaderConfig{MaxRows: c.Config.Data.MaxRows}).WithLogger(c.Logger)
	if err := c.loadExampleTable(ctx); err != nil {
		return err
	}

	c.Service = app.NewAnalysisService(c.TestKit, c.Catalog, c.Reader, c.Logger)
	return nil
}

func (c *Container) initTestKit() error {
	torque := testkit.DefaultTorqueConfig()
	torque.Points = c.Config.Examples.TorquePoints

	c.TestKit = testkit.NewTestKit(c.Config.Examples.Seed).WithTorqueConfig(torque)
	_, err := c.TestKit.TorqueTension(context.Background())
	return err
}

func (c *Container) loadExampleTable(ctx context.Context) error {
	path := c.Config.Data.ExampleFile
	if path == "" {
		return nil
	}
	table, err := c.Reader.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load example file %s: %w", path, err)
	}
	c.ExampleTable = table
	c.Logger.Info("Playground example %s: %d rows, numeric columns %v", table.Name, table.RowCount(), table.NumericHeaders())
	return nil
}

// Shutdown flushes the logger
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Logger == nil {
		return nil
	}
	_ = c.Logger.Sync()
	return nil
}
