package component

import (
	"log/slog"

	"github.com/c360/edistreams/metric"
	"github.com/c360/edistreams/natsclient"
	"github.com/c360/edistreams/schema"
)

// Dependencies bundles the external dependencies components are constructed
// with, so constructors take one structured argument instead of a parameter
// list that grows with every concern.
type Dependencies struct {
	NATSClient      *natsclient.Client // messaging client (can be nil for offline runs)
	MetricsRegistry *metric.Registry   // Prometheus registry (can be nil)
	Schemas         *schema.Registry   // transaction schema registry
	Logger          *slog.Logger       // structured logger (nil defaults to slog.Default)
}

// GetLogger returns the configured logger or the process default.
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithComponent returns a logger carrying the component name.
func (d *Dependencies) GetLoggerWithComponent(componentName string) *slog.Logger {
	return d.GetLogger().With("component", componentName)
}
