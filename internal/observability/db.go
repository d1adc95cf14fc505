package observability

import (
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-exercise-tracker/internal/config"
)

// InstrumentDB attaches the GORM OpenTelemetry plugin so every query becomes
// a child span of the request. It is a no-op when tracing is disabled.
func InstrumentDB(db *gorm.DB, cfg config.OTELConfig) error {
	if !cfg.Enabled || db == nil {
		return nil
	}
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}
