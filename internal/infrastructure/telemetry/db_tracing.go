package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled  bool
	DBSystem string // defaults to "postgresql"
}

// RegisterOtelGorm installs the otelgorm plugin on db. Query variables are
// never attached to spans since they carry prices and quantities.
func RegisterOtelGorm(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	system := cfg.DBSystem
	if system == "" {
		system = "postgresql"
	}

	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(system),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.String("db_system", system))
	return nil
}
