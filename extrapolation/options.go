package extrapolation

import (
	"go.uber.org/zap"

	"github.com/arloliu/zne/internal/logging"
	"github.com/arloliu/zne/internal/options"
)

type config struct {
	logger   *zap.Logger
	warnUser bool
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{warnUser: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	cfg.logger = logging.OrDefault(cfg.logger, "extrapolation")

	return cfg, nil
}

func (c *config) warn(msg string, fields ...zap.Field) {
	if c.warnUser {
		c.logger.Warn(msg, fields...)
	}
}

// Option configures an extrapolator.
type Option = options.Option[*config]

// WithLogger sets the logger receiving warnings and fit traces.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = logger
	})
}

// WithWarnUser enables or silences warnings.
func WithWarnUser(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.warnUser = enabled
	})
}
