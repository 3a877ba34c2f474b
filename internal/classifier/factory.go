package classifier

import (
	"fmt"

	"github.com/pscheid92/socialsent/internal/adapter/metrics"
	"github.com/pscheid92/socialsent/internal/platform/config"
)

// NewFactory selects the backend named in cfg. It also returns the model
// identifier used to namespace cache keys. m may be nil.
func NewFactory(cfg *config.Config, m *metrics.ClassifierMetrics) (Factory, string, error) {
	switch cfg.ClassifierBackend {
	case config.BackendVader:
		return NewVaderFactory(m), VaderModel, nil
	case config.BackendHTTP:
		httpCfg := HTTPConfig{
			URL:         cfg.ClassifierURL,
			Token:       cfg.ClassifierToken,
			Model:       cfg.ClassifierModel,
			Timeout:     cfg.ClassifierTimeout,
			MaxAttempts: cfg.ClassifierMaxAttempts,
		}
		return NewHTTPFactory(httpCfg, m), cfg.ClassifierModel, nil
	default:
		return nil, "", fmt.Errorf("unknown classifier backend %q", cfg.ClassifierBackend)
	}
}
