package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/learnsmart/internal/classifier"
	"github.com/at-ishikawa/learnsmart/internal/config"
)

// LoadModel loads the configured burnout model, from cfg.URL when set and cfg.Path otherwise.
// When the model is not required, a missing or broken artifact is logged and LoadModel returns
// a nil classifier, which runs the engine in degraded mode.
func LoadModel(ctx context.Context, cfg config.ModelConfig) (classifier.Classifier, error) {
	model, source, err := loadModel(ctx, cfg)
	if err == nil {
		slog.InfoContext(ctx, "burnout model loaded", "source", source, "classes", model.Classes())
		return model, nil
	}
	if cfg.Required {
		return nil, err
	}
	slog.WarnContext(ctx, "burnout model unavailable, running degraded", "source", source, "error", err)
	return nil, nil
}

func loadModel(ctx context.Context, cfg config.ModelConfig) (classifier.Classifier, string, error) {
	if cfg.URL != "" {
		fetcher := classifier.NewFetcher(cfg.FetchAttempts)
		defer fetcher.Close()

		model, err := fetcher.Fetch(ctx, cfg.URL)
		return model, cfg.URL, err
	}
	if cfg.Path == "" {
		return nil, "", fmt.Errorf("no model path or url configured")
	}
	model, err := classifier.Load(cfg.Path)
	return model, cfg.Path, err
}
