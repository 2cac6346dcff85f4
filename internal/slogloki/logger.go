package slogloki

import (
	"fmt"
	"log/slog"

	"github.com/grafana/loki-client-go/loki"
	"github.com/grafana/loki-client-go/pkg/labelutil"
	"github.com/prometheus/common/model"
)

// NewLokiLogger returns a logger pushing to lokiURL and a func flushing the
// client's pending batches; call it before exit.
func NewLokiLogger(serviceName string, lokiURL string, logLevel slog.Level) (*slog.Logger, func(), error) {
	config, err := loki.NewDefaultConfig(lokiURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create new loki config: %w", err)
	}

	config.ExternalLabels = labelutil.LabelSet{
		LabelSet: model.LabelSet{
			"service_name": model.LabelValue(serviceName),
		},
	}

	client, err := loki.New(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create new loki client for %s: %w", lokiURL, err)
	}

	return slog.New(Option{Level: logLevel, Client: client}.NewLokiHandler()), client.Stop, nil
}
