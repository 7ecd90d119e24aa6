package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileTrigger writes alerts to a per-agent trigger artifact. Each write
// overwrites whatever alert the approver has not yet consumed.
type FileTrigger struct {
	dir    string
	logger zerolog.Logger
}

// NewFileTrigger constructs a trigger-file notifier rooted at dir.
func NewFileTrigger(dir string, logger zerolog.Logger) *FileTrigger {
	return &FileTrigger{
		dir:    dir,
		logger: logger.With().Str("component", "alert_trigger").Logger(),
	}
}

// Path returns the artifact location for one agent. Namespacing per agent
// keeps concurrent sentinels from clobbering each other's mailbox.
func (t *FileTrigger) Path(agent string) string {
	return filepath.Join(t.dir, "sentinel-trigger-"+agent+".json")
}

// Notify overwrites the agent's trigger artifact with the alert.
func (t *FileTrigger) Notify(_ context.Context, alert Alert) error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("ensure trigger dir: %w", err)
	}

	payload, err := json.MarshalIndent(alert, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	path := t.Path(alert.Agent)
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write trigger file: %w", err)
	}

	t.logger.Info().
		Str("agent", alert.Agent).
		Str("file", path).
		Str("price_usd", alert.PriceUSD.StringFixed(2)).
		Msg("alert written")
	return nil
}

var _ Notifier = (*FileTrigger)(nil)
