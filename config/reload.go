package config

import (
	"fmt"
	"log/slog"
)

// Reload re-reads the configuration from its original source file,
// validates it and swaps it into the provider. Used by the SIGHUP
// handler.
func Reload(provider *Provider, logger *slog.Logger) error {
	current := provider.Get()
	if current.Source == "" {
		return fmt.Errorf("config was not loaded from a file, nothing to reload")
	}

	newCfg, err := Load(current.Source, logger)
	if err != nil {
		logger.Error("reload: failed to load new configuration", "source", current.Source, "error", err)
		return fmt.Errorf("failed to reload configuration from %s: %w", current.Source, err)
	}

	provider.Update(newCfg)
	logger.Info("configuration reloaded", "source", current.Source)
	return nil
}
