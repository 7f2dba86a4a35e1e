package main

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/folio-sh/folio/config"
)

func handleDumpConfig(output io.Writer) error {
	cfg := config.NewDefaultConfig()
	if err := toml.NewEncoder(output).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
