package site

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads, schema-checks, and validates a site configuration file. The
// returned config has defaults applied and is safe to treat as immutable.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("site config read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a Config from raw JSON bytes.
func Parse(raw []byte) (Config, error) {
	if err := ValidateRaw(raw); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("site config unmarshal: %w", err)
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
