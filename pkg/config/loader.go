/*
 * Copyright 2025 BizSync Contributors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/siva-sub/bizsync/pkg/logger"
)

// ConfigLoader loads a configuration document into dst.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator allows a configuration to validate itself after loading.
type Validator interface {
	Validate() error
}

// FileConfigLoader loads configuration from a local JSON file.
type FileConfigLoader struct{}

// Load implements ConfigLoader by reading and unmarshaling a JSON file.
// Unrecognized keys are ignored; keys absent from the file keep whatever
// values dst already holds.
func (*FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	err = json.Unmarshal(data, dst)
	if err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	return nil
}

// Load resolves the configuration from an optional file path. A missing,
// unreadable, or malformed file is a warning, not an error: the built-in
// defaults are used instead.
func Load(ctx context.Context, path string, log logger.Logger) *Config {
	cfg := Default()

	if path == "" {
		return cfg
	}

	loader := &FileConfigLoader{}

	if err := loader.Load(ctx, path, cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load config file, using defaults")
		return Default()
	}

	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Invalid config file, using defaults")
		return Default()
	}

	return cfg
}
