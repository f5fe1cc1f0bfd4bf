// Package config manages ckvault's cleartext sidecar config file: vault
// location, clipboard timeout, first-run state, and the optional recovery
// sidecar. Atomic write follows the same temp-file-then-rename idiom
// pass-cli uses for its vault.meta sidecar.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ckvault/ckvault/internal/recovery"
)

const (
	fileName                    = "config.json"
	defaultClipboardTimeoutSecs = 10
)

// Config is the fixed-schema JSON sidecar, §6.3. unknown holds any JSON
// object keys Load didn't recognize, so Save can write them back
// unchanged instead of silently discarding a field a newer ckvault (or a
// hand-edit) added.
type Config struct {
	VaultPath            string           `json:"vault_path"`
	ClipboardTimeoutSecs int              `json:"clipboard_timeout_secs"`
	FirstRunComplete     bool             `json:"first_run_complete"`
	Recovery             *recovery.Config `json:"recovery"`

	unknown map[string]json.RawMessage
}

// knownKeys lists the JSON object keys Config's fields own, so the
// unknown-field overlay in Load/Save can tell a recognized key from one it
// must preserve verbatim.
var knownKeys = map[string]bool{
	"vault_path":             true,
	"clipboard_timeout_secs": true,
	"first_run_complete":     true,
	"recovery":               true,
}

// Resolve determines the ckvault home directory once at process start:
// $CKVAULT_HOME if set, else $HOME/.ckvault, mirroring pass-cli's
// PASS_CLI_CONFIG env-var-override pattern in config.GetConfigPath.
func Resolve() (string, error) {
	if home := os.Getenv("CKVAULT_HOME"); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".ckvault"), nil
}

func Path(homeDir string) string {
	return filepath.Join(homeDir, fileName)
}

// Default returns a fresh Config pointing at vault.ck inside homeDir.
func Default(homeDir string) Config {
	return Config{
		VaultPath:            filepath.Join(homeDir, "vault.ck"),
		ClipboardTimeoutSecs: defaultClipboardTimeoutSecs,
	}
}

// Load reads the config file under homeDir. A missing file is not an
// error: callers get Default(homeDir) instead, the same "absent sidecar
// is not a failure" convention pass-cli's LoadMetadata follows.
func Load(homeDir string) (Config, error) {
	data, err := os.ReadFile(Path(homeDir))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(homeDir), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config json: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("invalid config json: %w", err)
	}
	for key := range raw {
		if knownKeys[key] {
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		cfg.unknown = raw
	}
	if cfg.ClipboardTimeoutSecs <= 0 {
		cfg.ClipboardTimeoutSecs = defaultClipboardTimeoutSecs
	}
	return cfg, nil
}

// Save atomically writes cfg under homeDir: marshal, merge back any
// unknown fields Load preserved, write to a temp file, rename over the
// target.
func Save(homeDir string, cfg Config) error {
	if err := os.MkdirAll(homeDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	known, err := json.Marshal(struct {
		VaultPath            string           `json:"vault_path"`
		ClipboardTimeoutSecs int              `json:"clipboard_timeout_secs"`
		FirstRunComplete     bool             `json:"first_run_complete"`
		Recovery             *recovery.Config `json:"recovery"`
	}{cfg.VaultPath, cfg.ClipboardTimeoutSecs, cfg.FirstRunComplete, cfg.Recovery})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	for key, val := range cfg.unknown {
		merged[key] = val
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	tmpPath := filepath.Join(homeDir, ".config.json.tmp")
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp config: %w", err)
	}
	if err := os.Rename(tmpPath, Path(homeDir)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ClearRecovery removes the recovery sidecar from cfg and persists the
// change — used after a successful password recovery, since the stored
// blob is encrypted under the old answer-derived parameters and no
// longer corresponds to the new master key.
func ClearRecovery(homeDir string, cfg Config) error {
	cfg.Recovery = nil
	return Save(homeDir, cfg)
}
