package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config captures every input that influences a command after merging defaults,
// config file values, and CLI overrides.
type Config struct {
	Spec       string
	Responses  []string
	Not        bool
	Schema     string
	Object     string
	Verbose    bool
	Color      bool
	ConfigPath string
}

func defaultConfig() Config {
	return Config{Color: true}
}

func resolveConfig(cmd *cobra.Command) (*Config, error) {
	cfg := defaultConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	return &cfg, nil
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	if flags.Changed("spec") {
		value, err := flags.GetString("spec")
		if err != nil {
			return err
		}
		cfg.Spec = value
	}
	if flags.Changed("response") {
		value, err := flags.GetStringArray("response")
		if err != nil {
			return err
		}
		cfg.Responses = value
	}
	if flags.Changed("not") {
		value, err := flags.GetBool("not")
		if err != nil {
			return err
		}
		cfg.Not = value
	}
	if flags.Changed("schema") {
		value, err := flags.GetString("schema")
		if err != nil {
			return err
		}
		cfg.Schema = value
	}
	if flags.Changed("object") {
		value, err := flags.GetString("object")
		if err != nil {
			return err
		}
		cfg.Object = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}
	if flags.Changed("no-color") {
		value, err := flags.GetBool("no-color")
		if err != nil {
			return err
		}
		cfg.Color = !value
	}
	return nil
}

func (c *Config) normalize() {
	c.Spec = strings.TrimSpace(c.Spec)
	c.Schema = strings.TrimSpace(c.Schema)
	c.Object = strings.TrimSpace(c.Object)
	c.Responses = sanitizeList(c.Responses)
}

func (c *Config) validateForValidate() error {
	if c.Spec == "" {
		return newUsageError("validate: --spec is required (set via flag or config file)")
	}
	if len(c.Responses) == 0 {
		return newUsageError("validate: at least one --response capture file is required")
	}
	return nil
}

func (c *Config) validateForSchema() error {
	if c.Spec == "" {
		return newUsageError("schema: --spec is required (set via flag or config file)")
	}
	if c.Schema == "" {
		return newUsageError("schema: --schema is required")
	}
	if c.Object == "" {
		return newUsageError("schema: --object is required")
	}
	return nil
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "spec":
			cfg.Spec, err = valueAsString(value)
		case "responses", "response":
			cfg.Responses, err = valueAsStringSlice(value)
		case "not":
			cfg.Not, err = valueAsBool(value)
		case "schema":
			cfg.Schema, err = valueAsString(value)
		case "object":
			cfg.Object, err = valueAsString(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		case "color":
			cfg.Color, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// sanitizeList trims entries and drops blanks and duplicates, keeping first occurrences.
func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
