package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/zne/errs"
)

// Format is a configuration file syntax.
type Format uint8

const (
	FormatYAML Format = iota + 1
	FormatTOML
)

var formatNames = map[Format]string{
	FormatYAML: "yaml",
	FormatTOML: "toml",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return "unknown"
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: configuration format of %q", errs.ErrUnknownName, path)
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (StrategyConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return StrategyConfig{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return StrategyConfig{}, fmt.Errorf("load config: %w", err)
	}

	return Parse(data, format)
}

// Parse decodes and validates a configuration. Unknown keys are rejected.
func Parse(data []byte, format Format) (StrategyConfig, error) {
	var (
		cfg StrategyConfig
		err error
	)

	switch format {
	case FormatYAML:
		cfg, err = decodeYAML(bytes.NewReader(data))
	case FormatTOML:
		cfg, err = decodeTOML(data)
	default:
		return StrategyConfig{}, fmt.Errorf("%w: configuration format %d", errs.ErrUnknownName, format)
	}
	if err != nil {
		return StrategyConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return StrategyConfig{}, err
	}

	return cfg, nil
}

func decodeYAML(r io.Reader) (StrategyConfig, error) {
	var cfg StrategyConfig

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return StrategyConfig{}, fmt.Errorf("%w: empty configuration", errs.ErrInvalidValue)
		}

		return StrategyConfig{}, fmt.Errorf("%w: parse yaml: %w", errs.ErrInvalidValue, err)
	}

	return cfg, nil
}

func decodeTOML(data []byte) (StrategyConfig, error) {
	var cfg StrategyConfig

	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return StrategyConfig{}, fmt.Errorf("%w: parse toml: %w", errs.ErrInvalidValue, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return StrategyConfig{}, fmt.Errorf("%w: unknown toml keys %s", errs.ErrInvalidValue, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// Encode writes c in the given format.
func (c StrategyConfig) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}

		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(c)
	default:
		return fmt.Errorf("%w: configuration format %d", errs.ErrUnknownName, format)
	}
}
