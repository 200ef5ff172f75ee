package common

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultConfigPathEnv = "CONFIG_PATH"
	DefaultEnvPrefix     = "FAMILYNEST_"
)

//go:embed config.default.yaml
var defaultConfig []byte

// ConfigOptions controls where a ConfigManager reads from. Zero values fall
// back to CONFIG_PATH and the FAMILYNEST_ environment prefix.
type ConfigOptions struct {
	Path      string
	EnvPrefix string
	Defaults  []byte
}

// ConfigManager loads layered configuration into T: embedded defaults, an
// optional yaml/json file, then environment overrides.
type ConfigManager[T any] struct {
	kf     *koanf.Koanf
	config T
}

func NewConfigManager[T any]() (*ConfigManager[T], error) {
	return NewConfigManagerWithOptions[T](ConfigOptions{})
}

func NewConfigManagerWithOptions[T any](opts ConfigOptions) (*ConfigManager[T], error) {
	if opts.Path == "" {
		opts.Path = os.Getenv(DefaultConfigPathEnv)
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = DefaultEnvPrefix
	}
	if opts.Defaults == nil {
		opts.Defaults = defaultConfig
	}

	cm := &ConfigManager[T]{kf: koanf.New(".")}

	if err := cm.kf.Load(rawbytes.Provider(opts.Defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if opts.Path != "" {
		parser, err := parserFor(opts.Path)
		if err != nil {
			return nil, err
		}
		if err := cm.kf.Load(file.Provider(opts.Path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", opts.Path, err)
		}
	}

	if err := cm.kf.Load(env.Provider(opts.EnvPrefix, ".", cm.envKeyMapper(opts.EnvPrefix)), nil); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	if err := cm.unmarshal(); err != nil {
		return nil, err
	}

	return cm, nil
}

func (cm *ConfigManager[T]) GetConfig() T {
	return cm.config
}

// Koanf exposes the merged key space, mainly for debugging config layering.
func (cm *ConfigManager[T]) Koanf() *koanf.Koanf {
	return cm.kf
}

func (cm *ConfigManager[T]) unmarshal() error {
	var out T
	err := cm.kf.UnmarshalWithConf("", &out, koanf.UnmarshalConf{
		Tag: "key",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToSliceHook(","),
			),
			Metadata:         nil,
			Result:           &out,
			TagName:          "key",
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	cm.config = out
	return nil
}

// envKeyMapper maps FAMILYNEST_GATEWAY_HTTP_PORT onto gateway.http.port by
// matching case-insensitively against the keys already loaded. Unknown
// variables are dropped.
func (cm *ConfigManager[T]) envKeyMapper(prefix string) func(string) string {
	known := make(map[string]string)
	for _, key := range cm.kf.Keys() {
		known[strings.ToLower(strings.ReplaceAll(key, ".", "_"))] = key
	}

	return func(name string) string {
		name = strings.ToLower(strings.TrimPrefix(name, prefix))
		return known[name]
	}
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	}
	return nil, fmt.Errorf("unsupported config file extension: %s", path)
}

// stringToSliceHook splits env-provided strings into slices, leaving values that
// already arrived as lists from yaml alone.
func stringToSliceHook(sep string) mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
			return data, nil
		}
		raw := data.(string)
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}
