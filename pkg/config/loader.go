package config

import (
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of environment variables overriding the configuration.
// A single underscore separates levels, a double one stands for a literal
// underscore: MULTIBIT_LOG_LEVEL, MULTIBIT_PREFIX__FILE.
const EnvPrefix = "MULTIBIT_"

var ErrConfiguration = errors.New("configuration error")

// Load builds the configuration. configFile is optional.
func Load(configFile string) (Configuration, error) {
	conf := Default()

	parser := koanf.New(".")
	if err := parser.Load(structs.Provider(conf, "koanf"), nil); err != nil {
		return conf, errors.Wrap(ErrConfiguration, err.Error())
	}

	if len(configFile) != 0 {
		raw, err := os.ReadFile(configFile)
		if err != nil {
			return conf, errors.Wrapf(ErrConfiguration, "failed to read %s: %v", configFile, err)
		}
		if err := parser.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return conf, errors.Wrapf(ErrConfiguration, "failed to parse %s: %v", configFile, err)
		}
	}

	if err := parser.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, val string) (string, any) {
			tmp := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", `\:\`)
			tmp = strings.ReplaceAll(tmp, "_", ".")

			if strings.Contains(val, ",") {
				return strings.ReplaceAll(tmp, `\:\`, "_"), strings.Split(val, ",")
			}
			return strings.ReplaceAll(tmp, `\:\`, "_"), val
		},
	}), nil); err != nil {
		return conf, errors.Wrapf(ErrConfiguration, "failed to parse environment: %v", err)
	}

	if err := parser.UnmarshalWithConf("", &conf, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				logLevelDecodeHookFunc,
				logFormatDecodeHookFunc,
			),
			Result:           &conf,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return conf, errors.Wrapf(ErrConfiguration, "failed to decode: %v", err)
	}

	if err := Validate(conf); err != nil {
		return conf, err
	}

	return conf, nil
}

func logLevelDecodeHookFunc(from reflect.Type, to reflect.Type, val any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(zerolog.Level(0)) {
		return val, nil
	}

	level, err := zerolog.ParseLevel(strings.ToLower(val.(string)))
	if err != nil {
		return zerolog.InfoLevel, nil //nolint:nilerr
	}
	return level, nil
}

func logFormatDecodeHookFunc(from reflect.Type, to reflect.Type, val any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(LogFormat(0)) {
		return val, nil
	}

	if strings.EqualFold(val.(string), "json") {
		return LogJSONFormat, nil
	}
	return LogTextFormat, nil
}
