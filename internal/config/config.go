// Package config loads the stockview configuration: built-in defaults, then an
// optional YAML file, then .env files and environment variables. CLI flags are
// applied last by the commands themselves.
package config

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/stockview/internal/indicator"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/version"
	"github.com/rxtech-lab/stockview/internal/viewer"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvPolygonApiKey = "POLYGON_API_KEY"
	EnvProvider      = "STOCKVIEW_PROVIDER"
	EnvDataPath      = "STOCKVIEW_DATA_PATH"
	EnvSymbol        = "STOCKVIEW_SYMBOL"
	EnvPeriod        = "STOCKVIEW_PERIOD"
	EnvServerAddr    = "STOCKVIEW_ADDR"
	EnvLogLevel      = "STOCKVIEW_LOG_LEVEL"
	EnvTimeout       = "STOCKVIEW_TIMEOUT"
)

type Config struct {
	Version  string         `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=stockview version the file was written for"`
	Provider ProviderConfig `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider settings"`
	Chart    ChartConfig    `yaml:"chart" json:"chart" jsonschema:"title=Chart,description=Default chart request"`
	Server   ServerConfig   `yaml:"server" json:"server" jsonschema:"title=Server,description=HTTP server settings"`
	Log      LogConfig      `yaml:"log" json:"log" jsonschema:"title=Log,description=Logging settings"`
}

type ProviderConfig struct {
	Type           provider.ProviderType `yaml:"type" json:"type" jsonschema:"title=Type,description=Where bars come from,enum=yahoo,enum=polygon,enum=binance,enum=file,default=yahoo" validate:"required,oneof=yahoo polygon binance file"`
	PolygonApiKey  string                `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" jsonschema:"title=Polygon API Key,description=Required for the polygon provider. Prefer the POLYGON_API_KEY environment variable" validate:"required_if=Type polygon"`
	DataPath       string                `yaml:"data_path" json:"data_path,omitempty" jsonschema:"title=Data Path,description=Parquet file read by the file provider" validate:"required_if=Type file"`
	YahooBaseURL   string                `yaml:"yahoo_base_url" json:"yahoo_base_url,omitempty" jsonschema:"title=Yahoo Base URL,format=uri" validate:"omitempty,url"`
	BinanceBaseURL string                `yaml:"binance_base_url" json:"binance_base_url,omitempty" jsonschema:"title=Binance Base URL,format=uri" validate:"omitempty,url"`
	Timeout        time.Duration         `yaml:"timeout" json:"timeout" jsonschema:"title=Timeout,description=Per request timeout such as 30s" validate:"gte=0"`
}

type ChartConfig struct {
	Symbol                    string         `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,default=AAPL" validate:"required,max=32"`
	Period                    types.Period   `yaml:"period" json:"period" jsonschema:"title=Period,enum=1d,enum=1mo,enum=3mo,enum=6mo,enum=1y,enum=5y,default=1mo" validate:"required,oneof=1d 1mo 3mo 6mo 1y 5y"`
	PlotType                  types.PlotType `yaml:"plot_type" json:"plot_type" jsonschema:"title=Plot Type,enum=candlestick,enum=line,default=candlestick" validate:"required,oneof=candlestick line"`
	Sma                       bool           `yaml:"sma" json:"sma" jsonschema:"title=Simple Moving Average,default=true"`
	SmaWindow                 int            `yaml:"sma_window" json:"sma_window" jsonschema:"title=SMA Window,minimum=1,default=50" validate:"gte=1"`
	Bollinger                 bool           `yaml:"bollinger" json:"bollinger" jsonschema:"title=Bollinger Bands,default=false"`
	BollingerWindow           int            `yaml:"bollinger_window" json:"bollinger_window" jsonschema:"title=Bollinger Window,minimum=1,default=50" validate:"gte=1"`
	BollingerStdDevMultiplier float64        `yaml:"bollinger_multiplier" json:"bollinger_multiplier" jsonschema:"title=Bollinger Multiplier,default=2"`
	Width                     int            `yaml:"width" json:"width" jsonschema:"title=Width,description=Terminal chart width in columns,minimum=20,default=100" validate:"gte=20"`
	Height                    int            `yaml:"height" json:"height" jsonschema:"title=Height,description=Terminal chart height in rows,minimum=5,default=20" validate:"gte=5"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr" jsonschema:"title=Address,default=:8080" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" jsonschema:"title=Read Timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" jsonschema:"title=Write Timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level    string `yaml:"level" json:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`
	Encoding string `yaml:"encoding" json:"encoding" jsonschema:"title=Encoding,enum=json,enum=console,default=json" validate:"oneof=json console"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Version:  version.GetVersion(),
		Provider: ProviderConfig{
			Type:    provider.ProviderYahoo,
			Timeout: 30 * time.Second,
		},
		Chart: ChartConfig{
			Symbol:                    "AAPL",
			Period:                    types.DefaultPeriod,
			PlotType:                  types.PlotTypeCandlestick,
			Sma:                       true,
			SmaWindow:                 indicator.DefaultSmaWindow,
			Bollinger:                 false,
			BollingerWindow:           indicator.DefaultBollingerWindow,
			BollingerStdDevMultiplier: indicator.DefaultBollingerStdDevMultiplier,
			Width:                     100,
			Height:                    20,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// The result is not validated; call Validate after applying overrides.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), config.Version); err != nil {
		return Config{}, err
	}

	return config, nil
}

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load %s", path)
		}
	}

	return nil
}

// ApplyEnv overrides fields from the environment using lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPolygonApiKey); ok && v != "" {
		c.Provider.PolygonApiKey = v
	}

	if v, ok := lookup(EnvProvider); ok && v != "" {
		c.Provider.Type = provider.ProviderType(v)
	}

	if v, ok := lookup(EnvDataPath); ok && v != "" {
		c.Provider.DataPath = v
	}

	if v, ok := lookup(EnvSymbol); ok && v != "" {
		c.Chart.Symbol = v
	}

	if v, ok := lookup(EnvPeriod); ok && v != "" {
		c.Chart.Period = types.Period(v)
	}

	if v, ok := lookup(EnvServerAddr); ok && v != "" {
		c.Server.Addr = v
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			seconds, atoiErr := strconv.Atoi(v)
			if atoiErr != nil {
				return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s %q", EnvTimeout, v)
			}

			timeout = time.Duration(seconds) * time.Second
		}

		c.Provider.Timeout = timeout
	}

	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return c.IndicatorRequest().Validate()
}

// ClientConfig returns the market data client settings.
func (c Config) ClientConfig() marketdata.ClientConfig {
	return marketdata.ClientConfig{
		ProviderType:   c.Provider.Type,
		PolygonApiKey:  c.Provider.PolygonApiKey,
		DataPath:       c.Provider.DataPath,
		YahooBaseURL:   c.Provider.YahooBaseURL,
		BinanceBaseURL: c.Provider.BinanceBaseURL,
		Timeout:        c.Provider.Timeout,
	}
}

// IndicatorRequest returns the overlays of the default chart. Line segments
// follow the plot type.
func (c Config) IndicatorRequest() indicator.IndicatorRequest {
	return indicator.IndicatorRequest{
		IncludeSma:                c.Chart.Sma,
		SmaWindow:                 c.Chart.SmaWindow,
		IncludeBollinger:          c.Chart.Bollinger,
		BollingerWindow:           c.Chart.BollingerWindow,
		BollingerStdDevMultiplier: c.Chart.BollingerStdDevMultiplier,
		IncludeLineSegments:       c.Chart.PlotType == types.PlotTypeLine,
	}
}

// ViewRequest returns the chart drawn when no flag or query overrides it.
func (c Config) ViewRequest() viewer.Request {
	return viewer.Request{
		Symbol:     c.Chart.Symbol,
		Period:     c.Chart.Period,
		PlotType:   c.Chart.PlotType,
		Indicators: c.IndicatorRequest(),
	}
}

func (c Config) LoggerOptions() logger.Options {
	opts := logger.DefaultOptions()
	opts.Level = c.Log.Level
	opts.Encoding = c.Log.Encoding

	return opts
}

// GenerateSchema generates a JSON schema for the config file.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(time.Duration(0)) {
				return &jsonschema.Schema{
					Type:    "string",
					Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "stockview-config"
	schema.Description = "Configuration schema for stockview"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates an indented JSON schema string for the config file.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// Files written by WriteSchemaFiles.
const (
	SchemaFileName = "stockview-config.json"
	SampleFileName = "stockview-config.yaml"
)

// WriteSchemaFiles writes the JSON schema into dir, and a sample config using
// the defaults unless one is already there. The sample links the schema for
// the yaml language server.
func WriteSchemaFiles(dir string) (schemaPath, samplePath string, written bool, err error) {
	config := Default()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", "", false, err
	}

	schemaPath = filepath.Join(dir, SchemaFileName)
	samplePath = filepath.Join(dir, SampleFileName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", false, err
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0o644); err != nil {
		return "", "", false, err
	}

	if _, err := os.Stat(samplePath); err == nil {
		return schemaPath, samplePath, false, nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return "", "", false, err
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+SchemaFileName+"\n"), yamlBytes...)

	if err := os.WriteFile(samplePath, yamlBytes, 0o644); err != nil {
		return "", "", false, err
	}

	return schemaPath, samplePath, true, nil
}
