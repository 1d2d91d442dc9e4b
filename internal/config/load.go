package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. APISERVER_SERVER_ADDR.
const EnvPrefix = "APISERVER"

// ErrHelp is returned by Load when -h or --help was requested. The usage
// has already been printed.
var ErrHelp = pflag.ErrHelp

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.origin":           "*",
	"server.static_folder":    "",
	"server.timeout":          30 * time.Second,
	"server.shutdown_timeout": 15 * time.Second,
	"server.log_level":        "info",
	"server.compression":      true,
	"server.docs_ui":          "swagger",
	"server.rate_limit.rps":   0.0,
	"server.rate_limit.burst": 0,
	"api.version":             "v1",
	"api.spec_file":           "",
	"api.secret":              "",
	"api.root":                "",
	"api.strict":              false,
	"api.error_details":       false,
	"mongo.uri":               "",
	"mongo.connect_timeout":   10 * time.Second,
}

// flags maps command line flags onto configuration keys.
var flags = []struct {
	name, key, usage string
}{
	{"addr", "server.addr", "listen address"},
	{"origin", "server.origin", "allowed CORS origin"},
	{"static", "server.static_folder", "folder served for unmatched paths"},
	{"log-level", "server.log_level", "debug, info, warn or error"},
	{"docs-ui", "server.docs_ui", "swagger, redoc or scalar"},
	{"api-version", "api.version", "mount prefix of the api"},
	{"spec", "api.spec_file", "OpenAPI document to serve"},
	{"api-root", "api.root", "path prefix stripped before routing"},
	{"mongo-uri", "mongo.uri", "MongoDB connection string for the readiness probe"},
}

// Load builds the configuration from args, usually os.Args[1:].
func Load(args []string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	fs := pflag.NewFlagSet("apiserver", pflag.ContinueOnError)
	configFile := fs.StringP("config", "c", "", "config file (json, yaml or toml)")
	for _, f := range flags {
		fs.String(f.name, fmt.Sprint(defaults[f.key]), f.usage)
	}
	fs.Bool("strict", false, "refuse to start with an invalid OpenAPI document")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for _, f := range flags {
		if err := v.BindPFlag(f.key, fs.Lookup(f.name)); err != nil {
			return nil, fmt.Errorf("config: bind flag %s: %w", f.name, err)
		}
	}
	if err := v.BindPFlag("api.strict", fs.Lookup("strict")); err != nil {
		return nil, fmt.Errorf("config: bind flag strict: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", *configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid fields: %s: %w", strings.Join(fields, ", "), err)
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
