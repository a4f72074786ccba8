package config

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
	"github.com/spf13/viper"
)

const (
	EnvProd = "production"
	EnvDev  = "development"
	EnvTest = "test"
)

// Config holds application configuration loaded from environment variables or config file.
type Config struct {
	AppEnv  string `mapstructure:"app_env" default:"development" validate:"required"`
	AppName string `mapstructure:"app_name" default:"oauth-api-bridge" validate:"required"`
	Port    string `mapstructure:"port" default:"8069" validate:"required"`

	// PublicBaseURL is the externally reachable base URL of this service. The
	// OAuth callback URI registered with providers is derived from it.
	PublicBaseURL string `mapstructure:"public_base_url" default:"http://localhost:8069" validate:"required,url"`

	// DatabaseFilter is a comma-separated list of database names this
	// instance serves. Requests naming any other database are rejected.
	DatabaseFilter string `mapstructure:"database_filter" default:"odoo" validate:"required"`
	DatabaseURL    string `secret:"true" mapstructure:"database_url" default:"bridge.db"`

	// DefaultRedirectURL is where the callback sends the browser when the
	// state parameter is too damaged to carry its own return address.
	DefaultRedirectURL string `mapstructure:"default_redirect_url" default:"http://localhost:3000/oauth-callback" validate:"required,url"`

	// WebLoginURL receives callbacks that do not belong to the frontend flow.
	WebLoginURL string `mapstructure:"web_login_url" default:"/web/login" validate:"required"`

	// APIKeyDefaultDays is the requested lifetime for issued keys, before the
	// per-group duration clamp is applied.
	APIKeyDefaultDays int `mapstructure:"api_key_default_days" default:"30" validate:"gte=0"`

	// SignupAllowed controls whether an unknown external identity may create
	// a local user on first login.
	SignupAllowed bool `mapstructure:"signup_allowed" default:"true"`

	// Logging
	LogLevel string `mapstructure:"log_level" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
}

// Load loads configuration from config file and environment variables using viper.
func Load() *Config {
	cfg := Config{}

	v := viper.New()
	v.AutomaticEnv()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	if err := defaults.Set(&cfg); err != nil {
		panic("failed to set struct defaults: " + err.Error())
	}

	// Bind env vars for each field
	typeOfCfg := reflect.TypeOf(cfg)
	for i := 0; i < typeOfCfg.NumField(); i++ {
		field := typeOfCfg.Field(i)
		key := field.Tag.Get("mapstructure")
		if key == "" {
			key = toSnakeCase(field.Name)
		}
		v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logger.Error("Error reading config file", "error", err)
		}
		logger.Warn("No config file found, using environment variables")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		logger.Warn("Could not unmarshal config", "error", err)
	}

	logger.Info("Loaded config", "config", cfg.String())

	return &cfg
}

func Validate(cfg *Config) error {
	validate := validator.New()
	return validate.Struct(cfg)
}

// AllowedDatabase reports whether name passes the database filter.
func (c *Config) AllowedDatabase(name string) bool {
	if name == "" {
		return false
	}
	for _, db := range strings.Split(c.DatabaseFilter, ",") {
		if strings.TrimSpace(db) == name {
			return true
		}
	}
	return false
}

// IsDev reports whether the service runs in a development or test environment.
// Cookie security attributes relax only when this is true.
func (c *Config) IsDev() bool {
	return c.AppEnv == EnvDev || c.AppEnv == EnvTest
}

// String returns a string representation of the config with secret fields redacted.
func (c *Config) String() string {
	v := reflect.ValueOf(*c)
	t := reflect.TypeOf(*c)
	var sb strings.Builder
	sb.WriteString("Config{")
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Name
		value := v.Field(i).Interface()
		if field.Tag.Get("secret") == "true" {
			value = "***REDACTED***"
		}
		sb.WriteString(name + ": " + toString(value))
		if i < t.NumField()-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// toString converts interface{} to string for String
func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toSnakeCase converts CamelCase to snake_case
func toSnakeCase(str string) string {
	runes := []rune(str)
	var out []rune
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				out = append(out, '_')
			}
		}
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}
