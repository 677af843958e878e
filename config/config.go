package config

import (
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "DATASERVICE"

type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Schema        SchemaConfig        `mapstructure:"schema"`
	Authorisation AuthorisationConfig `mapstructure:"authorisation"`
	Query         QueryConfig         `mapstructure:"query"`
	Log           LogConfig           `mapstructure:"log"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type SchemaConfig struct {
	File string `mapstructure:"file"`
}

type AuthorisationConfig struct {
	// Policy is a casbin policy CSV file. When empty every read is allowed.
	Policy string `mapstructure:"policy"`
	// Role is the role queries run as from the command line.
	Role string `mapstructure:"role"`
}

type QueryConfig struct {
	LargeCollectionThreshold int `mapstructure:"largeCollectionThreshold"`
	ChunkSize                int `mapstructure:"chunkSize"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TracingConfig struct {
	// Endpoint of an OTLP HTTP collector. Tracing is disabled when empty.
	Endpoint string `mapstructure:"endpoint"`
}

// Load reads configuration from the given file, if any, with every key
// overridable by a DATASERVICE_ prefixed environment variable, e.g.
// DATASERVICE_DATABASE_URL.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("schema.file", "schema.yaml")
	v.SetDefault("authorisation.policy", "")
	v.SetDefault("authorisation.role", "")
	v.SetDefault("query.largeCollectionThreshold", 20000)
	v.SetDefault("query.chunkSize", 5000)
	v.SetDefault("log.level", "error")
	v.SetDefault("tracing.endpoint", "")
}
