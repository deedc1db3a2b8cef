package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Primary struct {
			DSN string `mapstructure:"dsn"`
		} `mapstructure:"primary"`
	} `mapstructure:"database"`

	Classifier struct {
		GoogleApiKey string `mapstructure:"google_api_key"`
		OpenaiApiKey string `mapstructure:"openai_api_key"`
		GeminiModel  string `mapstructure:"gemini_model"`
		OpenaiModel  string `mapstructure:"openai_model"`
	} `mapstructure:"classifier"`

	Server struct {
		Addr string `mapstructure:"addr"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	// Credentials and connection strings come from the environment in
	// deployment; the config file is for everything else.
	viper.BindEnv("classifier.google_api_key", "GOOGLE_API_KEY")
	viper.BindEnv("classifier.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("database.primary.dsn", "DATABASE_URL")
	viper.BindEnv("redis.address", "REDIS_ADDR")

	viper.SetDefault("server.addr", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("worker.concurrency", 4)
	viper.SetDefault("worker.queues", map[string]int{"default": 1})

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; env vars and defaults may be enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
