package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Model    ModelConfig
	LogLevel string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type ModelConfig struct {
	Name    string
	Path    string
	Version string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/iris-api")

	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", 10)
	viper.SetDefault("server.write_timeout", 10)
	viper.SetDefault("server.shutdown_timeout", 10)
	viper.SetDefault("model.name", "iris_classifier")
	viper.SetDefault("model.path", "iris_model.gob")
	viper.SetDefault("model.version", "1.0.0")
	viper.SetDefault("log_level", "info")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("IRIS_API")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetInt("server.port"),
			ReadTimeout:     viper.GetInt("server.read_timeout"),
			WriteTimeout:    viper.GetInt("server.write_timeout"),
			ShutdownTimeout: viper.GetInt("server.shutdown_timeout"),
		},
		Model: ModelConfig{
			Name:    viper.GetString("model.name"),
			Path:    viper.GetString("model.path"),
			Version: viper.GetString("model.version"),
		},
		LogLevel: viper.GetString("log_level"),
	}

	return cfg, nil
}
