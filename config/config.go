package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"hermannm.dev/wrap"
)

type Config struct {
	BaseConfig
	ClickHouse    ClickHouse
	Elasticsearch Elasticsearch
	Redis         Redis
	RabbitMQ      RabbitMQ
}

type BaseConfig struct {
	IsProduction bool        `env:"PRODUCTION"`
	DB           SupportedDB `env:"DATABASE"`
	API          API
	Auth         Auth
	Optional     OptionalServices
}

type API struct {
	Port string `env:"API_PORT"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

// OptionalServices toggles the services that the dashboard can run without.
type OptionalServices struct {
	RedisEnabled    bool `env:"REDIS_ENABLED" envDefault:"false"`
	RabbitMQEnabled bool `env:"RABBITMQ_ENABLED" envDefault:"false"`
}

type ClickHouse struct {
	Address      string `env:"CLICKHOUSE_ADDRESS"`
	DatabaseName string `env:"CLICKHOUSE_DB_NAME"`
	Username     string `env:"CLICKHOUSE_USERNAME"`
	Password     string `env:"CLICKHOUSE_PASSWORD"`
	Debug        bool   `env:"CLICKHOUSE_DEBUG_ENABLED" envDefault:"false"`
}

type Elasticsearch struct {
	Address string `env:"ELASTICSEARCH_ADDRESS"`
	Debug   bool   `env:"ELASTICSEARCH_DEBUG_ENABLED" envDefault:"false"`
}

type Redis struct {
	Address  string `env:"REDIS_ADDRESS"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RabbitMQ struct {
	URL         string `env:"RABBITMQ_URL"`
	TopicPrefix string `env:"RABBITMQ_TOPIC_PREFIX" envDefault:"dashboard"`
}

type SupportedDB string

const (
	DBClickHouse    SupportedDB = "clickhouse"
	DBElasticsearch SupportedDB = "elasticsearch"
)

func ReadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil {
		return Config{}, wrap.Error(err, "failed to load .env file")
	}

	parseOptions := env.Options{RequiredIfNoDef: true}

	var config Config

	if err := env.ParseWithOptions(&config.BaseConfig, parseOptions); err != nil {
		return Config{}, err
	}

	switch config.DB {
	case DBClickHouse:
		if err := env.ParseWithOptions(&config.ClickHouse, parseOptions); err != nil {
			return Config{}, err
		}
	case DBElasticsearch:
		if err := env.ParseWithOptions(&config.Elasticsearch, parseOptions); err != nil {
			return Config{}, err
		}
	default:
		err := fmt.Errorf("must be one of: '%s', '%s'", DBClickHouse, DBElasticsearch)
		return Config{}, wrap.Errorf(err, "unsupported value '%s' for DATABASE in env", config.DB)
	}

	if config.Optional.RedisEnabled {
		if err := env.ParseWithOptions(&config.Redis, parseOptions); err != nil {
			return Config{}, err
		}
	}

	if config.Optional.RabbitMQEnabled {
		if err := env.ParseWithOptions(&config.RabbitMQ, parseOptions); err != nil {
			return Config{}, err
		}
	}

	return config, nil
}
