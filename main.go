package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"hermannm.dev/devlog"
	"hermannm.dev/devlog/log"

	"github.com/brightboard/brightboard/api"
	"github.com/brightboard/brightboard/cache"
	"github.com/brightboard/brightboard/config"
	"github.com/brightboard/brightboard/messaging"
	"github.com/brightboard/brightboard/storage"
	"github.com/brightboard/brightboard/storage/clickhouse"
	"github.com/brightboard/brightboard/storage/elasticsearch"
)

func main() {
	logHandler := devlog.NewHandler(os.Stdout, &devlog.Options{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(logHandler))

	conf, err := config.ReadFromEnv()
	if err != nil {
		log.ErrorCause(err, "failed to read config from env")
		os.Exit(1)
	}

	store, err := initializeStore(conf)
	if err != nil {
		log.ErrorCause(err, "failed to initialize storage backend")
		os.Exit(1)
	}

	var contentCache *cache.ContentCache
	if conf.Optional.RedisEnabled {
		contentCache, err = cache.NewContentCache(conf)
		if err != nil {
			log.ErrorCause(err, "failed to initialize content cache")
			os.Exit(1)
		}
		defer contentCache.Close()
	}

	var events *messaging.EventPublisher
	if conf.Optional.RabbitMQEnabled {
		events, err = messaging.NewEventPublisher(conf)
		if err != nil {
			log.ErrorCause(err, "failed to initialize event publisher")
			os.Exit(1)
		}
		defer events.Close()
	}

	dashboardAPI := api.NewDashboardAPI(store, contentCache, events, http.NewServeMux(), conf)

	log.Info("server started", slog.String("port", conf.API.Port), slog.String("db", string(conf.DB)))
	if err := dashboardAPI.ListenAndServe(); err != nil {
		log.ErrorCause(err, "server stopped")
		os.Exit(1)
	}
}

func initializeStore(conf config.Config) (storage.DashboardStore, error) {
	switch conf.DB {
	case config.DBClickHouse:
		return clickhouse.NewClickHouseDB(conf)
	case config.DBElasticsearch:
		return elasticsearch.NewElasticsearchDB(conf)
	default:
		return nil, fmt.Errorf("unsupported database '%s' in config", conf.DB)
	}
}
