// Package elasticsearch implements the dashboard's storage interface on Elasticsearch.
package elasticsearch

import (
	"context"

	"github.com/elastic/go-elasticsearch/v8"
	elastictypes "github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/config"
)

type ElasticsearchDB struct {
	client *elasticsearch.TypedClient
}

func NewElasticsearchDB(config config.Config) (ElasticsearchDB, error) {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses:         []string{config.Elasticsearch.Address},
		EnableDebugLogger: config.Elasticsearch.Debug,
	})
	if err != nil {
		return ElasticsearchDB{}, wrap.Error(err, "failed to connect to Elasticsearch")
	}

	elastic := ElasticsearchDB{client: client}

	if err := elastic.createIndices(context.Background()); err != nil {
		return ElasticsearchDB{}, wrap.Error(err, "failed to create dashboard indices")
	}

	return elastic, nil
}

const (
	datasetsIndex = "datasets"
	paymentsIndex = "payments"
	usersIndex    = "users"
)

func (elastic ElasticsearchDB) createIndices(ctx context.Context) error {
	indexMappings := map[string]*elastictypes.TypeMapping{
		datasetsIndex: {
			Properties: map[string]elastictypes.Property{
				"name":       elastictypes.NewKeywordProperty(),
				"user_id":    elastictypes.NewKeywordProperty(),
				"url":        elastictypes.NewKeywordProperty(),
				"content":    elastictypes.NewTextProperty(),
				"created_at": elastictypes.NewDateProperty(),
				"updated_at": elastictypes.NewDateProperty(),
			},
		},
		paymentsIndex: {
			Properties: map[string]elastictypes.Property{
				"user_id":    elastictypes.NewKeywordProperty(),
				"amount":     elastictypes.NewDoubleNumberProperty(),
				"currency":   elastictypes.NewKeywordProperty(),
				"category":   elastictypes.NewKeywordProperty(),
				"status":     elastictypes.NewKeywordProperty(),
				"created_at": elastictypes.NewDateProperty(),
			},
		},
		usersIndex: {
			Properties: map[string]elastictypes.Property{
				"email":      elastictypes.NewKeywordProperty(),
				"name":       elastictypes.NewKeywordProperty(),
				"role":       elastictypes.NewKeywordProperty(),
				"created_at": elastictypes.NewDateProperty(),
			},
		},
	}

	for index, mappings := range indexMappings {
		exists, err := elastic.client.Indices.Exists(index).Do(ctx)
		if err != nil {
			return wrapElasticErrorf(err, "failed to check if index '%s' exists", index)
		}
		if exists {
			continue
		}

		if _, err := elastic.client.Indices.Create(index).Mappings(mappings).Do(ctx); err != nil {
			return wrapElasticErrorf(err, "index creation request failed for '%s'", index)
		}
	}

	return nil
}
