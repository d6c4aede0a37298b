package elasticsearch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	elastictypes "github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/google/uuid"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/dataset"
	"github.com/brightboard/brightboard/storage"
)

type datasetDocument struct {
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (document datasetDocument) toDataset(id uuid.UUID) dataset.Dataset {
	return dataset.Dataset{
		ID:        id,
		Name:      document.Name,
		UserID:    document.UserID,
		URL:       document.URL,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}
}

func (elastic ElasticsearchDB) CreateDataset(
	ctx context.Context,
	meta dataset.Dataset,
	content []byte,
) error {
	return elastic.indexDataset(ctx, meta, string(content))
}

func (elastic ElasticsearchDB) UpdateDataset(
	ctx context.Context,
	meta dataset.Dataset,
	content []byte,
) error {
	if content == nil {
		existingContent, err := elastic.DatasetContent(ctx, meta.ID)
		if err != nil {
			return wrap.Error(err, "failed to fetch existing content for dataset update")
		}
		content = existingContent
	}

	return elastic.indexDataset(ctx, meta, string(content))
}

func (elastic ElasticsearchDB) indexDataset(
	ctx context.Context,
	meta dataset.Dataset,
	content string,
) error {
	document := datasetDocument{
		Name:      meta.Name,
		UserID:    meta.UserID,
		URL:       meta.URL,
		Content:   content,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
	}

	_, err := elastic.client.Index(datasetsIndex).Id(meta.ID.String()).Request(document).Do(ctx)
	if err != nil {
		return wrapElasticErrorf(err, "index request failed for dataset '%s'", meta.ID)
	}

	return nil
}

func (elastic ElasticsearchDB) getDatasetDocument(
	ctx context.Context,
	id uuid.UUID,
) (datasetDocument, error) {
	result, err := elastic.client.Get(datasetsIndex, id.String()).Do(ctx)
	if err != nil {
		if isElasticNotFound(err) {
			return datasetDocument{}, storage.ErrNotFound
		}
		return datasetDocument{}, wrapElasticErrorf(err, "get request failed for dataset '%s'", id)
	}
	if !result.Found {
		return datasetDocument{}, storage.ErrNotFound
	}

	var document datasetDocument
	if err := json.Unmarshal(result.Source_, &document); err != nil {
		return datasetDocument{}, wrap.Error(err, "failed to parse stored dataset document")
	}

	return document, nil
}

func (elastic ElasticsearchDB) GetDataset(
	ctx context.Context,
	id uuid.UUID,
) (dataset.Dataset, error) {
	document, err := elastic.getDatasetDocument(ctx, id)
	if err != nil {
		return dataset.Dataset{}, err
	}

	return document.toDataset(id), nil
}

func (elastic ElasticsearchDB) DatasetContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	document, err := elastic.getDatasetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	return []byte(document.Content), nil
}

func (elastic ElasticsearchDB) ListDatasets(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[dataset.Dataset], error) {
	offset := page.Offset()
	size := page.PageSize

	result, err := elastic.client.Search().Index(datasetsIndex).Request(&search.Request{
		From:  &offset,
		Size:  &size,
		Query: &elastictypes.Query{MatchAll: elastictypes.NewMatchAllQuery()},
		Sort: []elastictypes.SortCombinations{
			elastictypes.SortOptions{
				SortOptions: map[string]elastictypes.FieldSort{
					"created_at": {Order: &sortorder.Desc},
				},
			},
		},
	}).Do(ctx)
	if err != nil {
		return storage.Page[dataset.Dataset]{}, wrapElasticError(
			err,
			"dataset listing search failed",
		)
	}

	datasets := make([]dataset.Dataset, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		if hit.Id_ == nil {
			continue
		}

		id, err := uuid.Parse(*hit.Id_)
		if err != nil {
			return storage.Page[dataset.Dataset]{}, wrap.Errorf(
				err,
				"invalid dataset ID '%s' in index",
				*hit.Id_,
			)
		}

		var document datasetDocument
		if err := json.Unmarshal(hit.Source_, &document); err != nil {
			return storage.Page[dataset.Dataset]{}, wrap.Error(
				err,
				"failed to parse stored dataset document",
			)
		}

		datasets = append(datasets, document.toDataset(id))
	}

	var total int
	if result.Hits.Total != nil {
		total = int(result.Hits.Total.Value)
	}

	return storage.NewPage(datasets, total, page), nil
}

func (elastic ElasticsearchDB) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	_, err := elastic.client.Delete(datasetsIndex, id.String()).Do(ctx)
	if err != nil {
		if isElasticNotFound(err) {
			return storage.ErrNotFound
		}
		return wrapElasticErrorf(err, "delete request failed for dataset '%s'", id)
	}

	return nil
}
