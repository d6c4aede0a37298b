package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"hermannm.dev/devlog/log"

	"github.com/brightboard/brightboard/analysis"
	"github.com/brightboard/brightboard/cache"
	"github.com/brightboard/brightboard/dataset"
	"github.com/brightboard/brightboard/messaging"
	"github.com/brightboard/brightboard/storage"
)

const maxUploadSize = 32 << 20 // 32 MB

// Expects a multipart form with:
//   - 'file': the dataset's records, as a JSON array of flat objects or a CSV file
//   - 'name': display name for the dataset
//   - 'userId' (optional): the owning user; defaults to the bearer token's subject
func (api DashboardAPI) CreateDataset(res http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		sendClientError(res, err, "failed to parse dataset upload form")
		return
	}

	content, err := uploadedDatasetContent(res, req)
	if err != nil {
		return
	}

	name := req.FormValue("name")
	if name == "" {
		sendClientError(res, nil, "missing 'name' field in upload form")
		return
	}

	userID := req.FormValue("userId")
	if userID == "" {
		userID, _ = req.Context().Value(contextUserID).(string)
	}

	meta := dataset.New(name, userID)
	if err := api.store.CreateDataset(req.Context(), meta, content); err != nil {
		sendServerError(res, err, "failed to store dataset")
		return
	}

	datasetUploads.Inc()
	api.publishDatasetEvent(messaging.TopicDatasetCreated, meta)
	sendData(res, meta)
}

func (api DashboardAPI) ListDatasets(res http.ResponseWriter, req *http.Request) {
	page, err := pageRequestFromQuery(req)
	if err != nil {
		sendClientError(res, err, "invalid pagination parameters")
		return
	}

	datasets, err := api.store.ListDatasets(req.Context(), page)
	if err != nil {
		sendServerError(res, err, "failed to list datasets")
		return
	}

	sendPage(res, datasets)
}

func (api DashboardAPI) GetDataset(res http.ResponseWriter, req *http.Request) {
	id, err := datasetIDFromPath(req)
	if err != nil {
		sendClientError(res, err, "invalid dataset ID")
		return
	}

	meta, err := api.store.GetDataset(req.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendNotFound(res, "dataset not found")
			return
		}
		sendServerError(res, err, "failed to get dataset")
		return
	}

	sendData(res, meta)
}

// Expects a multipart form with an optional 'name' field and an optional 'file' field. Omitted
// fields keep their stored values.
func (api DashboardAPI) UpdateDataset(res http.ResponseWriter, req *http.Request) {
	id, err := datasetIDFromPath(req)
	if err != nil {
		sendClientError(res, err, "invalid dataset ID")
		return
	}

	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		sendClientError(res, err, "failed to parse dataset update form")
		return
	}

	meta, err := api.store.GetDataset(req.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendNotFound(res, "dataset not found")
			return
		}
		sendServerError(res, err, "failed to get dataset")
		return
	}

	if name := req.FormValue("name"); name != "" {
		meta.Name = name
	}

	var content []byte
	if req.MultipartForm != nil && len(req.MultipartForm.File["file"]) > 0 {
		content, err = uploadedDatasetContent(res, req)
		if err != nil {
			return
		}
	}

	meta.UpdatedAt = time.Now().UTC()
	if err := api.store.UpdateDataset(req.Context(), meta, content); err != nil {
		sendServerError(res, err, "failed to update dataset")
		return
	}

	api.invalidateCachedContent(req, id)
	api.publishDatasetEvent(messaging.TopicDatasetUpdated, meta)
	sendData(res, meta)
}

func (api DashboardAPI) DeleteDataset(res http.ResponseWriter, req *http.Request) {
	id, err := datasetIDFromPath(req)
	if err != nil {
		sendClientError(res, err, "invalid dataset ID")
		return
	}

	meta, err := api.store.GetDataset(req.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendNotFound(res, "dataset not found")
			return
		}
		sendServerError(res, err, "failed to get dataset")
		return
	}

	if err := api.store.DeleteDataset(req.Context(), id); err != nil {
		sendServerError(res, err, "failed to delete dataset")
		return
	}

	api.invalidateCachedContent(req, id)
	api.publishDatasetEvent(messaging.TopicDatasetDeleted, meta)
	sendData(res, meta)
}

// Serves the dataset's raw record array.
func (api DashboardAPI) DatasetContent(res http.ResponseWriter, req *http.Request) {
	id, err := datasetIDFromPath(req)
	if err != nil {
		sendClientError(res, err, "invalid dataset ID")
		return
	}

	content, err := api.datasetContent(req, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendNotFound(res, "dataset not found")
			return
		}
		sendServerError(res, err, "failed to get dataset content")
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(content); err != nil {
		log.ErrorCause(err, "failed to write dataset content response")
	}
}

// Expects a JSON-encoded analysis.Selection body (may be empty for default field selection).
// Returns the dataset's field descriptors, the applied selection and the computed chart data.
func (api DashboardAPI) AnalyzeDataset(res http.ResponseWriter, req *http.Request) {
	id, err := datasetIDFromPath(req)
	if err != nil {
		sendClientError(res, err, "invalid dataset ID")
		return
	}

	var selection analysis.Selection
	if req.ContentLength != 0 {
		if err := decodeJSONBody(req, &selection); err != nil {
			sendClientError(res, err, "failed to parse selection from request body")
			return
		}
	}

	content, err := api.datasetContent(req, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendNotFound(res, "dataset not found")
			return
		}
		sendServerError(res, err, "failed to get dataset content")
		return
	}

	records, err := dataset.ParseRecords(content)
	if err != nil {
		sendServerError(res, err, "stored dataset content is invalid")
		return
	}

	result := analysis.RunAnalysis(records, selection, time.Now())
	datasetAnalyses.Inc()
	sendData(res, result)
}

// datasetContent looks up the dataset's content in the cache before falling back to the store.
func (api DashboardAPI) datasetContent(req *http.Request, id uuid.UUID) ([]byte, error) {
	ctx := req.Context()

	if api.cache != nil {
		content, err := api.cache.DatasetContent(ctx, id)
		if err == nil {
			cacheHits.Inc()
			return content, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.ErrorCause(err, "dataset content cache lookup failed")
		}
		cacheMisses.Inc()
	}

	content, err := api.store.DatasetContent(ctx, id)
	if err != nil {
		return nil, err
	}

	if api.cache != nil {
		if err := api.cache.StoreDatasetContent(ctx, id, content); err != nil {
			log.ErrorCause(err, "failed to cache dataset content")
		}
	}

	return content, nil
}

func (api DashboardAPI) invalidateCachedContent(req *http.Request, id uuid.UUID) {
	if api.cache == nil {
		return
	}

	if err := api.cache.InvalidateDataset(req.Context(), id); err != nil {
		log.ErrorCause(err, "failed to invalidate cached dataset content")
	}
}

// Dataset change events are best-effort: a publish failure is logged, not returned to the client.
func (api DashboardAPI) publishDatasetEvent(topic messaging.ChangeTopic, meta dataset.Dataset) {
	if api.events == nil {
		return
	}

	event := messaging.DatasetEvent{
		DatasetID: meta.ID,
		UserID:    meta.UserID,
		Timestamp: time.Now().UTC(),
	}
	if err := api.events.Publish(topic, event); err != nil {
		log.ErrorCause(err, "failed to publish dataset change event")
	}
}

// uploadedDatasetContent reads and validates the 'file' field of a dataset upload form. CSV
// files (by filename extension) are converted to the JSON record format before storage, so that
// both upload formats are served and analyzed the same way. Sends the error response itself, so
// callers should just return on error.
func uploadedDatasetContent(res http.ResponseWriter, req *http.Request) ([]byte, error) {
	file, header, err := req.FormFile("file")
	if err != nil {
		sendClientError(res, err, "failed to get file upload from request")
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		sendServerError(res, err, "failed to read uploaded file")
		return nil, err
	}

	if strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		_, converted, err := dataset.RecordsFromCSV(content)
		if err != nil {
			sendClientError(res, err, "invalid CSV dataset file")
			return nil, err
		}
		return converted, nil
	}

	if _, err := dataset.ParseRecords(content); err != nil {
		sendClientError(res, err, "invalid dataset file")
		return nil, err
	}

	return content, nil
}

func datasetIDFromPath(req *http.Request) (uuid.UUID, error) {
	return uuid.Parse(req.PathValue("id"))
}

func pageRequestFromQuery(req *http.Request) (storage.PageRequest, error) {
	page := storage.PageRequest{Page: 1, PageSize: storage.DefaultPageSize}

	query := req.URL.Query()
	if pageParam := query.Get("page"); pageParam != "" {
		parsed, err := strconv.Atoi(pageParam)
		if err != nil {
			return storage.PageRequest{}, err
		}
		page.Page = parsed
	}
	if sizeParam := query.Get("pageSize"); sizeParam != "" {
		parsed, err := strconv.Atoi(sizeParam)
		if err != nil {
			return storage.PageRequest{}, err
		}
		page.PageSize = parsed
	}

	if err := page.Validate(); err != nil {
		return storage.PageRequest{}, err
	}

	return page, nil
}
