// Package client provides a typed client for the dashboard API, for use by other Go services
// (and our own integration tests).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/analysis"
	"github.com/brightboard/brightboard/dataset"
	"github.com/brightboard/brightboard/storage"
)

type DashboardClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewDashboardClient(baseURL string, authToken string) DashboardClient {
	return DashboardClient{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateDataset uploads the given records (a JSON array of flat objects) as a new dataset.
// The content is validated locally before uploading.
func (client DashboardClient) CreateDataset(
	ctx context.Context,
	name string,
	content []byte,
) (dataset.Dataset, error) {
	if _, err := dataset.ParseRecords(content); err != nil {
		return dataset.Dataset{}, wrap.Error(err, "invalid dataset content")
	}

	body, contentType, err := datasetUploadForm(name, content)
	if err != nil {
		return dataset.Dataset{}, err
	}

	req, err := client.newRequest(ctx, http.MethodPost, "/datasets", body)
	if err != nil {
		return dataset.Dataset{}, err
	}
	req.Header.Set("Content-Type", contentType)

	var created dataset.Dataset
	if err := client.doIntoData(req, &created); err != nil {
		return dataset.Dataset{}, wrap.Error(err, "dataset upload failed")
	}

	return created, nil
}

func (client DashboardClient) GetDataset(
	ctx context.Context,
	id uuid.UUID,
) (dataset.Dataset, error) {
	req, err := client.newRequest(ctx, http.MethodGet, "/datasets/"+id.String(), nil)
	if err != nil {
		return dataset.Dataset{}, err
	}

	var meta dataset.Dataset
	if err := client.doIntoData(req, &meta); err != nil {
		return dataset.Dataset{}, wrap.Errorf(err, "failed to get dataset '%s'", id)
	}

	return meta, nil
}

func (client DashboardClient) ListDatasets(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[dataset.Dataset], error) {
	return listPage[dataset.Dataset](ctx, client, "/datasets", page)
}

// UpdateDataset renames a dataset, and replaces its content if content is non-nil.
func (client DashboardClient) UpdateDataset(
	ctx context.Context,
	id uuid.UUID,
	name string,
	content []byte,
) (dataset.Dataset, error) {
	if content != nil {
		if _, err := dataset.ParseRecords(content); err != nil {
			return dataset.Dataset{}, wrap.Error(err, "invalid dataset content")
		}
	}

	body, contentType, err := datasetUploadForm(name, content)
	if err != nil {
		return dataset.Dataset{}, err
	}

	req, err := client.newRequest(ctx, http.MethodPut, "/datasets/"+id.String(), body)
	if err != nil {
		return dataset.Dataset{}, err
	}
	req.Header.Set("Content-Type", contentType)

	var updated dataset.Dataset
	if err := client.doIntoData(req, &updated); err != nil {
		return dataset.Dataset{}, wrap.Errorf(err, "failed to update dataset '%s'", id)
	}

	return updated, nil
}

func (client DashboardClient) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	req, err := client.newRequest(ctx, http.MethodDelete, "/datasets/"+id.String(), nil)
	if err != nil {
		return err
	}

	if err := client.doIntoData(req, &dataset.Dataset{}); err != nil {
		return wrap.Errorf(err, "failed to delete dataset '%s'", id)
	}

	return nil
}

// DatasetContent fetches and parses a dataset's records, ready for analysis.
func (client DashboardClient) DatasetContent(
	ctx context.Context,
	id uuid.UUID,
) (dataset.Collection, error) {
	req, err := client.newRequest(ctx, http.MethodGet, dataset.ContentURL(id), nil)
	if err != nil {
		return dataset.Collection{}, err
	}

	body, err := client.do(req)
	if err != nil {
		return dataset.Collection{}, wrap.Errorf(err, "failed to get content of dataset '%s'", id)
	}

	records, err := dataset.ParseRecords(body)
	if err != nil {
		return dataset.Collection{}, wrap.Errorf(err, "invalid content in dataset '%s'", id)
	}

	return records, nil
}

// Analyze runs a server-side analysis of the dataset with the given selection. An empty
// selection lets the server pick default fields.
func (client DashboardClient) Analyze(
	ctx context.Context,
	id uuid.UUID,
	selection analysis.Selection,
) (analysis.Analysis, error) {
	body, err := json.Marshal(selection)
	if err != nil {
		return analysis.Analysis{}, wrap.Error(err, "failed to encode selection")
	}

	req, err := client.newRequest(
		ctx, http.MethodPost, "/datasets/"+id.String()+"/analyze", bytes.NewReader(body),
	)
	if err != nil {
		return analysis.Analysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result analysis.Analysis
	if err := client.doIntoData(req, &result); err != nil {
		return analysis.Analysis{}, wrap.Errorf(err, "analysis failed for dataset '%s'", id)
	}

	return result, nil
}

func (client DashboardClient) PaymentStats(ctx context.Context) (storage.PaymentStats, error) {
	req, err := client.newRequest(ctx, http.MethodGet, "/stats/payments", nil)
	if err != nil {
		return storage.PaymentStats{}, err
	}

	var stats storage.PaymentStats
	if err := client.doIntoData(req, &stats); err != nil {
		return storage.PaymentStats{}, wrap.Error(err, "failed to get payment statistics")
	}

	return stats, nil
}

func (client DashboardClient) CategoryStats(ctx context.Context) ([]storage.CategoryStat, error) {
	req, err := client.newRequest(ctx, http.MethodGet, "/stats/categories", nil)
	if err != nil {
		return nil, err
	}

	var stats []storage.CategoryStat
	if err := client.doIntoData(req, &stats); err != nil {
		return nil, wrap.Error(err, "failed to get category statistics")
	}

	return stats, nil
}

func (client DashboardClient) AdminStats(ctx context.Context) (storage.AdminStats, error) {
	req, err := client.newRequest(ctx, http.MethodGet, "/stats/admin", nil)
	if err != nil {
		return storage.AdminStats{}, err
	}

	var stats storage.AdminStats
	if err := client.doIntoData(req, &stats); err != nil {
		return storage.AdminStats{}, wrap.Error(err, "failed to get admin statistics")
	}

	return stats, nil
}

func (client DashboardClient) ListPayments(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[storage.Payment], error) {
	return listPage[storage.Payment](ctx, client, "/payments", page)
}

func (client DashboardClient) ListUsers(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[storage.User], error) {
	return listPage[storage.User](ctx, client, "/users", page)
}

func (client DashboardClient) CreatePayments(
	ctx context.Context,
	payments []storage.Payment,
) ([]storage.Payment, error) {
	body, err := json.Marshal(payments)
	if err != nil {
		return nil, wrap.Error(err, "failed to encode payments")
	}

	req, err := client.newRequest(ctx, http.MethodPost, "/payments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created []storage.Payment
	if err := client.doIntoData(req, &created); err != nil {
		return nil, wrap.Error(err, "failed to create payments")
	}

	return created, nil
}

func (client DashboardClient) CreateUsers(
	ctx context.Context,
	users []storage.User,
) ([]storage.User, error) {
	body, err := json.Marshal(users)
	if err != nil {
		return nil, wrap.Error(err, "failed to encode users")
	}

	req, err := client.newRequest(ctx, http.MethodPost, "/users", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created []storage.User
	if err := client.doIntoData(req, &created); err != nil {
		return nil, wrap.Error(err, "failed to create users")
	}

	return created, nil
}

func (client DashboardClient) newRequest(
	ctx context.Context,
	method string,
	path string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return nil, wrap.Error(err, "failed to create request")
	}

	req.Header.Set("Authorization", "Bearer "+client.authToken)
	return req, nil
}

// do sends the request and returns the raw response body. Non-2xx responses become errors; the
// caller decides whether to retry.
func (client DashboardClient) do(req *http.Request) ([]byte, error) {
	res, err := client.httpClient.Do(req)
	if err != nil {
		return nil, wrap.Error(err, "request failed")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, wrap.Error(err, "failed to read response body")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%s (status %d)", bytes.TrimSpace(body), res.StatusCode)
	}

	return body, nil
}

func (client DashboardClient) doIntoData(req *http.Request, data any) error {
	body, err := client.do(req)
	if err != nil {
		return err
	}

	envelope := struct {
		Success bool `json:"success"`
		Data    any  `json:"data"`
	}{Data: data}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return wrap.Error(err, "failed to parse response body")
	}
	if !envelope.Success {
		return fmt.Errorf("server reported failure: %s", body)
	}

	return nil
}

func listPage[Item any](
	ctx context.Context,
	client DashboardClient,
	path string,
	page storage.PageRequest,
) (storage.Page[Item], error) {
	if err := page.Validate(); err != nil {
		return storage.Page[Item]{}, wrap.Error(err, "invalid page request")
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Page))
	query.Set("pageSize", strconv.Itoa(page.PageSize))

	req, err := client.newRequest(ctx, http.MethodGet, path+"?"+query.Encode(), nil)
	if err != nil {
		return storage.Page[Item]{}, err
	}

	body, err := client.do(req)
	if err != nil {
		return storage.Page[Item]{}, wrap.Errorf(err, "listing request failed for '%s'", path)
	}

	var envelope struct {
		Success    bool   `json:"success"`
		Data       []Item `json:"data"`
		Total      int    `json:"total"`
		Page       int    `json:"page"`
		TotalPages int    `json:"totalPages"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return storage.Page[Item]{}, wrap.Error(err, "failed to parse listing response")
	}
	if !envelope.Success {
		return storage.Page[Item]{}, fmt.Errorf("server reported failure: %s", body)
	}

	return storage.Page[Item]{
		Items:      envelope.Data,
		Total:      envelope.Total,
		Page:       envelope.Page,
		TotalPages: envelope.TotalPages,
	}, nil
}

func datasetUploadForm(name string, content []byte) (*bytes.Buffer, string, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	if name != "" {
		if err := writer.WriteField("name", name); err != nil {
			return nil, "", wrap.Error(err, "failed to write upload form field")
		}
	}
	if content != nil {
		file, err := writer.CreateFormFile("file", "records.json")
		if err != nil {
			return nil, "", wrap.Error(err, "failed to create upload form file")
		}
		if _, err := file.Write(content); err != nil {
			return nil, "", wrap.Error(err, "failed to write upload form file")
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", wrap.Error(err, "failed to finalize upload form")
	}

	return &buffer, writer.FormDataContentType(), nil
}
