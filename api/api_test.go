package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/brightboard/brightboard/analysis"
	"github.com/brightboard/brightboard/config"
	"github.com/brightboard/brightboard/dataset"
	"github.com/brightboard/brightboard/storage"
)

const testJWTSecret = "test-secret"

// memoryStore is an in-memory storage.DashboardStore for testing handlers without a database.
type memoryStore struct {
	datasets map[uuid.UUID]dataset.Dataset
	contents map[uuid.UUID][]byte
	payments []storage.Payment
	users    []storage.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		datasets: make(map[uuid.UUID]dataset.Dataset),
		contents: make(map[uuid.UUID][]byte),
	}
}

func (store *memoryStore) CreateDataset(
	ctx context.Context,
	meta dataset.Dataset,
	content []byte,
) error {
	store.datasets[meta.ID] = meta
	store.contents[meta.ID] = content
	return nil
}

func (store *memoryStore) GetDataset(ctx context.Context, id uuid.UUID) (dataset.Dataset, error) {
	meta, ok := store.datasets[id]
	if !ok {
		return dataset.Dataset{}, storage.ErrNotFound
	}
	return meta, nil
}

func (store *memoryStore) ListDatasets(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[dataset.Dataset], error) {
	datasets := make([]dataset.Dataset, 0, len(store.datasets))
	for _, meta := range store.datasets {
		datasets = append(datasets, meta)
	}
	slices.SortFunc(datasets, func(a, b dataset.Dataset) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return paginate(datasets, page), nil
}

func (store *memoryStore) UpdateDataset(
	ctx context.Context,
	meta dataset.Dataset,
	content []byte,
) error {
	if _, ok := store.datasets[meta.ID]; !ok {
		return storage.ErrNotFound
	}
	store.datasets[meta.ID] = meta
	if content != nil {
		store.contents[meta.ID] = content
	}
	return nil
}

func (store *memoryStore) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	if _, ok := store.datasets[id]; !ok {
		return storage.ErrNotFound
	}
	delete(store.datasets, id)
	delete(store.contents, id)
	return nil
}

func (store *memoryStore) DatasetContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	content, ok := store.contents[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return content, nil
}

func (store *memoryStore) InsertPayments(ctx context.Context, payments []storage.Payment) error {
	store.payments = append(store.payments, payments...)
	return nil
}

func (store *memoryStore) ListPayments(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[storage.Payment], error) {
	return paginate(store.payments, page), nil
}

func (store *memoryStore) InsertUsers(ctx context.Context, users []storage.User) error {
	store.users = append(store.users, users...)
	return nil
}

func (store *memoryStore) ListUsers(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[storage.User], error) {
	return paginate(store.users, page), nil
}

func (store *memoryStore) PaymentStats(ctx context.Context) (storage.PaymentStats, error) {
	var stats storage.PaymentStats
	for _, payment := range store.payments {
		stats.TotalRevenue += payment.Amount
		stats.PaymentCount++
	}
	return stats, nil
}

func (store *memoryStore) CategoryStats(ctx context.Context) ([]storage.CategoryStat, error) {
	byCategory := make(map[string]storage.CategoryStat)
	var order []string
	for _, payment := range store.payments {
		stat, ok := byCategory[payment.Category]
		if !ok {
			stat = storage.CategoryStat{Category: payment.Category}
			order = append(order, payment.Category)
		}
		stat.Revenue += payment.Amount
		stat.Count++
		byCategory[payment.Category] = stat
	}

	stats := make([]storage.CategoryStat, 0, len(order))
	for _, category := range order {
		stats = append(stats, byCategory[category])
	}
	return stats, nil
}

func (store *memoryStore) AdminStats(ctx context.Context) (storage.AdminStats, error) {
	paymentStats, _ := store.PaymentStats(ctx)
	return storage.AdminStats{
		UserCount:    uint64(len(store.users)),
		DatasetCount: uint64(len(store.datasets)),
		PaymentCount: paymentStats.PaymentCount,
		TotalRevenue: paymentStats.TotalRevenue,
	}, nil
}

func paginate[Item any](items []Item, page storage.PageRequest) storage.Page[Item] {
	total := len(items)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)
	return storage.NewPage(items[start:end], total, page)
}

func newTestAPI(store storage.DashboardStore) DashboardAPI {
	testConfig := config.Config{
		BaseConfig: config.BaseConfig{
			API:  config.API{Port: "0"},
			Auth: config.Auth{JWTSecret: testJWTSecret},
		},
	}

	return NewDashboardAPI(store, nil, nil, http.NewServeMux(), testConfig)
}

func signTestToken(t *testing.T, userID string, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	return signed
}

func authorizedRequest(
	t *testing.T,
	method string,
	path string,
	body *bytes.Buffer,
	role string,
) *http.Request {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1", role))
	return req
}

func uploadForm(t *testing.T, name string, fileContent string) (*bytes.Buffer, string) {
	return uploadFormFile(t, name, "records.json", fileContent)
}

func uploadFormFile(
	t *testing.T,
	name string,
	fileName string,
	fileContent string,
) (*bytes.Buffer, string) {
	t.Helper()

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	if name != "" {
		if err := writer.WriteField("name", name); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if fileContent != "" {
		file, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := file.Write([]byte(fileContent)); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return &buffer, writer.FormDataContentType()
}

func decodeEnvelope[Data any](t *testing.T, res *httptest.ResponseRecorder) Data {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Data    Data `json:"data"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success response, got body: %s", res.Body.String())
	}

	return envelope.Data
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(newMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/datasets", nil)
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without token, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/datasets", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	res = httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 with invalid token, got %d", res.Code)
	}
}

func TestAdminRoleRequired(t *testing.T) {
	api := newTestAPI(newMemoryStore())

	req := authorizedRequest(t, http.MethodGet, "/stats/admin", nil, "member")
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for non-admin, got %d", res.Code)
	}

	req = authorizedRequest(t, http.MethodGet, "/stats/admin", nil, "admin")
	res = httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Errorf("expected status 200 for admin, got %d", res.Code)
	}
}

func TestCreateAndGetDataset(t *testing.T) {
	api := newTestAPI(newMemoryStore())

	records := `[{"category":"A","amount":10},{"category":"B","amount":30}]`
	form, contentType := uploadForm(t, "Payments Q1", records)

	req := authorizedRequest(t, http.MethodPost, "/datasets", form, "member")
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	created := decodeEnvelope[dataset.Dataset](t, res)
	if created.Name != "Payments Q1" {
		t.Errorf("expected dataset name 'Payments Q1', got '%s'", created.Name)
	}
	if created.UserID != "user-1" {
		t.Errorf("expected dataset owner 'user-1' from token, got '%s'", created.UserID)
	}
	if created.URL != dataset.ContentURL(created.ID) {
		t.Errorf("unexpected dataset content URL '%s'", created.URL)
	}

	req = authorizedRequest(t, http.MethodGet, "/datasets/"+created.ID.String(), nil, "member")
	res = httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	fetched := decodeEnvelope[dataset.Dataset](t, res)
	if fetched.ID != created.ID {
		t.Errorf("expected dataset ID %s, got %s", created.ID, fetched.ID)
	}

	req = authorizedRequest(
		t, http.MethodGet, "/datasets/"+created.ID.String()+"/content", nil, "member",
	)
	res = httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200 for content, got %d", res.Code)
	}
	if res.Body.String() != records {
		t.Errorf("expected raw record content in response, got: %s", res.Body.String())
	}
}

func TestCreateDatasetWithFormOwner(t *testing.T) {
	api := newTestAPI(newMemoryStore())

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	if err := writer.WriteField("name", "Team dataset"); err != nil {
		t.Fatalf("failed to write form field: %v", err)
	}
	if err := writer.WriteField("userId", "form-owner"); err != nil {
		t.Fatalf("failed to write form field: %v", err)
	}
	file, err := writer.CreateFormFile("file", "records.json")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := file.Write([]byte(`[{"amount": 10}]`)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := authorizedRequest(t, http.MethodPost, "/datasets", &buffer, "member")
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	created := decodeEnvelope[dataset.Dataset](t, res)
	if created.UserID != "form-owner" {
		t.Errorf("expected form 'userId' to set the owner, got '%s'", created.UserID)
	}
}

func TestCreateDatasetFromCSV(t *testing.T) {
	store := newMemoryStore()
	api := newTestAPI(store)

	form, contentType := uploadFormFile(t, "CSV import", "sales.csv", "category,amount\nA,10\nB,30\n")
	req := authorizedRequest(t, http.MethodPost, "/datasets", form, "member")
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	created := decodeEnvelope[dataset.Dataset](t, res)
	content, err := store.DatasetContent(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("failed to get stored content: %v", err)
	}

	records, err := dataset.ParseRecords(content)
	if err != nil {
		t.Fatalf("expected stored CSV content to be valid JSON records: %v", err)
	}
	if len(records.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records.Records))
	}
	if records.Records[0]["amount"] != 10.0 {
		t.Errorf("expected CSV numbers to be typed, got %v", records.Records[0]["amount"])
	}
}

func TestCreateDatasetRejectsInvalidContent(t *testing.T) {
	api := newTestAPI(newMemoryStore())

	form, contentType := uploadForm(t, "Broken", `{"not":"an array"}`)
	req := authorizedRequest(t, http.MethodPost, "/datasets", form, "member")
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid dataset file, got %d", res.Code)
	}
}

func TestGetDatasetNotFound(t *testing.T) {
	api := newTestAPI(newMemoryStore())

	req := authorizedRequest(t, http.MethodGet, "/datasets/"+uuid.NewString(), nil, "member")
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown dataset, got %d", res.Code)
	}
}

func TestDeleteDataset(t *testing.T) {
	store := newMemoryStore()
	api := newTestAPI(store)

	meta := dataset.New("To delete", "user-1")
	if err := store.CreateDataset(context.Background(), meta, []byte(`[{"a":1}]`)); err != nil {
		t.Fatal(err)
	}

	req := authorizedRequest(t, http.MethodDelete, "/datasets/"+meta.ID.String(), nil, "member")
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if _, ok := store.datasets[meta.ID]; ok {
		t.Error("expected dataset to be removed from store")
	}
}

func TestAnalyzeDataset(t *testing.T) {
	store := newMemoryStore()
	api := newTestAPI(store)

	meta := dataset.New("Sales", "user-1")
	records := `[
		{"category":"A","amount":10},
		{"category":"B","amount":30},
		{"category":"A","amount":5}
	]`
	if err := store.CreateDataset(context.Background(), meta, []byte(records)); err != nil {
		t.Fatal(err)
	}

	body := bytes.NewBufferString(`{"metrics":["amount"],"dimensions":["category"]}`)
	req := authorizedRequest(
		t, http.MethodPost, "/datasets/"+meta.ID.String()+"/analyze", body, "member",
	)
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	result := decodeEnvelope[analysis.Analysis](t, res)
	if total := result.Charts.Totals["amount"]; total != 45 {
		t.Errorf("expected total 45 for metric 'amount', got %v", total)
	}
	if len(result.Charts.Distribution) != 2 {
		t.Fatalf("expected 2 distribution segments, got %d", len(result.Charts.Distribution))
	}
	if result.Charts.Distribution[0].Name != "B" || result.Charts.Distribution[0].Value != 30 {
		t.Errorf("expected segment B=30 first, got %+v", result.Charts.Distribution[0])
	}
	if result.Charts.Distribution[1].Name != "A" || result.Charts.Distribution[1].Value != 15 {
		t.Errorf("expected segment A=15 second, got %+v", result.Charts.Distribution[1])
	}
}

func TestListDatasetsPagination(t *testing.T) {
	store := newMemoryStore()
	api := newTestAPI(store)

	for i := 0; i < 25; i++ {
		meta := dataset.New(fmt.Sprintf("Dataset %d", i), "user-1")
		meta.CreatedAt = time.Date(2025, time.January, 1+i, 0, 0, 0, 0, time.UTC)
		if err := store.CreateDataset(context.Background(), meta, []byte(`[]`)); err != nil {
			t.Fatal(err)
		}
	}

	req := authorizedRequest(t, http.MethodGet, "/datasets?page=2&pageSize=10", nil, "member")
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}

	var envelope struct {
		Success    bool              `json:"success"`
		Data       []dataset.Dataset `json:"data"`
		Total      int               `json:"total"`
		Page       int               `json:"page"`
		TotalPages int               `json:"totalPages"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}

	if !envelope.Success {
		t.Error("expected success response")
	}
	if len(envelope.Data) != 10 {
		t.Errorf("expected 10 datasets on page 2, got %d", len(envelope.Data))
	}
	if envelope.Total != 25 {
		t.Errorf("expected total 25, got %d", envelope.Total)
	}
	if envelope.Page != 2 {
		t.Errorf("expected page 2, got %d", envelope.Page)
	}
	if envelope.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", envelope.TotalPages)
	}
}

func TestListDatasetsInvalidPagination(t *testing.T) {
	api := newTestAPI(newMemoryStore())

	paths := []string{
		"/datasets?page=0",
		"/datasets?page=abc",
		"/datasets?pageSize=0",
		"/datasets?pageSize=101",
	}
	for _, path := range paths {
		req := authorizedRequest(t, http.MethodGet, path, nil, "member")
		res := httptest.NewRecorder()
		api.router.ServeHTTP(res, req)

		if res.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 for '%s', got %d", path, res.Code)
		}
	}
}

func TestCreatePayments(t *testing.T) {
	store := newMemoryStore()
	api := newTestAPI(store)

	body := bytes.NewBufferString(
		`[{"userId":"user-1","amount":99.5,"currency":"USD","category":"subscription","status":"completed"}]`,
	)
	req := authorizedRequest(t, http.MethodPost, "/payments", body, "admin")
	res := httptest.NewRecorder()
	api.router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	created := decodeEnvelope[[]storage.Payment](t, res)
	if len(created) != 1 {
		t.Fatalf("expected 1 created payment, got %d", len(created))
	}
	if created[0].ID == uuid.Nil {
		t.Error("expected payment to be assigned an ID")
	}
	if created[0].CreatedAt.IsZero() {
		t.Error("expected payment to be assigned a creation time")
	}
	if len(store.payments) != 1 {
		t.Errorf("expected 1 payment in store, got %d", len(store.payments))
	}
}
