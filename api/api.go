// Package api implements the dashboard's HTTP API: dataset CRUD and analysis, payment and user
// listings, and aggregate statistics.
package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightboard/brightboard/cache"
	"github.com/brightboard/brightboard/config"
	"github.com/brightboard/brightboard/messaging"
	"github.com/brightboard/brightboard/storage"
)

type DashboardAPI struct {
	store storage.DashboardStore
	// cache and events are nil when the corresponding service is disabled in config.
	cache  *cache.ContentCache
	events *messaging.EventPublisher
	router *http.ServeMux
	config config.Config
}

func NewDashboardAPI(
	store storage.DashboardStore,
	contentCache *cache.ContentCache,
	events *messaging.EventPublisher,
	router *http.ServeMux,
	config config.Config,
) DashboardAPI {
	api := DashboardAPI{
		store:  store,
		cache:  contentCache,
		events: events,
		router: router,
		config: config,
	}

	router.HandleFunc("POST /datasets", api.requireAuth(api.CreateDataset))
	router.HandleFunc("GET /datasets", api.requireAuth(api.ListDatasets))
	router.HandleFunc("GET /datasets/{id}", api.requireAuth(api.GetDataset))
	router.HandleFunc("PUT /datasets/{id}", api.requireAuth(api.UpdateDataset))
	router.HandleFunc("DELETE /datasets/{id}", api.requireAuth(api.DeleteDataset))
	router.HandleFunc("GET /datasets/{id}/content", api.requireAuth(api.DatasetContent))
	router.HandleFunc("POST /datasets/{id}/analyze", api.requireAuth(api.AnalyzeDataset))

	router.HandleFunc("GET /stats/payments", api.requireAuth(api.PaymentStats))
	router.HandleFunc("GET /stats/categories", api.requireAuth(api.CategoryStats))
	router.HandleFunc("GET /stats/admin", api.requireAdmin(api.AdminStats))

	router.HandleFunc("GET /payments", api.requireAuth(api.ListPayments))
	router.HandleFunc("POST /payments", api.requireAdmin(api.CreatePayments))
	router.HandleFunc("GET /users", api.requireAdmin(api.ListUsers))
	router.HandleFunc("POST /users", api.requireAdmin(api.CreateUsers))

	router.Handle("GET /metrics", promhttp.Handler())

	return api
}

func (api DashboardAPI) ListenAndServe() error {
	return http.ListenAndServe(fmt.Sprintf(":%s", api.config.API.Port), api.router)
}
