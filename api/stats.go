package api

import "net/http"

func (api DashboardAPI) PaymentStats(res http.ResponseWriter, req *http.Request) {
	stats, err := api.store.PaymentStats(req.Context())
	if err != nil {
		sendServerError(res, err, "failed to get payment statistics")
		return
	}

	sendData(res, stats)
}

func (api DashboardAPI) CategoryStats(res http.ResponseWriter, req *http.Request) {
	stats, err := api.store.CategoryStats(req.Context())
	if err != nil {
		sendServerError(res, err, "failed to get category statistics")
		return
	}

	sendData(res, stats)
}

func (api DashboardAPI) AdminStats(res http.ResponseWriter, req *http.Request) {
	stats, err := api.store.AdminStats(req.Context())
	if err != nil {
		sendServerError(res, err, "failed to get admin statistics")
		return
	}

	sendData(res, stats)
}
