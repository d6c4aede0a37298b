package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brightboard/brightboard/storage"
)

func (api DashboardAPI) ListPayments(res http.ResponseWriter, req *http.Request) {
	page, err := pageRequestFromQuery(req)
	if err != nil {
		sendClientError(res, err, "invalid pagination parameters")
		return
	}

	payments, err := api.store.ListPayments(req.Context(), page)
	if err != nil {
		sendServerError(res, err, "failed to list payments")
		return
	}

	sendPage(res, payments)
}

// Expects a JSON array of payments. Omitted IDs and timestamps are filled in.
func (api DashboardAPI) CreatePayments(res http.ResponseWriter, req *http.Request) {
	var payments []storage.Payment
	if err := decodeJSONBody(req, &payments); err != nil {
		sendClientError(res, err, "failed to parse payments from request body")
		return
	}
	if len(payments) == 0 {
		sendClientError(res, nil, "empty payment list in request body")
		return
	}

	now := time.Now().UTC()
	for i := range payments {
		if payments[i].ID == uuid.Nil {
			payments[i].ID = uuid.New()
		}
		if payments[i].CreatedAt.IsZero() {
			payments[i].CreatedAt = now
		}
	}

	if err := api.store.InsertPayments(req.Context(), payments); err != nil {
		sendServerError(res, err, "failed to store payments")
		return
	}

	sendData(res, payments)
}

func (api DashboardAPI) ListUsers(res http.ResponseWriter, req *http.Request) {
	page, err := pageRequestFromQuery(req)
	if err != nil {
		sendClientError(res, err, "invalid pagination parameters")
		return
	}

	users, err := api.store.ListUsers(req.Context(), page)
	if err != nil {
		sendServerError(res, err, "failed to list users")
		return
	}

	sendPage(res, users)
}

// Expects a JSON array of users. Omitted IDs and timestamps are filled in.
func (api DashboardAPI) CreateUsers(res http.ResponseWriter, req *http.Request) {
	var users []storage.User
	if err := decodeJSONBody(req, &users); err != nil {
		sendClientError(res, err, "failed to parse users from request body")
		return
	}
	if len(users) == 0 {
		sendClientError(res, nil, "empty user list in request body")
		return
	}

	now := time.Now().UTC()
	for i := range users {
		if users[i].ID == uuid.Nil {
			users[i].ID = uuid.New()
		}
		if users[i].CreatedAt.IsZero() {
			users[i].CreatedAt = now
		}
	}

	if err := api.store.InsertUsers(req.Context(), users); err != nil {
		sendServerError(res, err, "failed to store users")
		return
	}

	sendData(res, users)
}
