package api

import (
	"encoding/json"
	"net/http"

	"hermannm.dev/devlog/log"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/storage"
)

type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type pageEnvelope struct {
	Success    bool `json:"success"`
	Data       any  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
}

func sendJSON(res http.ResponseWriter, value any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(res).Encode(value); err != nil {
		log.ErrorCause(err, "failed to serialize response")
	}
}

func sendData(res http.ResponseWriter, value any) {
	sendJSON(res, dataEnvelope{Success: true, Data: value})
}

func sendPage[Item any](res http.ResponseWriter, page storage.Page[Item]) {
	sendJSON(res, pageEnvelope{
		Success:    true,
		Data:       page.Items,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

func decodeJSONBody(req *http.Request, target any) error {
	return json.NewDecoder(req.Body).Decode(target)
}

func sendClientError(res http.ResponseWriter, err error, message string) {
	if err != nil {
		message = wrap.Error(err, message).Error()
	}

	http.Error(res, message, http.StatusBadRequest)
}

func sendServerError(res http.ResponseWriter, err error, message string) {
	log.ErrorCause(err, message)
	http.Error(res, message, http.StatusInternalServerError)
}

func sendNotFound(res http.ResponseWriter, message string) {
	http.Error(res, message, http.StatusNotFound)
}
