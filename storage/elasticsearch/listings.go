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

	"github.com/brightboard/brightboard/storage"
)

type paymentDocument struct {
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type userDocument struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (elastic ElasticsearchDB) InsertPayments(
	ctx context.Context,
	payments []storage.Payment,
) error {
	bulk := elastic.client.Bulk()

	for i, payment := range payments {
		idString := payment.ID.String()
		index := paymentsIndex
		operation := elastictypes.CreateOperation{Id_: &idString, Index_: &index}

		document := paymentDocument{
			UserID:    payment.UserID,
			Amount:    payment.Amount,
			Currency:  payment.Currency,
			Category:  payment.Category,
			Status:    payment.Status,
			CreatedAt: payment.CreatedAt,
		}

		documentJSON, err := json.Marshal(document)
		if err != nil {
			return wrap.Errorf(err, "failed to encode payment %d for bulk insert", i)
		}

		if err := bulk.CreateOp(operation, documentJSON); err != nil {
			return wrap.Errorf(err, "failed to add payment %d to bulk insert", i)
		}
	}

	if _, err := bulk.Do(ctx); err != nil {
		return wrapElasticError(err, "payment bulk insert request failed")
	}

	return nil
}

func (elastic ElasticsearchDB) InsertUsers(ctx context.Context, users []storage.User) error {
	bulk := elastic.client.Bulk()

	for i, user := range users {
		idString := user.ID.String()
		index := usersIndex
		operation := elastictypes.CreateOperation{Id_: &idString, Index_: &index}

		document := userDocument{
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		}

		documentJSON, err := json.Marshal(document)
		if err != nil {
			return wrap.Errorf(err, "failed to encode user %d for bulk insert", i)
		}

		if err := bulk.CreateOp(operation, documentJSON); err != nil {
			return wrap.Errorf(err, "failed to add user %d to bulk insert", i)
		}
	}

	if _, err := bulk.Do(ctx); err != nil {
		return wrapElasticError(err, "user bulk insert request failed")
	}

	return nil
}

func (elastic ElasticsearchDB) searchPage(
	ctx context.Context,
	index string,
	page storage.PageRequest,
) (*search.Response, error) {
	offset := page.Offset()
	size := page.PageSize

	result, err := elastic.client.Search().Index(index).Request(&search.Request{
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
		return nil, wrapElasticErrorf(err, "listing search failed for index '%s'", index)
	}

	return result, nil
}

func (elastic ElasticsearchDB) ListPayments(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[storage.Payment], error) {
	result, err := elastic.searchPage(ctx, paymentsIndex, page)
	if err != nil {
		return storage.Page[storage.Payment]{}, err
	}

	payments := make([]storage.Payment, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		if hit.Id_ == nil {
			continue
		}

		id, err := uuid.Parse(*hit.Id_)
		if err != nil {
			return storage.Page[storage.Payment]{}, wrap.Errorf(
				err,
				"invalid payment ID '%s' in index",
				*hit.Id_,
			)
		}

		var document paymentDocument
		if err := json.Unmarshal(hit.Source_, &document); err != nil {
			return storage.Page[storage.Payment]{}, wrap.Error(
				err,
				"failed to parse stored payment document",
			)
		}

		payments = append(payments, storage.Payment{
			ID:        id,
			UserID:    document.UserID,
			Amount:    document.Amount,
			Currency:  document.Currency,
			Category:  document.Category,
			Status:    document.Status,
			CreatedAt: document.CreatedAt,
		})
	}

	var total int
	if result.Hits.Total != nil {
		total = int(result.Hits.Total.Value)
	}

	return storage.NewPage(payments, total, page), nil
}

func (elastic ElasticsearchDB) ListUsers(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[storage.User], error) {
	result, err := elastic.searchPage(ctx, usersIndex, page)
	if err != nil {
		return storage.Page[storage.User]{}, err
	}

	users := make([]storage.User, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		if hit.Id_ == nil {
			continue
		}

		id, err := uuid.Parse(*hit.Id_)
		if err != nil {
			return storage.Page[storage.User]{}, wrap.Errorf(
				err,
				"invalid user ID '%s' in index",
				*hit.Id_,
			)
		}

		var document userDocument
		if err := json.Unmarshal(hit.Source_, &document); err != nil {
			return storage.Page[storage.User]{}, wrap.Error(
				err,
				"failed to parse stored user document",
			)
		}

		users = append(users, storage.User{
			ID:        id,
			Email:     document.Email,
			Name:      document.Name,
			Role:      document.Role,
			CreatedAt: document.CreatedAt,
		})
	}

	var total int
	if result.Hits.Total != nil {
		total = int(result.Hits.Total.Value)
	}

	return storage.NewPage(users, total, page), nil
}
