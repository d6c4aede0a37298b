// Package storage defines the persistence interface of the dashboard, implemented by the
// clickhouse and elasticsearch subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/brightboard/brightboard/dataset"
)

// ErrNotFound is returned by lookups of datasets that don't exist (or were deleted).
var ErrNotFound = errors.New("not found")

type DashboardStore interface {
	CreateDataset(ctx context.Context, meta dataset.Dataset, content []byte) error
	GetDataset(ctx context.Context, id uuid.UUID) (dataset.Dataset, error)
	ListDatasets(ctx context.Context, page PageRequest) (Page[dataset.Dataset], error)
	// UpdateDataset replaces a dataset's metadata, and its content if content is non-nil.
	UpdateDataset(ctx context.Context, meta dataset.Dataset, content []byte) error
	DeleteDataset(ctx context.Context, id uuid.UUID) error
	DatasetContent(ctx context.Context, id uuid.UUID) ([]byte, error)

	InsertPayments(ctx context.Context, payments []Payment) error
	ListPayments(ctx context.Context, page PageRequest) (Page[Payment], error)
	InsertUsers(ctx context.Context, users []User) error
	ListUsers(ctx context.Context, page PageRequest) (Page[User], error)

	PaymentStats(ctx context.Context) (PaymentStats, error)
	CategoryStats(ctx context.Context) ([]CategoryStat, error)
	AdminStats(ctx context.Context) (AdminStats, error)
}
