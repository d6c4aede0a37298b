package clickhouse

import (
	"context"
	"time"

	"github.com/google/uuid"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/dataset"
	"github.com/brightboard/brightboard/storage"
)

type datasetRow struct {
	ID        string    `ch:"id"`
	Name      string    `ch:"name"`
	UserID    string    `ch:"user_id"`
	URL       string    `ch:"url"`
	CreatedAt time.Time `ch:"created_at"`
	UpdatedAt time.Time `ch:"updated_at"`
}

func (row datasetRow) toDataset() (dataset.Dataset, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return dataset.Dataset{}, wrap.Errorf(err, "invalid dataset ID '%s' in database", row.ID)
	}

	return dataset.Dataset{
		ID:        id,
		Name:      row.Name,
		UserID:    row.UserID,
		URL:       row.URL,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (db ClickHouseDB) CreateDataset(
	ctx context.Context,
	meta dataset.Dataset,
	content []byte,
) error {
	return db.insertDatasetVersion(ctx, meta, content)
}

func (db ClickHouseDB) UpdateDataset(
	ctx context.Context,
	meta dataset.Dataset,
	content []byte,
) error {
	// ReplacingMergeTree updates are whole-row re-inserts, so a metadata-only update has to
	// carry the existing content forward.
	if content == nil {
		existingContent, err := db.DatasetContent(ctx, meta.ID)
		if err != nil {
			return wrap.Error(err, "failed to fetch existing content for dataset update")
		}
		content = existingContent
	}

	return db.insertDatasetVersion(ctx, meta, content)
}

func (db ClickHouseDB) insertDatasetVersion(
	ctx context.Context,
	meta dataset.Dataset,
	content []byte,
) error {
	batch, err := db.conn.PrepareBatch(ctx, "INSERT INTO "+datasetsTable)
	if err != nil {
		return wrap.Error(err, "failed to prepare dataset insert")
	}

	err = batch.Append(
		meta.ID.String(),
		meta.Name,
		meta.UserID,
		meta.URL,
		string(content),
		meta.CreatedAt,
		meta.UpdatedAt,
	)
	if err != nil {
		return wrap.Error(err, "failed to add dataset to insert batch")
	}

	if err := batch.Send(); err != nil {
		return wrap.Error(err, "dataset insert failed")
	}

	return nil
}

func (db ClickHouseDB) GetDataset(ctx context.Context, id uuid.UUID) (dataset.Dataset, error) {
	rows, err := db.conn.Query(
		ctx,
		"SELECT id, name, user_id, url, created_at, updated_at FROM "+datasetsTable+
			" FINAL WHERE id = ?",
		id.String(),
	)
	if err != nil {
		return dataset.Dataset{}, wrap.Error(err, "dataset lookup query failed")
	}
	defer rows.Close()

	if !rows.Next() {
		return dataset.Dataset{}, storage.ErrNotFound
	}

	var row datasetRow
	if err := rows.ScanStruct(&row); err != nil {
		return dataset.Dataset{}, wrap.Error(err, "failed to scan dataset row")
	}

	return row.toDataset()
}

func (db ClickHouseDB) ListDatasets(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[dataset.Dataset], error) {
	total, err := db.countDatasets(ctx)
	if err != nil {
		return storage.Page[dataset.Dataset]{}, err
	}

	var query QueryBuilder
	query.WriteString("SELECT id, name, user_id, url, created_at, updated_at FROM ")
	query.WriteIdentifier(datasetsTable)
	query.WriteString(" FINAL ORDER BY created_at DESC LIMIT ")
	query.WriteInt(page.PageSize)
	query.WriteString(" OFFSET ")
	query.WriteInt(page.Offset())

	var rows []datasetRow
	if err := db.conn.Select(ctx, &rows, query.String()); err != nil {
		return storage.Page[dataset.Dataset]{}, wrap.Error(err, "dataset listing query failed")
	}

	datasets := make([]dataset.Dataset, 0, len(rows))
	for _, row := range rows {
		converted, err := row.toDataset()
		if err != nil {
			return storage.Page[dataset.Dataset]{}, err
		}
		datasets = append(datasets, converted)
	}

	return storage.NewPage(datasets, int(total), page), nil
}

func (db ClickHouseDB) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	err := db.conn.Exec(
		ctx,
		"ALTER TABLE "+datasetsTable+" DELETE WHERE id = ?",
		id.String(),
	)
	if err != nil {
		return wrap.Error(err, "dataset delete query failed")
	}

	return nil
}

func (db ClickHouseDB) DatasetContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	rows, err := db.conn.Query(
		ctx,
		"SELECT content FROM "+datasetsTable+" FINAL WHERE id = ?",
		id.String(),
	)
	if err != nil {
		return nil, wrap.Error(err, "dataset content query failed")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, storage.ErrNotFound
	}

	var content string
	if err := rows.Scan(&content); err != nil {
		return nil, wrap.Error(err, "failed to scan dataset content")
	}

	return []byte(content), nil
}
