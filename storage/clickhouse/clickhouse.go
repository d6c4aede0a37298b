// Package clickhouse implements the dashboard's storage interface on ClickHouse.
package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/config"
)

type ClickHouseDB struct {
	conn driver.Conn
}

func NewClickHouseDB(config config.Config) (ClickHouseDB, error) {
	// Options docs: https://clickhouse.com/docs/en/integrations/go#connection-settings
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{config.ClickHouse.Address},
		Auth: clickhouse.Auth{
			Database: config.ClickHouse.DatabaseName,
			Username: config.ClickHouse.Username,
			Password: config.ClickHouse.Password,
		},
		Debug: config.ClickHouse.Debug,
		Debugf: func(format string, v ...any) {
			fmt.Printf(format+"\n", v...)
		},
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	})
	if err != nil {
		return ClickHouseDB{}, wrap.Error(err, "failed to connect to ClickHouse")
	}

	if err := conn.Ping(context.Background()); err != nil {
		return ClickHouseDB{}, wrap.Error(err, "failed to ping ClickHouse connection")
	}

	db := ClickHouseDB{conn: conn}

	if err := db.createTables(context.Background()); err != nil {
		return ClickHouseDB{}, wrap.Error(err, "failed to create dashboard tables")
	}

	return db, nil
}

const (
	datasetsTable = "datasets"
	paymentsTable = "payments"
	usersTable    = "users"
)

func (db ClickHouseDB) createTables(ctx context.Context) error {
	// Datasets use ReplacingMergeTree so that updates are plain re-inserts; reads go through
	// FINAL to collapse row versions.
	tableDefinitions := []string{
		`CREATE TABLE IF NOT EXISTS ` + datasetsTable + ` (
			id UUID,
			name String,
			user_id String,
			url String,
			content String,
			created_at DateTime64(3),
			updated_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(updated_at) PRIMARY KEY (id)`,
		`CREATE TABLE IF NOT EXISTS ` + paymentsTable + ` (
			id UUID,
			user_id String,
			amount Float64,
			currency String,
			category String,
			status String,
			created_at DateTime64(3)
		) ENGINE = MergeTree() PRIMARY KEY (id)`,
		`CREATE TABLE IF NOT EXISTS ` + usersTable + ` (
			id UUID,
			email String,
			name String,
			role String,
			created_at DateTime64(3)
		) ENGINE = MergeTree() PRIMARY KEY (id)`,
	}

	for _, definition := range tableDefinitions {
		if err := db.conn.Exec(ctx, definition); err != nil {
			return wrap.Error(err, "create table query failed")
		}
	}

	return nil
}

func (db ClickHouseDB) countRows(ctx context.Context, table string) (uint64, error) {
	var query QueryBuilder
	query.WriteString("SELECT count() FROM ")
	query.WriteIdentifier(table)

	var count uint64
	if err := db.conn.QueryRow(ctx, query.String()).Scan(&count); err != nil {
		return 0, wrap.Errorf(err, "count query failed for table '%s'", table)
	}

	return count, nil
}

// countDatasets counts through FINAL, since the datasets table keeps a row version per update.
func (db ClickHouseDB) countDatasets(ctx context.Context) (uint64, error) {
	var query QueryBuilder
	query.WriteString("SELECT count() FROM ")
	query.WriteIdentifier(datasetsTable)
	query.WriteString(" FINAL")

	var count uint64
	if err := db.conn.QueryRow(ctx, query.String()).Scan(&count); err != nil {
		return 0, wrap.Error(err, "dataset count query failed")
	}

	return count, nil
}
