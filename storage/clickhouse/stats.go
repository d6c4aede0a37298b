package clickhouse

import (
	"context"
	"time"

	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/storage"
)

func (db ClickHouseDB) PaymentStats(ctx context.Context) (storage.PaymentStats, error) {
	var stats storage.PaymentStats

	var query QueryBuilder
	query.WriteString("SELECT sum(amount), count() FROM ")
	query.WriteIdentifier(paymentsTable)

	err := db.conn.QueryRow(ctx, query.String()).Scan(&stats.TotalRevenue, &stats.PaymentCount)
	if err != nil {
		return storage.PaymentStats{}, wrap.Error(err, "payment totals query failed")
	}

	query.Reset()
	query.WriteString("SELECT toStartOfMonth(created_at) AS month, sum(amount) AS revenue FROM ")
	query.WriteIdentifier(paymentsTable)
	query.WriteString(" GROUP BY month ORDER BY month ASC")

	rows, err := db.conn.Query(ctx, query.String())
	if err != nil {
		return storage.PaymentStats{}, wrap.Error(err, "monthly revenue query failed")
	}
	defer rows.Close()

	for rows.Next() {
		var month time.Time
		var revenue float64
		if err := rows.Scan(&month, &revenue); err != nil {
			return storage.PaymentStats{}, wrap.Error(err, "failed to scan monthly revenue row")
		}

		stats.Monthly = append(stats.Monthly, storage.MonthlyRevenue{
			Month:   month,
			Revenue: revenue,
		})
	}

	return stats, nil
}

func (db ClickHouseDB) CategoryStats(ctx context.Context) ([]storage.CategoryStat, error) {
	var query QueryBuilder
	query.WriteString("SELECT category, sum(amount) AS revenue, count() AS payment_count FROM ")
	query.WriteIdentifier(paymentsTable)
	query.WriteString(" GROUP BY category ORDER BY revenue DESC")

	rows, err := db.conn.Query(ctx, query.String())
	if err != nil {
		return nil, wrap.Error(err, "category stats query failed")
	}
	defer rows.Close()

	var stats []storage.CategoryStat
	for rows.Next() {
		var stat storage.CategoryStat
		if err := rows.Scan(&stat.Category, &stat.Revenue, &stat.Count); err != nil {
			return nil, wrap.Error(err, "failed to scan category stats row")
		}
		stats = append(stats, stat)
	}

	return stats, nil
}

func (db ClickHouseDB) AdminStats(ctx context.Context) (storage.AdminStats, error) {
	var stats storage.AdminStats

	userCount, err := db.countRows(ctx, usersTable)
	if err != nil {
		return storage.AdminStats{}, err
	}
	stats.UserCount = userCount

	datasetCount, err := db.countDatasets(ctx)
	if err != nil {
		return storage.AdminStats{}, err
	}
	stats.DatasetCount = datasetCount

	var query QueryBuilder
	query.WriteString("SELECT count(), sum(amount) FROM ")
	query.WriteIdentifier(paymentsTable)

	err = db.conn.QueryRow(ctx, query.String()).Scan(&stats.PaymentCount, &stats.TotalRevenue)
	if err != nil {
		return storage.AdminStats{}, wrap.Error(err, "payment totals query failed")
	}

	return stats, nil
}
