package elasticsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	elastictypes "github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/calendarinterval"

	"github.com/brightboard/brightboard/storage"
)

func (elastic ElasticsearchDB) PaymentStats(ctx context.Context) (storage.PaymentStats, error) {
	zeroHits := 0
	amountField := "amount"
	dateField := "created_at"

	result, err := elastic.client.Search().Index(paymentsIndex).Request(&search.Request{
		Size: &zeroHits,
		Aggregations: map[string]elastictypes.Aggregations{
			"revenue": {
				Sum: &elastictypes.SumAggregation{Field: &amountField},
			},
			"monthly": {
				DateHistogram: &elastictypes.DateHistogramAggregation{
					Field:            &dateField,
					CalendarInterval: &calendarinterval.Month,
				},
				Aggregations: map[string]elastictypes.Aggregations{
					"revenue": {Sum: &elastictypes.SumAggregation{Field: &amountField}},
				},
			},
		},
	}).Do(ctx)
	if err != nil {
		return storage.PaymentStats{}, wrapElasticError(err, "payment stats search failed")
	}

	var stats storage.PaymentStats
	if result.Hits.Total != nil {
		stats.PaymentCount = uint64(result.Hits.Total.Value)
	}

	revenue, err := sumAggregateValue(result.Aggregations, "revenue")
	if err != nil {
		return storage.PaymentStats{}, err
	}
	stats.TotalRevenue = revenue

	monthly, hasMonthly := result.Aggregations["monthly"].(*elastictypes.DateHistogramAggregate)
	if !hasMonthly {
		return storage.PaymentStats{}, fmt.Errorf(
			"unexpected aggregate type %T for monthly revenue",
			result.Aggregations["monthly"],
		)
	}

	buckets, isBucketList := monthly.Buckets.([]elastictypes.DateHistogramBucket)
	if !isBucketList {
		return storage.PaymentStats{}, fmt.Errorf(
			"unexpected bucket type %T for monthly revenue",
			monthly.Buckets,
		)
	}

	for _, bucket := range buckets {
		bucketRevenue, err := sumAggregateValue(bucket.Aggregations, "revenue")
		if err != nil {
			return storage.PaymentStats{}, err
		}

		stats.Monthly = append(stats.Monthly, storage.MonthlyRevenue{
			Month:   time.UnixMilli(int64(bucket.Key)).UTC(),
			Revenue: bucketRevenue,
		})
	}

	return stats, nil
}

func (elastic ElasticsearchDB) CategoryStats(ctx context.Context) ([]storage.CategoryStat, error) {
	zeroHits := 0
	amountField := "amount"
	categoryField := "category"
	categoryLimit := 100

	result, err := elastic.client.Search().Index(paymentsIndex).Request(&search.Request{
		Size: &zeroHits,
		Aggregations: map[string]elastictypes.Aggregations{
			"categories": {
				Terms: &elastictypes.TermsAggregation{
					Field: &categoryField,
					Size:  &categoryLimit,
				},
				Aggregations: map[string]elastictypes.Aggregations{
					"revenue": {Sum: &elastictypes.SumAggregation{Field: &amountField}},
				},
			},
		},
	}).Do(ctx)
	if err != nil {
		return nil, wrapElasticError(err, "category stats search failed")
	}

	categories, hasCategories := result.Aggregations["categories"].(*elastictypes.StringTermsAggregate)
	if !hasCategories {
		return nil, fmt.Errorf(
			"unexpected aggregate type %T for categories",
			result.Aggregations["categories"],
		)
	}

	buckets, isBucketList := categories.Buckets.([]elastictypes.StringTermsBucket)
	if !isBucketList {
		return nil, fmt.Errorf("unexpected bucket type %T for categories", categories.Buckets)
	}

	stats := make([]storage.CategoryStat, 0, len(buckets))
	for _, bucket := range buckets {
		revenue, err := sumAggregateValue(bucket.Aggregations, "revenue")
		if err != nil {
			return nil, err
		}

		stats = append(stats, storage.CategoryStat{
			Category: fmt.Sprint(bucket.Key),
			Revenue:  revenue,
			Count:    uint64(bucket.DocCount),
		})
	}

	return stats, nil
}

func (elastic ElasticsearchDB) AdminStats(ctx context.Context) (storage.AdminStats, error) {
	var stats storage.AdminStats

	userCount, err := elastic.countDocuments(ctx, usersIndex)
	if err != nil {
		return storage.AdminStats{}, err
	}
	stats.UserCount = userCount

	datasetCount, err := elastic.countDocuments(ctx, datasetsIndex)
	if err != nil {
		return storage.AdminStats{}, err
	}
	stats.DatasetCount = datasetCount

	paymentStats, err := elastic.PaymentStats(ctx)
	if err != nil {
		return storage.AdminStats{}, err
	}
	stats.PaymentCount = paymentStats.PaymentCount
	stats.TotalRevenue = paymentStats.TotalRevenue

	return stats, nil
}

func (elastic ElasticsearchDB) countDocuments(ctx context.Context, index string) (uint64, error) {
	result, err := elastic.client.Count().Index(index).Do(ctx)
	if err != nil {
		return 0, wrapElasticErrorf(err, "count request failed for index '%s'", index)
	}

	return uint64(result.Count), nil
}

func sumAggregateValue(aggregates map[string]elastictypes.Aggregate, name string) (float64, error) {
	sum, isSum := aggregates[name].(*elastictypes.SumAggregate)
	if !isSum {
		return 0, fmt.Errorf("unexpected aggregate type %T for '%s'", aggregates[name], name)
	}

	if sum.Value == nil {
		return 0, nil
	}
	return float64(*sum.Value), nil
}
