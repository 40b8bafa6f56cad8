package sth

import (
	"context"
	"time"
)

const (
	// HourlyBuckets is the number of one hour buckets covering the
	// trailing day.
	HourlyBuckets = 24
	// FiveMinuteBuckets is the number of five minute buckets covering the
	// trailing hour.
	FiveMinuteBuckets = 12
)

// Bucket counts attestations stored in [Start, End).
type Bucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int64     `json:"count"`
}

// Histograms holds the fixed length activity histograms of a report.
type Histograms struct {
	Hourly     []*Bucket `json:"hourly"`
	FiveMinute []*Bucket `json:"five_minute"`
}

// windows returns n contiguous buckets of the given width, the last one
// ending at now, oldest first.
func windows(now time.Time, n int, width time.Duration) []*Bucket {
	out := make([]*Bucket, n)
	for i := 0; i < n; i++ {
		end := now.Add(-time.Duration(n-1-i) * width)
		out[i] = &Bucket{
			Start: end.Add(-width),
			End:   end,
		}
	}

	return out
}

func (a *Aggregator) histogram(
	ctx context.Context,
	now time.Time,
	n int,
	width time.Duration,
) ([]*Bucket, error) {
	buckets := windows(now, n, width)
	for _, b := range buckets {
		count, err := a.store.Count(ctx, Filter{Since: b.Start, Until: b.End})
		if err != nil {
			return nil, storeErr("count bucket", err)
		}
		b.Count = count
	}

	return buckets, nil
}
