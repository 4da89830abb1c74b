package usage

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrQuotaVerificationFailed = errors.New("quota verification failed")

const DefaultMaxResults = 50_000

// Counter counts the error free evaluation results of one workspace created
// at or after a date.
type Counter interface {
	CountSinceDate(ctx context.Context, since time.Time) (int64, error)
}

type Usage struct {
	Count    int64
	Limit    int64
	Since    time.Time
	Exceeded bool
}

// QuotaVerifier enforces a monthly limit on evaluation results. A limit of
// zero disables the quota.
type QuotaVerifier struct {
	maxResults int64
	now        func() time.Time
}

func NewQuotaVerifier(maxResults int64) *QuotaVerifier {
	return &QuotaVerifier{maxResults: maxResults, now: time.Now}
}

func (v *QuotaVerifier) WithClock(now func() time.Time) *QuotaVerifier {
	v.now = now
	return v
}

// PeriodStart is the first instant of the calendar month (UTC) containing t.
func PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (v *QuotaVerifier) Usage(ctx context.Context, counter Counter) (Usage, error) {
	since := PeriodStart(v.now())

	count, err := counter.CountSinceDate(ctx, since)
	if err != nil {
		slog.Error("error getting evaluation result usage", "error", err)
		return Usage{}, errors.Join(ErrQuotaVerificationFailed, err)
	}

	return Usage{
		Count:    count,
		Limit:    v.maxResults,
		Since:    since,
		Exceeded: v.maxResults > 0 && count >= v.maxResults,
	}, nil
}
