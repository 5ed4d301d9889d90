package source

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/authdata/authdata/internal/identity"
)

//nolint:gochecknoglobals
var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authdata",
		Subsystem: "source",
		Name:      "requests_total",
		Help:      "Source lookups by binding, operation and outcome.",
	}, []string{"source", "operation", "outcome"})

	duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "authdata",
		Subsystem: "source",
		Name:      "request_duration_seconds",
		Help:      "Duration of source lookups.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "operation"})

	failSoft = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authdata",
		Subsystem: "source",
		Name:      "fail_soft_total",
		Help:      "Source failures absorbed into empty results.",
	}, []string{"source", "operation"})

	multipleMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authdata",
		Subsystem: "source",
		Name:      "multiple_matches_total",
		Help:      "Single user lookups that matched more than one entry.",
	}, []string{"source"})
)

const (
	operationGetData     = "get_data"
	operationGetUserData = "get_user_data"
)

func observe(name, operation string, start time.Time, err error) {
	outcome := "ok"

	switch {
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}

	requests.WithLabelValues(name, operation, outcome).Inc()
	duration.WithLabelValues(name, operation).Observe(time.Since(start).Seconds())
}

// instrumented records metrics around the lookups of a source.
type instrumented struct {
	Source
}

func (s instrumented) GetData(ctx context.Context, attribute, value string) (*identity.Record, error) {
	start := time.Now()
	rec, err := s.Source.GetData(ctx, attribute, value)
	observe(s.Name(), operationGetData, start, err)

	return rec, err
}

func (s instrumented) GetUserData(ctx context.Context, filter identity.Filter) (*identity.UserList, error) {
	start := time.Now()
	list, err := s.Source.GetUserData(ctx, filter)
	observe(s.Name(), operationGetUserData, start, err)

	return list, err
}

// Close releases the resources of the wrapped source, if it holds any.
func (s instrumented) Close() error {
	if c, ok := s.Source.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
