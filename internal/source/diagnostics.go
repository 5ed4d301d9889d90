package source

import (
	"github.com/rs/zerolog/log"
)

// First returns the first of entries. Discarded matches are reported as a
// source.multiple_matches event, since the query attribute was expected to
// be unique.
func First[T any](name, value string, entries []T) (T, bool) {
	var zero T

	if len(entries) == 0 {
		return zero, false
	}

	if len(entries) > 1 {
		multipleMatches.WithLabelValues(name).Inc()
		log.Warn().
			Str("event", "source.multiple_matches").
			Str("source", name).
			Str("value", value).
			Int("discarded", len(entries)-1).
			Msg("multiple users matched, using the first")
	}

	return entries[0], true
}

// FailSoft reports a failure that was absorbed into an empty result.
func FailSoft(name, operation string, err error) {
	failSoft.WithLabelValues(name, operation).Inc()
	log.Warn().
		Err(err).
		Str("event", "source.fail_soft").
		Str("source", name).
		Str("operation", operation).
		Msg("source failure absorbed into an empty result")
}
