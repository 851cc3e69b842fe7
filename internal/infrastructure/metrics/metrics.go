package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/generalledger/internal/domain"
)

var (
	// EntriesPosted counts successfully posted journal entries.
	EntriesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "generalledger_entries_posted_total",
		Help: "Total number of journal entries posted",
	})

	// EntriesUpdated counts successful entry replacements.
	EntriesUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "generalledger_entries_updated_total",
		Help: "Total number of journal entries updated",
	})

	// EntriesDeleted counts successful entry reversals.
	EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "generalledger_entries_deleted_total",
		Help: "Total number of journal entries deleted",
	})

	// EntryErrors counts failed entry operations by error type.
	EntryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generalledger_entry_errors_total",
			Help: "Total number of failed journal entry operations by type",
		},
		[]string{"error_type"},
	)

	// PostingDuration observes end-to-end posting latency, validation and
	// balance propagation included.
	PostingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "generalledger_posting_duration_seconds",
		Help:    "Duration of journal entry posting",
		Buckets: prometheus.DefBuckets,
	})
)

// NewPostingTimer starts a timer against the posting duration histogram.
func NewPostingTimer() *prometheus.Timer {
	return prometheus.NewTimer(PostingDuration)
}

// RecordEntryError classifies a failed entry operation for the error
// counter.
func RecordEntryError(err error) {
	EntryErrors.WithLabelValues(entryErrorType(err)).Inc()
}

func entryErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrRevisionMismatch):
		return "revision_mismatch"
	case errors.Is(err, domain.ErrTransactionConflict):
		return "transaction_conflict"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrDomainNotFound),
		errors.Is(err, domain.ErrCurrencyNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
