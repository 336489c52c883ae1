package audit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"taskhub/internal/platform/middleware"
	"taskhub/pkg/requestcontext"
)

var (
	entriesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskhub_audit_entries_total",
		Help: "Finalized audit entries by terminal status",
	}, []string{"status"})
	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_audit_persist_failures_total",
		Help: "Audit entries that could not be written to the store",
	})
)

// Recorder wraps every operation and records exactly one finalized audit
// entry per request, success or failure, including requests the
// authorization pipeline rejected.
type Recorder struct {
	store  Store
	relay  Relay
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to store. relay may be nil when no
// downstream pipeline is configured.
func NewRecorder(store Store, relay Relay, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, relay: relay, logger: logger}
}

// Middleware surrounds the whole request pipeline. At entry it captures the
// request descriptor and emits an advisory diagnostic record; after the
// wrapped operation completes (or panics) it finalizes the entry with the
// outcome, elapsed time and the most authoritative actor identity the inner
// stages recorded on the trail.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		trail := &Trail{}
		ctx = WithTrail(ctx, trail)

		start := time.Now()
		entry := Entry{
			ID:          uuid.New(),
			Timestamp:   requestcontext.Now(ctx),
			Method:      r.Method,
			URL:         r.URL.RequestURI(),
			RequestBody: SanitizeBody(middleware.BodyJSON(ctx)),
			Status:      StatusPending,
			IPAddress:   requestcontext.ClientIP(ctx),
			UserAgent:   r.Header.Get("User-Agent"),
		}

		rec.logPreExecution(r, entry)

		sw := middleware.NewStatusWriter(w)
		defer func() {
			if panicked := recover(); panicked != nil {
				entry.finalize(trail, http.StatusInternalServerError, start)
				rec.persist(r, entry)
				panic(panicked)
			}
			entry.finalize(trail, sw.Code, start)
			rec.persist(r, entry)
		}()

		next.ServeHTTP(sw, r.WithContext(ctx))
	})
}

// finalize sets the terminal status exactly once. Codes below 400 are
// success with the written status code (200 when the handler wrote nothing
// explicit); 400 and above are errors carrying the failure message the
// pipeline recorded, with a generic fallback.
func (e *Entry) finalize(trail *Trail, statusCode int, start time.Time) {
	userID, userEmail, orgID, role, errMsg := trail.snapshot()
	e.UserID = userID
	e.UserEmail = userEmail
	e.OrganizationID = orgID
	e.Role = role
	e.ResponseTime = time.Since(start).Milliseconds()
	e.StatusCode = statusCode
	if statusCode < http.StatusBadRequest {
		e.Status = StatusSuccess
		return
	}
	e.Status = StatusError
	if errMsg == "" {
		errMsg = http.StatusText(statusCode)
	}
	e.ErrorMessage = errMsg
}

// persist writes the entry and hands it to the relay. Store failures are
// logged and swallowed: a lost audit row must not alter the HTTP-visible
// outcome of the request it describes.
func (rec *Recorder) persist(r *http.Request, entry Entry) {
	ctx := r.Context()
	if err := rec.store.Append(ctx, entry); err != nil {
		persistFailures.Inc()
		rec.logger.ErrorContext(ctx, "failed to persist audit entry",
			"error", err,
			"method", entry.Method,
			"url", entry.URL,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	entriesRecorded.WithLabelValues(string(entry.Status)).Inc()
	if rec.relay != nil {
		rec.relay.Publish(entry)
	}
}

// logPreExecution emits the advisory record before the operation runs. It is
// observability only; the finalized entry is the audit row of record.
func (rec *Recorder) logPreExecution(r *http.Request, entry Entry) {
	ua := useragent.New(entry.UserAgent)
	browser, version := ua.Browser()
	rec.logger.InfoContext(r.Context(), "audit request received",
		"method", entry.Method,
		"url", entry.URL,
		"ip", entry.IPAddress,
		"browser", browser+" "+version,
		"os", ua.OS(),
		"request_id", requestcontext.RequestID(r.Context()),
	)
}
