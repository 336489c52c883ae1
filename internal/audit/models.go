// Package audit records one immutable entry per request: who called what,
// with which outcome and latency. Entries are persisted through a Store
// collaborator and optionally relayed to Kafka for downstream compliance
// consumers. Persistence failures never fail the originating request.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an audit entry. Pending exists only
// in-flight; persisted entries are always terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RedactedMarker replaces sensitive request body values before an entry is
// logged or persisted.
const RedactedMarker = "***REDACTED***"

// Entry is the immutable record of one request's lifecycle.
type Entry struct {
	ID             uuid.UUID      `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Method         string         `json:"method"`
	URL            string         `json:"url"`
	UserID         string         `json:"userId,omitempty"`
	UserEmail      string         `json:"userEmail,omitempty"`
	OrganizationID string         `json:"organizationId,omitempty"`
	Role           string         `json:"role,omitempty"`
	RequestBody    map[string]any `json:"requestBody,omitempty"`
	Status         Status         `json:"status"`
	StatusCode     int            `json:"statusCode"`
	ErrorMessage   string         `json:"errorMessage,omitempty"`
	ResponseTime   int64          `json:"responseTime"`
	IPAddress      string         `json:"ipAddress,omitempty"`
	UserAgent      string         `json:"userAgent,omitempty"`
}

// sensitiveFields are redacted from request bodies before logging or
// persistence. The original body is never mutated.
var sensitiveFields = []string{"password"}

// SanitizeBody shallow-copies body and replaces sensitive values with
// RedactedMarker. A nil body yields an empty map so entries always carry a
// JSON object.
func SanitizeBody(body map[string]any) map[string]any {
	sanitized := make(map[string]any, len(body))
	for k, v := range body {
		sanitized[k] = v
	}
	for _, field := range sensitiveFields {
		if _, ok := sanitized[field]; ok {
			sanitized[field] = RedactedMarker
		}
	}
	return sanitized
}
