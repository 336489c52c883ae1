package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

type bodyKey struct{}

// maxBufferedBody bounds what the middleware keeps in memory; larger bodies
// are rejected outright.
const maxBufferedBody = 1 << 20

// BufferBody reads the request body once, keeps the bytes in the context for
// cross-cutting consumers (ownership checks, audit sanitization), and
// restores the body so handlers can decode it normally.
func BufferBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBufferedBody+1))
		_ = r.Body.Close()
		if err != nil || len(raw) > maxBufferedBody {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			_, _ = w.Write([]byte(`{"error":"bad_request","message":"request body too large"}`))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		ctx := context.WithValue(r.Context(), bodyKey{}, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BodyBytes returns the buffered request body, or nil when none was read.
func BodyBytes(ctx context.Context) []byte {
	raw, _ := ctx.Value(bodyKey{}).([]byte)
	return raw
}

// BodyJSON decodes the buffered body as a JSON object. Non-object or
// malformed bodies yield an empty map; the handler's own decode reports
// those errors.
func BodyJSON(ctx context.Context) map[string]any {
	raw := BodyBytes(ctx)
	if len(raw) == 0 {
		return map[string]any{}
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return map[string]any{}
	}
	return body
}
