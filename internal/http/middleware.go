package http

import (
	"context"
	"net/http"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/device"
)

// DeviceIDHeader carries the client's device token. The server mints one
// when the header is absent and always echoes the effective value back, so
// the client can persist it for subsequent requests.
const DeviceIDHeader = "X-Device-ID"

type contextKey string

const deviceIDKey contextKey = "device_id"

func DeviceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(DeviceIDHeader)
		if deviceID == "" {
			deviceID = device.NewID()
		}

		w.Header().Set(DeviceIDHeader, deviceID)
		ctx := context.WithValue(r.Context(), deviceIDKey, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func deviceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(deviceIDKey).(string); ok {
		return id
	}
	return ""
}
