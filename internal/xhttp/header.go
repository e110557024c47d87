package xhttp

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

const (
	XForwardedFor    = "X-Forwarded-For"
	XContentTypeOpts = "X-Content-Type-Options"
	XFrameOpts       = "X-Frame-Options"
	ReferrerPolicy   = "Referrer-Policy"
	XRateLimitReason = "X-RateLimit-Reason"
	XRequestID       = "X-Request-ID"
	CacheControl     = "Cache-Control"
	RetryAfter       = "Retry-After"

	ContentSecurityPolicy = "Content-Security-Policy"
)

const (
	ContentType   = "Content-Type"
	Authorization = "Authorization"
	UserAgent     = "User-Agent"
)

// XEBaySignature carries the base64 signature envelope on every notification.
const XEBaySignature = "X-EBAY-SIGNATURE"

const ApplicationJSON = "application/json"

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	w.Header().Set(XRequestID, requestID)
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	w.Header().Set(ContentType, ApplicationJSON)
}

// SetHeaderRetryAfter rounds up to whole seconds so clients never retry early.
func SetHeaderRetryAfter(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set(RetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
}
