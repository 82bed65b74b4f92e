package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/joinby-app/qr-gateway/internal/generator"
	"github.com/joinby-app/qr-gateway/internal/model"
	"github.com/joinby-app/qr-gateway/internal/resolver"
)

// Error codes carried to the error page as ?code=.
const (
	CodeInvalidQR        = "INVALID_QR"
	CodeQRNotFound       = "QR_NOT_FOUND"
	CodeInvalidQRData    = "INVALID_QR_DATA"
	CodeMiddlewareFailed = "MIDDLEWARE_FAILED"
)

const qrPathPrefix = "/q/"

// StrictResolver is the single-collection, explicit-active resolution the
// redirect path requires.
type StrictResolver interface {
	ResolveStrict(ctx context.Context, shortID string) (*model.Resolution, error)
}

// ScanRecorder accepts scan events without blocking the request.
type ScanRecorder interface {
	Enqueue(event model.ScanEvent)
}

// QRRedirect intercepts short-code URLs ahead of normal routing and turns
// them into guest-profile redirects.
type QRRedirect struct {
	resolver StrictResolver
	recorder ScanRecorder
}

// NewQRRedirect creates the redirect middleware. recorder may be nil.
func NewQRRedirect(res StrictResolver, recorder ScanRecorder) *QRRedirect {
	return &QRRedirect{
		resolver: res,
		recorder: recorder,
	}
}

// Handler wraps next, intercepting every request under the short-code prefix.
// All other requests pass through unmodified.
func (q *QRRedirect) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, qrPathPrefix) && r.URL.Path != strings.TrimSuffix(qrPathPrefix, "/") {
			next.ServeHTTP(w, r)
			return
		}

		// Trimming the prefix without its trailing slash keeps the bare
		// "/q" path on the empty-code branch.
		shortID := strings.Trim(strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(qrPathPrefix, "/")), "/")
		if shortID == "" || strings.Contains(shortID, "/") {
			q.redirectError(w, r, "", CodeInvalidQR)
			return
		}

		res, err := q.resolver.ResolveStrict(r.Context(), shortID)
		if err != nil {
			switch {
			case errors.Is(err, resolver.ErrNotFound):
				q.redirectError(w, r, shortID, CodeQRNotFound)
			case errors.Is(err, resolver.ErrInvalidData):
				q.redirectError(w, r, shortID, CodeInvalidQRData)
			default:
				log.Error().
					Err(err).
					Str("shortId", shortID).
					Msg("Short code resolution failed")
				q.redirectError(w, r, shortID, CodeMiddlewareFailed)
			}
			return
		}

		q.recordScan(r, shortID, res.OwnerUserID)

		target := "/guest-profile/" + url.PathEscape(res.OwnerUserID) +
			"?from=qr&source=" + url.QueryEscape(shortID)

		w.Header().Set("Location", target)
		w.WriteHeader(http.StatusTemporaryRedirect)
	})
}

func (q *QRRedirect) redirectError(w http.ResponseWriter, r *http.Request, shortID, code string) {
	log.Info().
		Str("shortId", shortID).
		Str("code", code).
		Msg("Redirecting to error page")

	w.Header().Set("Location", "/error?code="+code)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

func (q *QRRedirect) recordScan(r *http.Request, shortID, ownerUserID string) {
	if q.recorder == nil {
		return
	}

	requestID := chimiddleware.GetReqID(r.Context())
	if requestID == "" {
		requestID, _ = generator.GenerateID(16)
	}

	q.recorder.Enqueue(model.ScanEvent{
		ShortID:     shortID,
		OwnerUserID: ownerUserID,
		RequestID:   requestID,
	})
}
