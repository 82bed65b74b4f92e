package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/joinby-app/qr-gateway/internal/kakao"
	"github.com/joinby-app/qr-gateway/internal/logger"
	"github.com/joinby-app/qr-gateway/internal/model"
	"github.com/joinby-app/qr-gateway/internal/resolver"
)

// QRResolver is the resolution logic shared by the verification API, the
// gRPC service, and (via the middleware) the redirect path.
type QRResolver interface {
	Resolve(ctx context.Context, shortID string) (*model.Resolution, error)
	ResolveStrict(ctx context.Context, shortID string) (*model.Resolution, error)
}

// KakaoVerifier validates Kakao access tokens.
type KakaoVerifier interface {
	UserInfo(ctx context.Context, accessToken string) (*kakao.User, error)
}

// TokenMinter issues Firebase custom tokens.
type TokenMinter interface {
	CustomToken(uid string) (string, error)
}

// DBPinger reports scan-log store health.
type DBPinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	resolver QRResolver
	kakao    KakaoVerifier
	minter   TokenMinter
	dbPinger DBPinger
}

// NewHandler creates the API handler. kakaoVerifier, minter and dbPinger
// may be nil when the corresponding feature is not configured.
func NewHandler(res QRResolver, kakaoVerifier KakaoVerifier, minter TokenMinter, dbPinger DBPinger) *Handler {
	return &Handler{
		resolver: res,
		kakao:    kakaoVerifier,
		minter:   minter,
		dbPinger: dbPinger,
	}
}

// RegisterRoutes builds the router. extra middlewares (the QR redirect
// interceptor) run ahead of route matching.
func (h *Handler) RegisterRoutes(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	for _, m := range middlewares {
		r.Use(m)
	}

	r.MethodNotAllowed(h.handleMethodNotAllowed)

	r.Get("/api/qr/verify", h.handleVerify)
	r.Post("/api/qr/verify", h.handleVerifyStrict)
	r.Post("/api/auth/kakao", h.HandleKakaoLogin)
	r.Get("/ping", h.handlePing)

	return r
}

// handleVerify is the broad, multi-collection check: the code arrives as a
// query parameter and a missing isActive field counts as active.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		h.respondError(w, http.StatusBadRequest, "INVALID_QR", "")
		return
	}

	res, err := h.resolver.Resolve(r.Context(), code)
	if err != nil {
		h.respondResolveError(w, code, err)
		return
	}

	h.respondJSON(w, http.StatusOK, model.VerifyResponse{
		OwnerUserID: res.OwnerUserID,
		IsActive:    res.IsActive,
		CreatedAt:   res.CreatedAt,
		FoundIn:     res.FoundIn,
	})
}

// handleVerifyStrict mirrors the redirect path: canonical collection only,
// explicit isActive required.
func (h *Handler) handleVerifyStrict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "INVALID_QR", "")
		return
	}
	defer r.Body.Close()

	var req model.VerifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "INVALID_QR", "")
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		h.respondError(w, http.StatusBadRequest, "INVALID_QR", "")
		return
	}

	res, err := h.resolver.ResolveStrict(r.Context(), code)
	if err != nil {
		h.respondResolveError(w, code, err)
		return
	}

	h.respondJSON(w, http.StatusOK, model.VerifyResponse{
		OwnerUserID: res.OwnerUserID,
		IsActive:    res.IsActive,
		CreatedAt:   res.CreatedAt,
	})
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	if h.dbPinger == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.dbPinger.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("Scan log ping failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "")
}

func (h *Handler) respondResolveError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, resolver.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "QR_NOT_FOUND", "")
	case errors.Is(err, resolver.ErrInvalidData):
		h.respondError(w, http.StatusBadRequest, "INVALID_QR_DATA", "")
	default:
		log.Error().Err(err).Str("shortId", code).Msg("Verification lookup failed")
		h.respondError(w, http.StatusInternalServerError, "MIDDLEWARE_FAILED", "lookup failed")
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	response, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, details string) {
	h.respondJSON(w, status, model.ErrorResponse{
		Error:   code,
		Details: details,
	})
}
