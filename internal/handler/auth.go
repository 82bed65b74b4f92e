package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/joinby-app/qr-gateway/internal/kakao"
	"github.com/joinby-app/qr-gateway/internal/model"
)

// HandleKakaoLogin bridges a Kakao OAuth access token into a Firebase custom
// token. The Kakao token is validated against the user-info endpoint before
// anything is signed.
func (h *Handler) HandleKakaoLogin(w http.ResponseWriter, r *http.Request) {
	if h.kakao == nil || h.minter == nil {
		h.respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "application/json") {
		h.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "")
		return
	}
	defer r.Body.Close()

	var req model.KakaoLoginRequest
	if err := json.Unmarshal(body, &req); err != nil || req.AccessToken == "" {
		h.respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "")
		return
	}

	user, err := h.kakao.UserInfo(r.Context(), req.AccessToken)
	if err != nil {
		if errors.Is(err, kakao.ErrUnauthorized) {
			h.respondError(w, http.StatusUnauthorized, "KAKAO_TOKEN_REJECTED", "")
			return
		}
		log.Error().Err(err).Msg("Kakao user info failed")
		h.respondError(w, http.StatusBadGateway, "KAKAO_UNAVAILABLE", "")
		return
	}

	uid := fmt.Sprintf("kakao:%d", user.ID)

	customToken, err := h.minter.CustomToken(uid)
	if err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("Custom token minting failed")
		h.respondError(w, http.StatusInternalServerError, "TOKEN_MINT_FAILED", "")
		return
	}

	h.respondJSON(w, http.StatusOK, model.KakaoLoginResponse{
		CustomToken: customToken,
		UID:         uid,
	})
}
