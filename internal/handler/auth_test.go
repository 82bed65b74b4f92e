package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joinby-app/qr-gateway/internal/kakao"
	"github.com/joinby-app/qr-gateway/internal/model"
)

type mockKakao struct {
	user *kakao.User
	err  error
}

func (m *mockKakao) UserInfo(_ context.Context, _ string) (*kakao.User, error) {
	return m.user, m.err
}

type mockMinter struct {
	token string
	err   error
	uids  []string
}

func (m *mockMinter) CustomToken(uid string) (string, error) {
	m.uids = append(m.uids, uid)
	return m.token, m.err
}

func postKakao(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/kakao", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.HandleKakaoLogin(rr, req)
	return rr
}

func TestHandleKakaoLogin_Success(t *testing.T) {
	minter := &mockMinter{token: "custom.jwt.token"}
	h := NewHandler(&mockResolver{}, &mockKakao{user: &kakao.User{ID: 4242}}, minter, nil)

	rr := postKakao(t, h, `{"accessToken":"kakao-token"}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp model.KakaoLoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "custom.jwt.token", resp.CustomToken)
	assert.Equal(t, "kakao:4242", resp.UID)
	assert.Equal(t, []string{"kakao:4242"}, minter.uids)
}

func TestHandleKakaoLogin_RejectedToken(t *testing.T) {
	h := NewHandler(&mockResolver{}, &mockKakao{err: kakao.ErrUnauthorized}, &mockMinter{}, nil)

	rr := postKakao(t, h, `{"accessToken":"expired"}`)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleKakaoLogin_KakaoDown(t *testing.T) {
	h := NewHandler(&mockResolver{}, &mockKakao{err: errors.New("timeout")}, &mockMinter{}, nil)

	rr := postKakao(t, h, `{"accessToken":"token"}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestHandleKakaoLogin_MissingToken(t *testing.T) {
	h := NewHandler(&mockResolver{}, &mockKakao{user: &kakao.User{ID: 1}}, &mockMinter{}, nil)

	rr := postKakao(t, h, `{}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleKakaoLogin_MintFailure(t *testing.T) {
	h := NewHandler(&mockResolver{}, &mockKakao{user: &kakao.User{ID: 1}}, &mockMinter{err: errors.New("bad key")}, nil)

	rr := postKakao(t, h, `{"accessToken":"token"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandleKakaoLogin_NotConfigured(t *testing.T) {
	h := NewHandler(&mockResolver{}, nil, nil, nil)

	rr := postKakao(t, h, `{"accessToken":"token"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
