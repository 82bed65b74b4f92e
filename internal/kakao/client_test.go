package kakao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UserInfo(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 4242424242,
			"kakao_account": {
				"email": "person@example.com",
				"profile": {"nickname": "person"}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	user, err := client.UserInfo(context.Background(), "kakao-token")
	require.NoError(t, err)

	assert.Equal(t, "Bearer kakao-token", gotAuth)
	assert.Equal(t, int64(4242424242), user.ID)
	assert.Equal(t, "person", user.Nickname)
	assert.Equal(t, "person@example.com", user.Email)
}

func TestClient_UserInfo_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"msg":"this access token does not exist","code":-401}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.UserInfo(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_UserInfo_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kakao_account":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.UserInfo(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestClient_UserInfo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)

	_, err := client.UserInfo(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}
