package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnauthorized means Kakao rejected the presented access token.
var ErrUnauthorized = errors.New("kakao: access token rejected")

// User is the subset of the Kakao user-info response the gateway needs.
type User struct {
	ID       int64
	Nickname string
	Email    string
}

type userInfoResponse struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// Client verifies Kakao access tokens against the user-info endpoint.
type Client struct {
	userInfoURL string
	client      *http.Client
}

// NewClient creates a Client for the given user-info endpoint.
func NewClient(userInfoURL string) *Client {
	return &Client{
		userInfoURL: userInfoURL,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// UserInfo exchanges a Kakao access token for the account it belongs to.
// A 401 from Kakao is ErrUnauthorized; other failures are transport errors.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("kakao: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kakao: user info request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("kakao: user info status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kakao: reading user info: %w", err)
	}

	var ui userInfoResponse
	if err := json.Unmarshal(body, &ui); err != nil {
		return nil, fmt.Errorf("kakao: decoding user info: %w", err)
	}

	if ui.ID == 0 {
		return nil, fmt.Errorf("kakao: user info has no id")
	}

	return &User{
		ID:       ui.ID,
		Nickname: ui.KakaoAccount.Profile.Nickname,
		Email:    ui.KakaoAccount.Email,
	}, nil
}
