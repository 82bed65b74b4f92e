package model

import "time"

// Resolution is the outcome of a successful short-code lookup.
type Resolution struct {
	OwnerUserID string
	FoundIn     string
	IsActive    bool
	CreatedAt   *time.Time
}

// VerifyResponse is the JSON body returned by the verification API.
type VerifyResponse struct {
	OwnerUserID string     `json:"ownerUserId"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	FoundIn     string     `json:"foundIn,omitempty"`
}

// VerifyRequest is the JSON body accepted by the strict verification check.
type VerifyRequest struct {
	Code string `json:"code"`
}

// ErrorResponse is the JSON error body used across the API surface.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ScanEvent is one successful short-code resolution, recorded for analytics.
type ScanEvent struct {
	ShortID     string
	OwnerUserID string
	RequestID   string
	OccurredAt  time.Time
}

// KakaoLoginRequest carries the Kakao-issued access token to bridge.
type KakaoLoginRequest struct {
	AccessToken string `json:"accessToken"`
}

// KakaoLoginResponse returns the minted Firebase custom token.
type KakaoLoginResponse struct {
	CustomToken string `json:"customToken"`
	UID         string `json:"uid"`
}
