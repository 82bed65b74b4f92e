package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/joinby-app/qr-gateway/internal/model"
)

type exampleResolver struct{}

func (exampleResolver) Resolve(_ context.Context, shortID string) (*model.Resolution, error) {
	return &model.Resolution{OwnerUserID: "user123", FoundIn: "qrcodes", IsActive: true}, nil
}

func (exampleResolver) ResolveStrict(_ context.Context, shortID string) (*model.Resolution, error) {
	return &model.Resolution{OwnerUserID: "user123", FoundIn: "qrcodes", IsActive: true}, nil
}

func ExampleHandler() {
	h := NewHandler(exampleResolver{}, nil, nil, nil)
	router := h.RegisterRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/qr/verify?code=nrLTfky4PMCkCIfVCHh9", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	fmt.Println(rr.Code)
	fmt.Println(rr.Body.String())
	// Output:
	// 200
	// {"ownerUserId":"user123","isActive":true,"foundIn":"qrcodes"}
}
