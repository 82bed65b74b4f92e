package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/joinby-app/qr-gateway/internal/credentials"
	"github.com/joinby-app/qr-gateway/internal/firestore"
	"github.com/joinby-app/qr-gateway/internal/model"
)

var (
	// ErrNotFound means no candidate collection holds a usable mapping.
	ErrNotFound = errors.New("resolver: short code not found")
	// ErrInvalidData means a mapping exists but is incomplete or inactive.
	ErrInvalidData = errors.New("resolver: mapping is invalid or inactive")
)

// DocumentGetter is the read surface of the document store the resolver needs.
type DocumentGetter interface {
	GetDocument(ctx context.Context, collection, key, token string) (*firestore.Document, error)
}

// Resolver maps short codes to profile owners by reading the document store.
type Resolver struct {
	creds      credentials.Source
	store      DocumentGetter
	candidates []string
	canonical  string
}

// New creates a Resolver. candidates is the ordered collection list the broad
// search probes; canonical is the single collection the strict path reads.
func New(creds credentials.Source, store DocumentGetter, candidates []string, canonical string) *Resolver {
	return &Resolver{
		creds:      creds,
		store:      store,
		candidates: candidates,
		canonical:  canonical,
	}
}

// Resolve searches the candidate collections in order and returns the first
// mapping with a non-empty owner id. Documents without an owner id are
// skipped. A missing isActive field counts as active here; the strict
// redirect path uses ResolveStrict instead.
func (r *Resolver) Resolve(ctx context.Context, shortID string) (*model.Resolution, error) {
	token, err := r.creds.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolver: acquiring token: %w", err)
	}

	for _, collection := range r.candidates {
		doc, err := r.store.GetDocument(ctx, collection, shortID, token)
		if err != nil {
			if errors.Is(err, firestore.ErrNotFound) {
				continue
			}
			return nil, err
		}

		owner, ok := doc.StringField("ownerUserId")
		if !ok || owner == "" {
			log.Warn().
				Str("collection", collection).
				Str("shortId", shortID).
				Msg("Mapping document has no owner, skipping")
			continue
		}

		res := &model.Resolution{
			OwnerUserID: owner,
			FoundIn:     collection,
			IsActive:    true,
		}
		if active, ok := doc.BoolField("isActive"); ok {
			res.IsActive = active
		}
		if created, ok := doc.TimeField("createdAt"); ok {
			res.CreatedAt = created
		}

		return res, nil
	}

	return nil, ErrNotFound
}

// ResolveStrict reads only the canonical collection and requires both a
// non-empty owner id and an explicit isActive=true. Used by the redirect
// path, where a stale or disabled code must not reach a profile.
func (r *Resolver) ResolveStrict(ctx context.Context, shortID string) (*model.Resolution, error) {
	token, err := r.creds.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolver: acquiring token: %w", err)
	}

	doc, err := r.store.GetDocument(ctx, r.canonical, shortID, token)
	if err != nil {
		if errors.Is(err, firestore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	owner, ok := doc.StringField("ownerUserId")
	if !ok || owner == "" {
		log.Warn().
			Str("collection", r.canonical).
			Str("shortId", shortID).
			Msg("Mapping document has no owner")
		return nil, ErrInvalidData
	}

	active, ok := doc.BoolField("isActive")
	if !ok || !active {
		log.Info().
			Str("collection", r.canonical).
			Str("shortId", shortID).
			Bool("fieldPresent", ok).
			Msg("Mapping is not active")
		return nil, ErrInvalidData
	}

	res := &model.Resolution{
		OwnerUserID: owner,
		FoundIn:     r.canonical,
		IsActive:    true,
	}
	if created, ok := doc.TimeField("createdAt"); ok {
		res.CreatedAt = created
	}

	return res, nil
}
