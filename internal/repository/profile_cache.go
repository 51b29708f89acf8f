package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pseudolawyer/negotiation-backend/internal/entity"
)

// CachedProfileRepository is a read-through TTL cache over the profile
// directory. Profiles change rarely and every mediation turn resolves at
// least one display name, so the short cache takes the directory off the hot
// path. Negative results are not cached: a missing email may become an
// account at any moment.
type CachedProfileRepository struct {
	inner ProfileRepository
	cache *gocache.Cache
}

var _ ProfileRepository = &CachedProfileRepository{}

func NewCachedProfileRepository(inner ProfileRepository, ttl time.Duration) *CachedProfileRepository {
	return &CachedProfileRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *CachedProfileRepository) GetProfileByID(ctx context.Context, id string) (*entity.Profile, error) {
	if cached, ok := r.cache.Get("id:" + id); ok {
		return cached.(*entity.Profile), nil
	}

	profile, err := r.inner.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(profile)
	return profile, nil
}

func (r *CachedProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	if cached, ok := r.cache.Get("email:" + email); ok {
		return cached.(*entity.Profile), nil
	}

	profile, err := r.inner.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	r.store(profile)
	return profile, nil
}

func (r *CachedProfileRepository) store(profile *entity.Profile) {
	r.cache.SetDefault("id:"+profile.ID, profile)
	r.cache.SetDefault("email:"+profile.Email, profile)
}
