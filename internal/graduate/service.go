package graduate

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abhishek017/GradPilot/internal/metrics"
)

const countsCacheKey = "ceremony:counts"

// Store is the persistence surface the service needs. Satisfied by
// *Repository; tests substitute a fake.
type Store interface {
	FindByID(ctx context.Context, id string) (Graduate, error)
	Search(ctx context.Context, q string) ([]Graduate, error)
	List(ctx context.Context, sortKey string, desc bool) ([]Graduate, error)
	Update(ctx context.Context, id string, changes map[string]any) (Graduate, error)
	StampCheckIn(ctx context.Context, id, staffInitials string, at time.Time) (Graduate, error)
	AggregateCounts(ctx context.Context) (Counts, error)
}

// Service coordinates screen submissions against the record store.
type Service struct {
	store    Store
	cache    *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a service. cache may be nil; counts then always hit
// the database.
func NewService(store Store, cache *redis.Client, cacheTTL time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Second
	}
	return &Service{store: store, cache: cache, cacheTTL: cacheTTL, log: log, now: time.Now}
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (Graduate, error) {
	return s.store.FindByID(ctx, id)
}

// Search delegates substring search to the store.
func (s *Service) Search(ctx context.Context, q string) ([]Graduate, error) {
	return s.store.Search(ctx, q)
}

// List delegates sorted listing to the store.
func (s *Service) List(ctx context.Context, sortKey string, desc bool) ([]Graduate, error) {
	return s.store.List(ctx, sortKey, desc)
}

// ApplyScreen validates a form submission for the given screen and
// applies it. The check-in screen additionally stamps the check-in time
// the first time attended flips to true; a later re-submission with
// attended still true is a plain update and leaves the stamp alone.
func (s *Service) ApplyScreen(ctx context.Context, id string, screen Screen, form url.Values) (Graduate, error) {
	changes, err := ParseForm(screen, form)
	if err != nil {
		return Graduate{}, err
	}

	prior, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Graduate{}, err
	}

	if screen == ScreenCheckIn {
		if att, ok := changes["attended"].(bool); ok && att && prior.CheckInTime == nil {
			staff := form.Get("staff_initials")
			if _, err := s.store.StampCheckIn(ctx, id, staff, s.now().UTC()); err != nil {
				return Graduate{}, err
			}
			metrics.CheckIns.Inc()
			delete(changes, "attended")
		}
	}

	if collected, ok := changes["gown_collected"].(bool); ok && collected && !prior.GownCollected {
		metrics.GownCollections.Inc()
	}
	if returned, ok := changes["gown_returned"].(bool); ok && returned && !prior.GownReturned {
		metrics.GownReturns.Inc()
	}

	updated, err := s.store.Update(ctx, id, changes)
	if err != nil {
		return Graduate{}, err
	}
	s.invalidateCounts(ctx)
	return updated, nil
}

// SetPhotoPath points the record at a processed photo file, or clears it
// with "". File handling happens in the photo store; this only moves the
// reference.
func (s *Service) SetPhotoPath(ctx context.Context, id, rel string) (Graduate, error) {
	return s.store.Update(ctx, id, map[string]any{"photo_path": rel})
}

// Counts returns the dashboard aggregates, served from a short-lived
// Redis cache when available.
func (s *Service) Counts(ctx context.Context) (Counts, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, countsCacheKey).Bytes(); err == nil {
			var c Counts
			if json.Unmarshal(raw, &c) == nil {
				return c, nil
			}
		}
	}

	c, err := s.store.AggregateCounts(ctx)
	if err != nil {
		return Counts{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(c); err == nil {
			if err := s.cache.Set(ctx, countsCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.log.Debug("counts cache write failed", zap.Error(err))
			}
		}
	}
	return c, nil
}

func (s *Service) invalidateCounts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, countsCacheKey).Err(); err != nil {
		s.log.Debug("counts cache invalidation failed", zap.Error(err))
	}
}
