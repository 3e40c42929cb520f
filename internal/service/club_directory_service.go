package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"csystem-sip/internal/domain/repository"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	// RedisClubDirectoryKey holds the serialized public club list
	RedisClubDirectoryKey = "clubs:directory"

	// Timeout for individual Redis operations
	redisDirectoryTimeout = 2 * time.Second

	defaultDirectoryTTL = 10 * time.Minute
)

// ClubSummary is the public directory entry of a club
type ClubSummary struct {
	ID              uuid.UUID `json:"id"`
	CoreID          string    `json:"core_id"`
	Name            string    `json:"name"`
	ProvinceID      string    `json:"province_id,omitempty"`
	CityID          string    `json:"city_id,omitempty"`
	Hotline         string    `json:"hotline,omitempty"`
	IsPerpaniMember bool      `json:"is_perpani_member"`
}

// ClubDirectoryService serves the public club list from Redis, loading it from
// PostgreSQL on a miss. Concurrent misses share a single database query, and a
// background loop refreshes the cache before it expires.
//
// Redis is an accelerator only: when it is unavailable the list is served
// straight from the database.
type ClubDirectoryService struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	userRepo    repository.UserRepository
	ttl         time.Duration

	group singleflight.Group

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// NewClubDirectoryService creates the service and starts its refresh loop.
// Call Stop() during graceful shutdown.
func NewClubDirectoryService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, userRepo repository.UserRepository, ttl time.Duration) *ClubDirectoryService {
	if ttl <= 0 {
		ttl = defaultDirectoryTTL
	}
	svc := &ClubDirectoryService{
		db:          db,
		redisClient: redisClient,
		log:         log,
		userRepo:    userRepo,
		ttl:         ttl,
		stopChan:    make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.refreshLoop()

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *ClubDirectoryService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("ClubDirectoryService stopped")
	}
}

// SyncOnStartup loads the directory from the database and primes the cache.
func (s *ClubDirectoryService) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Priming club directory cache...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping club directory sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	clubs, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.log.Infof("Club directory primed: %d clubs in %v", len(clubs), time.Since(startTime))
	return nil
}

// List returns every active club ordered by name.
func (s *ClubDirectoryService) List(ctx context.Context) ([]ClubSummary, error) {
	if clubs, ok := s.cached(ctx); ok {
		return clubs, nil
	}

	v, err, _ := s.group.Do(RedisClubDirectoryKey, func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]ClubSummary), nil
}

// Invalidate drops the cached list; the next List reloads it.
func (s *ClubDirectoryService) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisDirectoryTimeout)
	defer cancel()

	if err := s.redisClient.Del(ctx, RedisClubDirectoryKey).Err(); err != nil {
		s.log.Warnf("Failed to invalidate club directory: %+v", err)
		return fmt.Errorf("invalidate club directory: %w", err)
	}
	return nil
}

func (s *ClubDirectoryService) cached(ctx context.Context) ([]ClubSummary, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisDirectoryTimeout)
	defer cancel()

	raw, err := s.redisClient.Get(ctx, RedisClubDirectoryKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnf("Failed to read club directory from Redis: %+v", err)
		}
		return nil, false
	}

	var clubs []ClubSummary
	if err := sonic.Unmarshal(raw, &clubs); err != nil {
		s.log.Warnf("Discarding malformed club directory cache: %+v", err)
		return nil, false
	}
	return clubs, true
}

// load reads the directory from the database and writes it back to Redis.
// A failed cache write is logged, not returned.
func (s *ClubDirectoryService) load(ctx context.Context) ([]ClubSummary, error) {
	users, err := s.userRepo.FindActiveClubs(ctx, s.db)
	if err != nil {
		s.log.Warnf("Failed to load clubs: %+v", err)
		return nil, err
	}

	clubs := make([]ClubSummary, 0, len(users))
	for _, u := range users {
		summary := ClubSummary{
			ID:     u.ID,
			CoreID: u.CoreID,
			Name:   u.Name,
		}
		if u.ProvinceID != nil {
			summary.ProvinceID = *u.ProvinceID
		}
		if u.CityID != nil {
			summary.CityID = *u.CityID
		}
		if u.Club != nil {
			summary.IsPerpaniMember = u.Club.IsPerpaniMember
			if u.Club.Hotline != nil {
				summary.Hotline = *u.Club.Hotline
			}
		}
		clubs = append(clubs, summary)
	}

	raw, err := sonic.Marshal(clubs)
	if err != nil {
		s.log.Warnf("Failed to encode club directory: %+v", err)
		return clubs, nil
	}

	setCtx, cancel := context.WithTimeout(ctx, redisDirectoryTimeout)
	defer cancel()
	if err := s.redisClient.Set(setCtx, RedisClubDirectoryKey, raw, s.ttl).Err(); err != nil {
		s.log.Warnf("Failed to cache club directory: %+v", err)
	}

	return clubs, nil
}

// refreshLoop reloads the directory at half the TTL so readers rarely miss.
func (s *ClubDirectoryService) refreshLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Club directory refresh goroutine stopping")
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := s.load(ctx); err != nil {
				s.log.Warnf("Club directory refresh failed: %+v", err)
			}
			cancel()
		}
	}
}
