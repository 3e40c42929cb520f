package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrReferralNotFound is returned for unknown, expired or already used tokens
var ErrReferralNotFound = errors.New("referral token not found or expired")

const (
	RedisReferralKeyPrefix = "referral:"

	defaultReferralTTL = 72 * time.Hour
)

// redeemReferralScript reads and deletes a token in one step so it can be used once.
var redeemReferralScript = redis.NewScript(`
	local parent = redis.call('GET', KEYS[1])
	if not parent then
		return false
	end
	redis.call('DEL', KEYS[1])
	return parent
`)

// ReferralService issues the one-time tokens a parent shares so that a child's
// signup is linked to them automatically.
type ReferralService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewReferralService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *ReferralService {
	if ttl <= 0 {
		ttl = defaultReferralTTL
	}
	return &ReferralService{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// Issue creates a token bound to the parent
func (s *ReferralService) Issue(ctx context.Context, parentID uuid.UUID) (string, time.Time, error) {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	key := RedisReferralKeyPrefix + token

	if err := s.redisClient.Set(ctx, key, parentID.String(), s.ttl).Err(); err != nil {
		s.log.Warnf("Failed to store referral token: %+v", err)
		return "", time.Time{}, fmt.Errorf("store referral token: %w", err)
	}

	return token, time.Now().Add(s.ttl), nil
}

// Peek returns the parent a token belongs to without consuming it
func (s *ReferralService) Peek(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := s.redisClient.Get(ctx, RedisReferralKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrReferralNotFound
		}
		return uuid.Nil, fmt.Errorf("read referral token: %w", err)
	}
	return uuid.Parse(raw)
}

// Redeem consumes a token and returns the parent it was issued for
func (s *ReferralService) Redeem(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := redeemReferralScript.Run(ctx, s.redisClient, []string{RedisReferralKeyPrefix + token}).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrReferralNotFound
		}
		s.log.Warnf("Failed to redeem referral token: %+v", err)
		return uuid.Nil, fmt.Errorf("redeem referral token: %w", err)
	}

	parentID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt referral token: %w", err)
	}
	return parentID, nil
}
