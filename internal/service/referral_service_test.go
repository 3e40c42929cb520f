package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"csystem-sip/internal/testutil"

	"github.com/google/uuid"
)

func TestReferralServiceRedeemOnce(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	svc := NewReferralService(rdb, testutil.NewLogger(), time.Hour)

	parentID := uuid.New()
	token, _, err := svc.Issue(ctx, parentID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if ttl := mr.TTL(RedisReferralKeyPrefix + token); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}

	peeked, err := svc.Peek(ctx, token)
	if err != nil || peeked != parentID {
		t.Fatalf("Peek() = %v, %v", peeked, err)
	}

	got, err := svc.Redeem(ctx, token)
	if err != nil {
		t.Fatalf("Redeem() error = %v", err)
	}
	if got != parentID {
		t.Errorf("Redeem() = %v, want %v", got, parentID)
	}

	if _, err := svc.Redeem(ctx, token); !errors.Is(err, ErrReferralNotFound) {
		t.Errorf("second Redeem() error = %v, want ErrReferralNotFound", err)
	}
}

func TestReferralServiceExpiry(t *testing.T) {
	ctx := context.Background()
	rdb, mr := testutil.NewRedis(t)
	svc := NewReferralService(rdb, testutil.NewLogger(), time.Minute)

	token, _, err := svc.Issue(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := svc.Redeem(ctx, token); !errors.Is(err, ErrReferralNotFound) {
		t.Errorf("Redeem() after expiry error = %v, want ErrReferralNotFound", err)
	}
}
