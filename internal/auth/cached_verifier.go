package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTokenCacheTTL = 5 * time.Minute
	tokenKeyPrefix       = "ai-fitness-token||"
)

// CachedVerifier remembers verified identities in redis, keyed by the token hash.
// Redis failures never fail a request, verification just falls through to next.
type CachedVerifier struct {
	next        Verifier
	ttl         time.Duration
	redisClient *redis.Client
	now         func() time.Time
}

func NewCachedVerifier(next Verifier, ttl time.Duration, redisClient *redis.Client) *CachedVerifier {
	return &CachedVerifier{
		next:        next,
		ttl:         ttl,
		redisClient: redisClient,
		now:         time.Now,
	}
}

func (v *CachedVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	tokenKey := tokenCacheKey(token)

	cached, err := v.redisClient.Get(ctx, tokenKey).Result()
	switch {
	case err == nil:
		identity := &Identity{}
		if err := json.Unmarshal([]byte(cached), identity); err == nil {
			return identity, nil
		}
		log.Warnf("invalid cached identity, verifying again")
	case !errors.Is(err, redis.Nil):
		log.Warnf("get cached identity: %s", err)
	}

	identity, err := v.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := v.ttl
	if !identity.ExpiresAt.IsZero() {
		if untilExpiry := identity.ExpiresAt.Sub(v.now()); untilExpiry < ttl {
			ttl = untilExpiry
		}
	}
	if ttl <= 0 {
		return identity, nil
	}

	identityJson, err := json.Marshal(identity)
	if err != nil {
		log.Errorf("marshal identity: %s", err)
		return identity, nil
	}
	if err := v.redisClient.Set(ctx, tokenKey, string(identityJson), ttl).Err(); err != nil {
		log.Warnf("cache identity: %s", err)
	}

	return identity, nil
}

func tokenCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenKeyPrefix + hex.EncodeToString(sum[:])
}
