package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"altify/internal/models"
)

const recentProductLimit = 10

// CacheService holds all session-scoped state: credentials, the fetched
// product snapshot, the recent-products list, and the cached coverage
// report. Everything expires with the session TTL; Redis is the only place
// credentials ever live.
type CacheService interface {
	// Session management
	SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	ActiveSessionIDs(ctx context.Context) ([]uuid.UUID, error)

	// Product snapshot
	SetProducts(ctx context.Context, sessionID uuid.UUID, products []*models.Product, ttl time.Duration) error
	GetProducts(ctx context.Context, sessionID uuid.UUID) ([]*models.Product, error)
	DeleteProducts(ctx context.Context, sessionID uuid.UUID) error

	// Recent products
	PushRecentProduct(ctx context.Context, sessionID uuid.UUID, productID string) error
	GetRecentProducts(ctx context.Context, sessionID uuid.UUID) ([]string, error)

	// Coverage report caching
	SetCoverage(ctx context.Context, sessionID uuid.UUID, report *models.CoverageReport, ttl time.Duration) error
	GetCoverage(ctx context.Context, sessionID uuid.UUID) (*models.CoverageReport, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port the same way plain host:port is accepted.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func sessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("altify:session:%s", sessionID.String())
}

func productsKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("altify:products:%s", sessionID.String())
}

func recentKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("altify:recent:%s", sessionID.String())
}

func coverageKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("altify:coverage:%s", sessionID.String())
}

func (r *redisCacheService) SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // session expired or never existed
		}
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	keys := []string{
		sessionKey(sessionID),
		productsKey(sessionID),
		recentKey(sessionID),
		coverageKey(sessionID),
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) ActiveSessionIDs(ctx context.Context) ([]uuid.UUID, error) {
	keys, err := r.client.Keys(ctx, "altify:session:*").Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(keys))
	for _, key := range keys {
		idStr := strings.TrimPrefix(key, "altify:session:")
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *redisCacheService) SetProducts(ctx context.Context, sessionID uuid.UUID, products []*models.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, productsKey(sessionID), data, ttl).Err()
}

func (r *redisCacheService) GetProducts(ctx context.Context, sessionID uuid.UUID) ([]*models.Product, error) {
	data, err := r.client.Get(ctx, productsKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // nothing fetched yet
		}
		return nil, err
	}

	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *redisCacheService) DeleteProducts(ctx context.Context, sessionID uuid.UUID) error {
	return r.client.Del(ctx, productsKey(sessionID)).Err()
}

func (r *redisCacheService) PushRecentProduct(ctx context.Context, sessionID uuid.UUID, productID string) error {
	key := recentKey(sessionID)

	// Dedupe before pushing so revisits move the product to the front.
	if err := r.client.LRem(ctx, key, 0, productID).Err(); err != nil {
		return err
	}
	if err := r.client.LPush(ctx, key, productID).Err(); err != nil {
		return err
	}
	return r.client.LTrim(ctx, key, 0, recentProductLimit-1).Err()
}

func (r *redisCacheService) GetRecentProducts(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	ids, err := r.client.LRange(ctx, recentKey(sessionID), 0, recentProductLimit-1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return ids, nil
}

func (r *redisCacheService) SetCoverage(ctx context.Context, sessionID uuid.UUID, report *models.CoverageReport, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, coverageKey(sessionID), data, ttl).Err()
}

func (r *redisCacheService) GetCoverage(ctx context.Context, sessionID uuid.UUID) (*models.CoverageReport, error) {
	data, err := r.client.Get(ctx, coverageKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var report models.CoverageReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
