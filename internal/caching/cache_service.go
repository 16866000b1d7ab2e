package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"elevate2/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Program catalog caching
	GetProgram(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Program, error)
	SetProgram(ctx context.Context, tenantID uuid.UUID, program *models.Program, ttl time.Duration) error

	// License caching. The guard caches validated licenses briefly; tenant
	// updates drop the entry so status changes take effect promptly.
	GetLicense(ctx context.Context, tenantID uuid.UUID) (*models.License, error)
	SetLicense(ctx context.Context, tenantID uuid.UUID, license *models.License, ttl time.Duration) error
	DeleteLicense(ctx context.Context, tenantID uuid.UUID) error

	// Check-in codes live only in Redis; the TTL is the code lifetime.
	SetCheckinCode(ctx context.Context, code *models.CheckinCode, ttl time.Duration) error
	GetCheckinCode(ctx context.Context, code string) (*models.CheckinCode, error)

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for redemption markers
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port URLs as well as bare host:port.
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

func (r *redisCacheService) GetProgram(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Program, error) {
	key := fmt.Sprintf("elevate:program:%s:%s", tenantID.String(), slug)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var program models.Program
	if err := json.Unmarshal(data, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *redisCacheService) SetProgram(ctx context.Context, tenantID uuid.UUID, program *models.Program, ttl time.Duration) error {
	key := fmt.Sprintf("elevate:program:%s:%s", tenantID.String(), program.Slug)
	data, err := json.Marshal(program)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetLicense(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	key := fmt.Sprintf("elevate:license:%s", tenantID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var license models.License
	if err := json.Unmarshal(data, &license); err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *redisCacheService) SetLicense(ctx context.Context, tenantID uuid.UUID, license *models.License, ttl time.Duration) error {
	key := fmt.Sprintf("elevate:license:%s", tenantID.String())
	data, err := json.Marshal(license)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteLicense(ctx context.Context, tenantID uuid.UUID) error {
	key := fmt.Sprintf("elevate:license:%s", tenantID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) SetCheckinCode(ctx context.Context, code *models.CheckinCode, ttl time.Duration) error {
	key := fmt.Sprintf("elevate:checkin:%s", code.Code)
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetCheckinCode(ctx context.Context, code string) (*models.CheckinCode, error) {
	key := fmt.Sprintf("elevate:checkin:%s", code)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // expired or never issued
		}
		return nil, err
	}

	var checkinCode models.CheckinCode
	if err := json.Unmarshal(data, &checkinCode); err != nil {
		return nil, err
	}
	return &checkinCode, nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("elevate:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}
