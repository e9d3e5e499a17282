package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-quiz-runner/pkg/database"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- gorm (sqlite / postgres) ---

type kvEntry struct {
	Key       string    `gorm:"column:kv_key;type:varchar(128);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (kvEntry) TableName() string {
	return "client_kv_entries"
}

type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var e kvEntry
	if err := b.db.WithContext(ctx).Where("kv_key = ?", key).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return e.Value, true, nil
}

func (b *GormBackend) Set(ctx context.Context, key, value string) error {
	e := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (b *GormBackend) Delete(ctx context.Context, key string) error {
	return b.db.WithContext(ctx).Where("kv_key = ?", key).Delete(&kvEntry{}).Error
}

func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- redis ---

const redisKeyPrefix = "quiz:client:"

type RedisBackend struct {
	rdb *redis.Client
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	return b.rdb.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, redisKeyPrefix+key).Err()
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}

// --- memory (tests, throwaway runs) ---

type MemoryBackend struct {
	cache *cache.Cache
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{cache: cache.New(cache.NoExpiration, 0)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	if x, found := b.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.cache.Delete(key)
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}

// Open builds a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "memory":
		return New(NewMemoryBackend()), nil
	case "redis":
		opt, err := redis.ParseURL(dsn)
		if err != nil {
			opt = &redis.Options{Addr: dsn}
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return New(NewRedisBackend(rdb)), nil
	case database.DriverSQLite, database.DriverPostgres:
		db, err := database.NewGormDB(database.GormConfig{Driver: driver, DSN: dsn, Quiet: true})
		if err != nil {
			return nil, err
		}
		backend, err := NewGormBackend(db)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		return New(backend), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}
