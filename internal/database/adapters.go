package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// GormAdapter adapts *gorm.DB to the Database interface.
type GormAdapter struct {
	db *gorm.DB
}

func NewGormAdapter(db *gorm.DB) *GormAdapter {
	return &GormAdapter{db: db}
}

func (g *GormAdapter) Create(value interface{}) error {
	return g.db.Create(value).Error
}

func (g *GormAdapter) Save(value interface{}) error {
	return g.db.Save(value).Error
}

func (g *GormAdapter) First(dest interface{}, conds ...interface{}) error {
	return g.db.First(dest, conds...).Error
}

func (g *GormAdapter) Find(dest interface{}, conds ...interface{}) error {
	return g.db.Find(dest, conds...).Error
}

func (g *GormAdapter) Where(query interface{}, args ...interface{}) Database {
	return &GormAdapter{db: g.db.Where(query, args...)}
}

func (g *GormAdapter) Preload(query string, args ...interface{}) Database {
	return &GormAdapter{db: g.db.Preload(query, args...)}
}

func (g *GormAdapter) Order(value interface{}) Database {
	return &GormAdapter{db: g.db.Order(value)}
}

func (g *GormAdapter) Limit(limit int) Database {
	return &GormAdapter{db: g.db.Limit(limit)}
}

func (g *GormAdapter) Model(value interface{}) Database {
	return &GormAdapter{db: g.db.Model(value)}
}

func (g *GormAdapter) Update(column string, value interface{}) error {
	return g.db.Update(column, value).Error
}

func (g *GormAdapter) Updates(values interface{}) error {
	return g.db.Updates(values).Error
}

func (g *GormAdapter) Delete(value interface{}, conds ...interface{}) error {
	return g.db.Delete(value, conds...).Error
}

func (g *GormAdapter) Count(count *int64) error {
	return g.db.Count(count).Error
}

func (g *GormAdapter) Transaction(fn func(tx Database) error) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormAdapter{db: tx})
	})
}

func (g *GormAdapter) DB() *gorm.DB {
	return g.db
}

// RedisAdapter adapts *redis.Client to the RedisClient interface.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func NewRedisClient(url, password string, maxRetries, poolSize int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	opts.MaxRetries = maxRetries
	opts.PoolSize = poolSize

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

func (r *RedisAdapter) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisAdapter) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisAdapter) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, expiration).Result()
}

func (r *RedisAdapter) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
