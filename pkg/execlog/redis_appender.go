package execlog

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient - подмножество redis.Cmdable, используемое appender'ом
type RedisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// RedisAppender публикует записи в Redis.
//
// Redis-ключи:
//
//	SET  <prefix>:<hash>:last  <JSON>  EX <ttl>  - последнее выполнение statement
//	PUB  <prefix>:<operation>                    - поток событий по виду операции
type RedisAppender struct {
	client RedisClient
	prefix string
	ttl    time.Duration
	level  Level
}

// RedisAppenderConfig - конфигурация redis appender
type RedisAppenderConfig struct {
	Address  string
	Password string
	DB       int

	// Prefix - префикс ключей, по умолчанию "dataaccess:exec"
	Prefix string

	// TTL ключа последнего выполнения (0 = без срока)
	TTL time.Duration

	Level Level
}

// NewRedisAppender создает appender с собственным клиентом go-redis
func NewRedisAppender(config RedisAppenderConfig) *RedisAppender {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return NewRedisAppenderWithClient(client, config)
}

// NewRedisAppenderWithClient uses an existing client; Address, Password and DB are ignored.
func NewRedisAppenderWithClient(client RedisClient, config RedisAppenderConfig) *RedisAppender {
	prefix := config.Prefix
	if prefix == "" {
		prefix = "dataaccess:exec"
	}
	return &RedisAppender{
		client: client,
		prefix: prefix,
		ttl:    config.TTL,
		level:  config.Level,
	}
}

// StateKey - ключ последнего выполнения statement с данным hash
func (ra *RedisAppender) StateKey(hash string) string {
	return fmt.Sprintf("%s:%s:last", ra.prefix, hash)
}

// Channel - канал событий для операции
func (ra *RedisAppender) Channel(op Operation) string {
	return fmt.Sprintf("%s:%s", ra.prefix, op)
}

// Append - SET + PUBLISH
func (ra *RedisAppender) Append(ctx context.Context, entry *Entry) error {
	payload, err := entry.FilterByLevel(ra.level).ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := ra.client.Set(ctx, ra.StateKey(entry.StatementHash), payload, ra.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	if err := ra.client.Publish(ctx, ra.Channel(entry.Operation), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (ra *RedisAppender) Close() error {
	return ra.client.Close()
}
