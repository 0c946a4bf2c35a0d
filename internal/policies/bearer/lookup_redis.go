package bearer

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// redisLookup reads the role stored at "<prefix>:<token>".
type redisLookup struct {
	client *redis.Client
	prefix string
}

func (l *redisLookup) Lookup(ctx context.Context, token string) (string, error) {
	role, err := l.client.Get(ctx, l.prefix+":"+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}
