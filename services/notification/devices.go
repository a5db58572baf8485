package notification

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisDeviceTokenSource resolves push tokens from the device registry set
// maintained by the mobile apps at login.
type RedisDeviceTokenSource struct {
	Client *redis.Client
}

func (s *RedisDeviceTokenSource) TokensForUser(ctx context.Context, userID string) ([]string, error) {
	tokens, err := s.Client.SMembers(ctx, "devices:"+userID).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read device tokens for %s: %w", userID, err)
	}
	return tokens, nil
}
