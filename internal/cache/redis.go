package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// FeedKey caches the public all-posts feed
const FeedKey = "feed:posts"

// Cache is a thin cache-aside layer over Redis. When Redis is unreachable
// the client stays nil and every operation degrades to a no-op, so the API
// keeps working without a cache.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at addr. An empty addr or a failed ping yields a
// disabled cache.
func New(addr string) *Cache {
	if addr == "" {
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		return &Cache{}
	}
	log.Println("Successfully connected to Redis!")
	return &Cache{client: client}
}

// Close closes the Redis connection
func (c *Cache) Close() {
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}
	}
}
