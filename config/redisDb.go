package config

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var (
	rdb *redis.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

// ConnectRedis dials the optional redis instance used by the rate limiter.
// Redis is not required for correctness; when it is unreachable the server
// runs without rate limiting and logs a warning.
func ConnectRedis() {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis not ready (%s): %v; continuing without redis", address, err)
		return
	}
	rdb = client
}
