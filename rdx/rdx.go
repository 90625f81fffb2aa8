package rdx

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ijake-16/homebar-menu/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

var errNoRedis = errors.New("redis not connected")

const cacheTTL = 10 * time.Minute

// Init connects to Redis from REDIS_URL. The cache is best-effort: if the
// connection fails, Conn stays nil and every helper degrades to a miss.
func Init() {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := client.Ping(globals.Ctx).Err(); err != nil {
		log.Printf("Redis unavailable at %s, caching disabled: %v", addr, err)
		return
	}
	Conn = client
}

// Close tears down the connection on shutdown.
func Close() {
	if Conn != nil {
		Conn.Close()
	}
}

func RdxGet(key string) (string, error) {
	if Conn == nil {
		return "", errNoRedis
	}
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxSet(key, value string) error {
	if Conn == nil {
		return errNoRedis
	}
	return Conn.Set(globals.Ctx, key, value, cacheTTL).Err()
}

func RdxDel(keys ...string) error {
	if Conn == nil {
		return errNoRedis
	}
	return Conn.Del(globals.Ctx, keys...).Err()
}
