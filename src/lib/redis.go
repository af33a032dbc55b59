package lib

import (
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// WaitlistCountKey caches the public waitlist signup count.
const WaitlistCountKey = "waitlist:count"

// ArtistLifecycleKey is the per-artist counter for one booking
// lifecycle event (created/confirmed/cancelled/completed/expired).
func ArtistLifecycleKey(artistId uint, event string) string {
	return fmt.Sprintf("artist::%d:lifecycle:%s", artistId, event)
}

// CheckoutRequestKey maps a checkout request id to its transaction for
// the webhook round trip.
func CheckoutRequestKey(requestId string) string {
	return fmt.Sprintf("checkout::%s:txn", requestId)
}

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}
