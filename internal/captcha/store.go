package captcha

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

var ctx = context.Background()

// TTL is the captcha lifetime inside Redis.
const TTL = 300 * time.Second

// Store keeps short-lived captcha codes in Redis, keyed by recipient address.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func key(address string) string {
	return fmt.Sprintf("captcha_%s", address)
}

// Set stores the code for the address with the standard TTL.
func (s *Store) Set(address, code string) error {
	return s.rdb.Set(ctx, key(address), code, TTL).Err()
}

// Get fetches the live code for the address. An expired or never-issued
// captcha is reported as an empty string, not an error.
func (s *Store) Get(address string) (string, error) {
	code, err := s.rdb.Get(ctx, key(address)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// GenerateCode draws a uniform 6-digit numeric code. The code is handled
// as a string throughout so leading zeros survive.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
