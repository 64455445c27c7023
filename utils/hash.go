package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// MD5 returns the lowercase hex md5 digest of s.
// Stored passwords are compared by digest equality, so the transform
// must stay deterministic.
func MD5(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
