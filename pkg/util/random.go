package util

import (
	"crypto/rand"
	"math/big"
)

var runesofrandom = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// RandomString returns n characters drawn from [a-zA-Z0-9].
func RandomString(n int) string {
	b := make([]rune, n)
	max := big.NewInt(int64(len(runesofrandom)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = runesofrandom[idx.Int64()]
	}
	return string(b)
}
