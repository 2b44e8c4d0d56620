package pkg

import (
	"crypto/rand"
	"errors"
)

// ResetCodeDigits is the length of emailed password reset codes.
const ResetCodeDigits = 6

// RandDigits returns n decimal digits read from crypto/rand. Bytes of 250
// and above are dropped so every digit is equally likely.
func RandDigits(n int) (string, error) {
	if n < 0 {
		return "", errors.New("pkg: negative digit count")
	}
	out := make([]byte, 0, n)
	buf := make([]byte, n+4)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, c := range buf {
			if c >= 250 || len(out) == n {
				continue
			}
			out = append(out, '0'+c%10)
		}
	}
	return string(out), nil
}
