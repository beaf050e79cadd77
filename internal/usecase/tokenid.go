package usecase

import (
	"crypto/rand"
	"io"
	"math/big"
)

const (
	tokenDigits  = 10
	tokenLetters = 2
)

// generateTokenID creates a 12 character id of ten digits and two uppercase
// letters, shuffled so character classes carry no positional information.
func generateTokenID() (string, error) {
	return generateTokenIDFrom(rand.Reader)
}

func generateTokenIDFrom(r io.Reader) (string, error) {
	const digits = "0123456789"
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	buf := make([]byte, 0, tokenDigits+tokenLetters)
	for i := 0; i < tokenDigits; i++ {
		n, err := randIntn(r, len(digits))
		if err != nil {
			return "", err
		}
		buf = append(buf, digits[n])
	}
	for i := 0; i < tokenLetters; i++ {
		n, err := randIntn(r, len(letters))
		if err != nil {
			return "", err
		}
		buf = append(buf, letters[n])
	}

	// Fisher-Yates
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randIntn(r, i+1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func randIntn(r io.Reader, n int) (int, error) {
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
