package booking

import (
	"crypto/rand"
	"math/big"
)

// GenerateConfirmationCode returns a random 8 character uppercase
// alphanumeric code. Uniqueness is enforced by the store's unique index; the
// keyspace (36^8) makes retries a non-concern in practice.
func GenerateConfirmationCode() ConfirmationCode {
	alphabetSize := big.NewInt(int64(len(confirmationCodeAlphabet)))
	buffer := make([]byte, confirmationCodeLength)
	for index := range buffer {
		position, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; there is no reasonable fallback.
			panic(err)
		}
		buffer[index] = confirmationCodeAlphabet[position.Int64()]
	}
	return ConfirmationCode{value: string(buffer)}
}
