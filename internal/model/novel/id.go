package novel

import "math/rand/v2"

// IDLength is the fixed length of novel identifiers. Ids double as share
// codes, so they stay short enough to read out of an embed footer.
const IDLength = 12

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewID returns a fresh random alphanumeric identifier. Uniqueness is not
// checked here; the engine retries creation on store collisions.
func NewID() string {
	b := make([]byte, IDLength)
	for i := range b {
		b[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return string(b)
}
