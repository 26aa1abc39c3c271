package profile

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// entropy is shared so ids drawn in the same millisecond get increasing
// suffixes. ulid.MonotonicEntropy is not safe for concurrent use.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GenerateID returns an opaque, time-ordered profile id: the base-36
// millisecond timestamp followed by a base-36 random suffix.
//
// Ids are unique within one process. They are not secrets and carry no
// guarantee across processes writing the same collection.
func GenerateID() string {
	return generateID(time.Now())
}

func generateID(now time.Time) string {
	entropyMu.Lock()
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	entropyMu.Unlock()
	if err != nil {
		// Monotonic overflow inside one millisecond; fall back to a fresh draw.
		id = ulid.Make()
	}

	prefix := strconv.FormatUint(id.Time(), 36)
	suffix := new(big.Int).SetBytes(id.Entropy()).Text(36)
	return prefix + suffix
}
