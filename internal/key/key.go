package key

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Size is the width of a digest in bytes.
const Size = 16

// Key is the 128-bit xxh3 digest of a caller-supplied cache key.
// It is comparable and used as the map key of the memory index and,
// through Bytes, as the record key of the durable store.
type Key struct {
	hi uint64
	lo uint64
}

func New(key string) Key {
	sum := xxh3.HashString128(key)
	return Key{hi: sum.Hi, lo: sum.Lo}
}

// FromBytes rebuilds a digest from its store representation.
func FromBytes(b []byte) (Key, bool) {
	if len(b) != Size {
		return Key{}, false
	}
	return Key{
		hi: binary.LittleEndian.Uint64(b[:8]),
		lo: binary.LittleEndian.Uint64(b[8:]),
	}, true
}

func (k Key) Bytes() []byte {
	b := make([]byte, Size)
	binary.LittleEndian.PutUint64(b[:8], k.hi)
	binary.LittleEndian.PutUint64(b[8:], k.lo)
	return b
}

// String renders the digest as hex for log context.
func (k Key) String() string {
	return hex.EncodeToString(k.Bytes())
}
