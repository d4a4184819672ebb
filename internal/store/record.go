package store

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/farmtech/go-silo-cache/internal/key"
)

// ErrCorruptRecord reports a store value whose checksum or framing does not
// decode. Callers treat it as a miss and evict the record.
var ErrCorruptRecord = errors.New("corrupt cache record")

// Record is the durable form of a cache entry, keyed in the store by the
// 128-bit digest of Key.
type Record struct {
	Hash        key.Key // bucket key, not part of the encoded value
	Key         string
	CreatedAt   int64 // unix nano
	AccessedAt  int64 // unix nano
	AccessCount int64
	TTL         int64 // nanoseconds, 0 = never expires
	ExpiresAt   int64 // unix nano, 0 = never expires
	Category    string
	Tags        []string
	Payload     []byte
}

func (r *Record) Size() int64 {
	return int64(len(r.Payload))
}

func (r *Record) Expired(nowUnixNano int64) bool {
	return r.ExpiresAt > 0 && r.ExpiresAt <= nowUnixNano
}

// Encoded layout, little-endian, prefixed by a CRC32 (IEEE) of the body:
//
//	u32 crc | u32 keyLen | key | 5×i64 timestamps/counters |
//	u32 catLen | cat | u32 tagCount | (u32 tagLen | tag)* |
//	u32 payloadLen | payload
func (r *Record) ToBytes() []byte {
	size := 4 + 4 + len(r.Key) + 5*8 + 4 + len(r.Category) + 4
	for _, t := range r.Tags {
		size += 4 + len(t)
	}
	size += 4 + len(r.Payload)

	buf := make([]byte, size)
	off := 4 // crc written last

	off = putBytes(buf, off, []byte(r.Key))
	for _, v := range []int64{r.CreatedAt, r.AccessedAt, r.AccessCount, r.TTL, r.ExpiresAt} {
		binary.LittleEndian.PutUint64(buf[off:], uint64(v))
		off += 8
	}
	off = putBytes(buf, off, []byte(r.Category))
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(r.Tags)))
	off += 4
	for _, t := range r.Tags {
		off = putBytes(buf, off, []byte(t))
	}
	putBytes(buf, off, r.Payload)

	binary.LittleEndian.PutUint32(buf[:4], crc32.ChecksumIEEE(buf[4:]))
	return buf
}

func FromBytes(hash key.Key, data []byte) (*Record, error) {
	if len(data) < 4 {
		return nil, ErrCorruptRecord
	}
	if crc32.ChecksumIEEE(data[4:]) != binary.LittleEndian.Uint32(data[:4]) {
		return nil, ErrCorruptRecord
	}

	r := &Record{Hash: hash}
	off := 4

	keyBytes, off, ok := getBytes(data, off)
	if !ok {
		return nil, ErrCorruptRecord
	}
	r.Key = string(keyBytes)

	if off+5*8 > len(data) {
		return nil, ErrCorruptRecord
	}
	for _, dst := range []*int64{&r.CreatedAt, &r.AccessedAt, &r.AccessCount, &r.TTL, &r.ExpiresAt} {
		*dst = int64(binary.LittleEndian.Uint64(data[off:]))
		off += 8
	}

	catBytes, off, ok := getBytes(data, off)
	if !ok {
		return nil, ErrCorruptRecord
	}
	r.Category = string(catBytes)

	if off+4 > len(data) {
		return nil, ErrCorruptRecord
	}
	tagCount := binary.LittleEndian.Uint32(data[off:])
	off += 4
	if tagCount > 0 {
		r.Tags = make([]string, 0, tagCount)
		for i := uint32(0); i < tagCount; i++ {
			var tag []byte
			tag, off, ok = getBytes(data, off)
			if !ok {
				return nil, ErrCorruptRecord
			}
			r.Tags = append(r.Tags, string(tag))
		}
	}

	payload, off, ok := getBytes(data, off)
	if !ok || off != len(data) {
		return nil, ErrCorruptRecord
	}
	// copy out of the bolt-owned page
	r.Payload = append([]byte(nil), payload...)

	return r, nil
}

func putBytes(buf []byte, off int, b []byte) int {
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(b)))
	off += 4
	copy(buf[off:], b)
	return off + len(b)
}

func getBytes(data []byte, off int) ([]byte, int, bool) {
	if off+4 > len(data) {
		return nil, off, false
	}
	n := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if n < 0 || off+n > len(data) {
		return nil, off, false
	}
	return data[off : off+n], off + n, true
}
