package store

import (
	"testing"

	"github.com/farmtech/go-silo-cache/internal/key"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	return &Record{
		Hash:        key.New("area:12:moisture"),
		Key:         "area:12:moisture",
		CreatedAt:   100,
		AccessedAt:  200,
		AccessCount: 7,
		TTL:         int64(3_600_000_000_000),
		ExpiresAt:   3_600_000_000_100,
		Category:    "sensor_readings",
		Tags:        []string{"area:12", "moisture"},
		Payload:     []byte(`{"value":42.5}`),
	}
}

func TestRecordRoundTrip(t *testing.T) {
	in := sampleRecord()
	out, err := FromBytes(in.Hash, in.ToBytes())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestRecordRoundTripEmptyOptionals(t *testing.T) {
	in := &Record{
		Hash:    key.New("k"),
		Key:     "k",
		Payload: []byte{},
	}
	out, err := FromBytes(in.Hash, in.ToBytes())
	require.NoError(t, err)
	require.Equal(t, in.Key, out.Key)
	require.Empty(t, out.Category)
	require.Empty(t, out.Tags)
	require.Empty(t, out.Payload)
}

func TestRecordCorruptChecksum(t *testing.T) {
	data := sampleRecord().ToBytes()
	data[len(data)-1] ^= 0xff

	_, err := FromBytes(key.New("area:12:moisture"), data)
	require.ErrorIs(t, err, ErrCorruptRecord)
}

func TestRecordTruncated(t *testing.T) {
	data := sampleRecord().ToBytes()
	for _, n := range []int{0, 3, 10, len(data) / 2} {
		_, err := FromBytes(key.New("area:12:moisture"), data[:n])
		require.ErrorIs(t, err, ErrCorruptRecord, "prefix of %d bytes", n)
	}
}

func TestRecordExpired(t *testing.T) {
	rec := &Record{ExpiresAt: 100}
	require.False(t, rec.Expired(99))
	require.True(t, rec.Expired(100))
	require.True(t, rec.Expired(101))

	forever := &Record{ExpiresAt: 0}
	require.False(t, forever.Expired(1<<62))
}
