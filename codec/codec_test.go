package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type reading struct {
	SensorID string  `json:"sensor_id"`
	Moisture float64 `json:"moisture"`
	PH       float64 `json:"ph"`
}

func TestJSONRoundTrip(t *testing.T) {
	c := NewJSON[reading]()

	in := reading{SensorID: "hum-007", Moisture: 42.5, PH: 6.8}
	data, err := c.Encode(in)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	out, err := c.Decode(data)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestJSONEncodeFailure(t *testing.T) {
	c := NewJSON[chan int]()
	_, err := c.Encode(make(chan int))
	require.Error(t, err)
}

func TestJSONDecodeFailure(t *testing.T) {
	c := NewJSON[reading]()
	_, err := c.Decode([]byte("{truncated"))
	require.Error(t, err)
}
