package geo

import (
	"errors"
	"math"
)

// ErrMalformedPolyline indicates that an encoded polyline could not be decoded,
// typically because the input was truncated mid-value.
var ErrMalformedPolyline = errors.New("malformed polyline")

// DecodePolyline decodes a polyline-encoded string into an ordered slice of
// coordinates. The polyline format uses precision of 5 decimal places
// (standard Google/OTP format). Returns ErrMalformedPolyline on invalid input.
func DecodePolyline(encoded string) ([]Coordinate, error) {
	if encoded == "" {
		return nil, nil
	}

	var coords []Coordinate
	index := 0
	lat := 0
	lon := 0

	for index < len(encoded) {
		latDelta, newIndex, ok := decodeValue(encoded, index)
		if !ok {
			return nil, ErrMalformedPolyline
		}
		index = newIndex
		lat += latDelta

		lonDelta, newIndex, ok := decodeValue(encoded, index)
		if !ok {
			// A latitude without a matching longitude.
			return nil, ErrMalformedPolyline
		}
		index = newIndex
		lon += lonDelta

		coords = append(coords, Coordinate{
			Lat: float64(lat) / 1e5,
			Lon: float64(lon) / 1e5,
		})
	}

	return coords, nil
}

// decodeValue decodes a single delta value from the polyline at the given
// index. Returns the decoded delta, the new index position, and whether the
// value was well formed.
func decodeValue(encoded string, index int) (int, int, bool) {
	if index >= len(encoded) {
		return 0, index, false
	}

	shift := 0
	result := 0
	terminated := false

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		if b < 0 {
			return 0, index, false
		}
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			terminated = true
			break
		}
	}
	if !terminated {
		return 0, index, false
	}

	// Two's complement for negative values.
	if result&1 != 0 {
		return ^(result >> 1), index, true
	}
	return result >> 1, index, true
}

// EncodePolyline encodes a slice of coordinates into a polyline-encoded string
// at precision 5.
func EncodePolyline(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(coords)*4)
	prevLat := 0
	prevLon := 0

	for _, coord := range coords {
		lat := int(math.Round(coord.Lat * 1e5))
		lon := int(math.Round(coord.Lon * 1e5))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return string(encoded)
}

func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}

// Length calculates the total length of a polyline in meters.
func Length(coords []Coordinate) float64 {
	if len(coords) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(coords); i++ {
		total += Haversine(coords[i-1], coords[i])
	}
	return total
}
