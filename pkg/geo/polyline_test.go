package geo

import (
	"math"
	"testing"
)

func TestDecodePolyline_Valid(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		expected []Coordinate
	}{
		{
			name:    "single point",
			encoded: "_p~iF~ps|U",
			expected: []Coordinate{
				{Lat: 38.5, Lon: -120.2},
			},
		},
		{
			name:    "two points",
			encoded: "_p~iF~ps|U_ulLnnqC",
			expected: []Coordinate{
				{Lat: 38.5, Lon: -120.2},
				{Lat: 40.7, Lon: -120.95},
			},
		},
		{
			name:    "three points - Google example",
			encoded: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
			expected: []Coordinate{
				{Lat: 38.5, Lon: -120.2},
				{Lat: 40.7, Lon: -120.95},
				{Lat: 43.252, Lon: -126.453},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DecodePolyline(tt.encoded)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d coordinates, got %d", len(tt.expected), len(result))
			}

			for i, coord := range result {
				if !coordsEqual(coord, tt.expected[i], 0.001) {
					t.Errorf("coordinate %d: expected %+v, got %+v", i, tt.expected[i], coord)
				}
			}
		})
	}
}

func TestDecodePolyline_EmptyString(t *testing.T) {
	result, err := DecodePolyline("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestDecodePolyline_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{name: "truncated mid-value", encoded: "_p~iF~ps|U_"},
		{name: "latitude without longitude", encoded: "_p~iF"},
		{name: "invalid character", encoded: "_p~iF~ps|U\x1f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePolyline(tt.encoded)
			if err != ErrMalformedPolyline {
				t.Errorf("expected ErrMalformedPolyline, got %v", err)
			}
		})
	}
}

func TestEncodePolyline_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		coords []Coordinate
	}{
		{
			name:   "single point",
			coords: []Coordinate{{Lat: 38.5, Lon: -120.2}},
		},
		{
			name: "three points",
			coords: []Coordinate{
				{Lat: 38.5, Lon: -120.2},
				{Lat: 40.7, Lon: -120.95},
				{Lat: 43.252, Lon: -126.453},
			},
		},
		{
			name: "Atlanta walk leg",
			coords: []Coordinate{
				{Lat: 33.95684, Lon: -83.97971},
				{Lat: 33.95653, Lon: -83.97973},
				{Lat: 33.95622, Lon: -83.97964},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodePolyline(tt.coords)
			decoded, err := DecodePolyline(encoded)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(decoded) != len(tt.coords) {
				t.Fatalf("expected %d coordinates, got %d", len(tt.coords), len(decoded))
			}
			for i, coord := range decoded {
				if !coordsEqual(coord, tt.coords[i], 0.00001) {
					t.Errorf("coordinate %d: expected %+v, got %+v", i, tt.coords[i], coord)
				}
			}
		})
	}
}

func TestEncodePolyline_Empty(t *testing.T) {
	if encoded := EncodePolyline(nil); encoded != "" {
		t.Errorf("expected empty string, got %q", encoded)
	}
}

func TestLength(t *testing.T) {
	coords := []Coordinate{
		{Lat: 52.3676, Lon: 4.9041},
		{Lat: 52.0907, Lon: 5.1214},
	}

	length := Length(coords)

	// Amsterdam to Utrecht is roughly 34km as the crow flies.
	if length < 30000 || length > 40000 {
		t.Errorf("expected ~34km, got %.0fm", length)
	}

	if Length(coords[:1]) != 0 {
		t.Error("expected zero length for a single point")
	}
	if Length(nil) != 0 {
		t.Error("expected zero length for nil")
	}
}

func coordsEqual(a, b Coordinate, epsilon float64) bool {
	return math.Abs(a.Lat-b.Lat) < epsilon && math.Abs(a.Lon-b.Lon) < epsilon
}
