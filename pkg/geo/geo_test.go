package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Coordinate
		expected float64 // meters
		epsilon  float64
	}{
		{
			name:     "same point",
			a:        Coordinate{Lat: 52.3676, Lon: 4.9041},
			b:        Coordinate{Lat: 52.3676, Lon: 4.9041},
			expected: 0,
			epsilon:  0.001,
		},
		{
			name:     "Amsterdam to Utrecht",
			a:        Coordinate{Lat: 52.3676, Lon: 4.9041},
			b:        Coordinate{Lat: 52.0907, Lon: 5.1214},
			expected: 34000,
			epsilon:  1000,
		},
		{
			name:     "short hop",
			a:        Coordinate{Lat: 33.95684, Lon: -83.97971},
			b:        Coordinate{Lat: 33.95653, Lon: -83.97971},
			expected: 34.5,
			epsilon:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("expected %.1fm (±%.1f), got %.1fm", tt.expected, tt.epsilon, got)
			}
		})
	}
}

func TestBearing(t *testing.T) {
	origin := Coordinate{Lat: 52.0, Lon: 5.0}

	tests := []struct {
		name     string
		to       Coordinate
		expected float64
		epsilon  float64
	}{
		{name: "due north", to: Coordinate{Lat: 53.0, Lon: 5.0}, expected: 0, epsilon: 0.1},
		{name: "due east", to: Coordinate{Lat: 52.0, Lon: 6.0}, expected: 90, epsilon: 1},
		{name: "due south", to: Coordinate{Lat: 51.0, Lon: 5.0}, expected: 180, epsilon: 0.1},
		{name: "due west", to: Coordinate{Lat: 52.0, Lon: 4.0}, expected: 270, epsilon: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(origin, tt.to)
			if math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("expected %.1f°, got %.1f°", tt.expected, got)
			}
			if got < 0 || got >= 360 {
				t.Errorf("bearing %.1f° outside [0, 360)", got)
			}
		})
	}
}

func TestDestinationPoint(t *testing.T) {
	origin := Coordinate{Lat: 52.3676, Lon: 4.9041}

	tests := []struct {
		name     string
		distance float64
		bearing  float64
	}{
		{name: "100m north", distance: 100, bearing: 0},
		{name: "250m east", distance: 250, bearing: 90},
		{name: "1km southwest", distance: 1000, bearing: 225},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := DestinationPoint(origin, tt.distance, tt.bearing)

			// Projecting and measuring back should agree within a meter.
			if d := Haversine(origin, dest); math.Abs(d-tt.distance) > 1 {
				t.Errorf("expected %.0fm from origin, got %.1fm", tt.distance, d)
			}
			if b := Bearing(origin, dest); math.Abs(b-tt.bearing) > 1 {
				t.Errorf("expected bearing %.0f°, got %.1f°", tt.bearing, b)
			}
		})
	}
}

func TestDistanceFromLine(t *testing.T) {
	// A roughly north-south segment.
	a := Coordinate{Lat: 52.0, Lon: 5.0}
	b := Coordinate{Lat: 52.01, Lon: 5.0}

	t.Run("point on the line", func(t *testing.T) {
		mid := Coordinate{Lat: 52.005, Lon: 5.0}
		if d := DistanceFromLine(a, b, mid); d > 0.5 {
			t.Errorf("expected ~0m for a point on the line, got %.2fm", d)
		}
	})

	t.Run("point beside the line", func(t *testing.T) {
		mid := Coordinate{Lat: 52.005, Lon: 5.0}
		beside := DestinationPoint(mid, 50, 90)
		d := DistanceFromLine(a, b, beside)
		if math.Abs(d-50) > 1 {
			t.Errorf("expected ~50m, got %.2fm", d)
		}
	})

	t.Run("point beyond the segment end clamps to endpoint", func(t *testing.T) {
		beyond := DestinationPoint(b, 80, 0)
		d := DistanceFromLine(a, b, beyond)
		if math.Abs(d-80) > 1 {
			t.Errorf("expected ~80m to endpoint, got %.2fm", d)
		}
	})

	t.Run("degenerate segment falls back to point distance", func(t *testing.T) {
		p := DestinationPoint(a, 120, 45)
		d := DistanceFromLine(a, a, p)
		if math.Abs(d-120) > 1 {
			t.Errorf("expected ~120m, got %.2fm", d)
		}
	})
}
