// Package geo provides pure geographic primitives used by the trip tracker:
// great-circle distances, bearings, point projection and polyline decoding.
// All functions are side-effect free and safe for concurrent use.
package geo

import (
	"math"
)

const earthRadiusMeters = 6371000

// Coordinate represents a geographic point with latitude and longitude in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Haversine calculates the great-circle distance between two coordinates in meters.
func Haversine(a, b Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Bearing returns the initial compass bearing from a to b in degrees, in [0, 360).
func Bearing(a, b Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(degrees(math.Atan2(y, x))+360, 360)
}

// DestinationPoint projects a new coordinate from p at the given distance in
// meters along the given compass bearing in degrees.
func DestinationPoint(p Coordinate, distanceMeters, bearingDegrees float64) Coordinate {
	angular := distanceMeters / earthRadiusMeters
	brg := radians(bearingDegrees)
	lat1 := radians(p.Lat)
	lon1 := radians(p.Lon)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) + math.Cos(lat1)*math.Sin(angular)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(
		math.Sin(brg)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Coordinate{Lat: degrees(lat2), Lon: degrees(lon2)}
}

// DistanceFromLine returns the shortest distance in meters from point p to the
// segment a-b. The segment is treated as a straight line in a local planar
// projection, which is accurate for the short segments produced by decoded leg
// geometry. A degenerate segment (a == b) falls back to the point distance.
func DistanceFromLine(a, b, p Coordinate) float64 {
	if a == b {
		return Haversine(a, p)
	}

	// Equirectangular projection centered on the segment, in meters.
	refLat := radians((a.Lat + b.Lat) / 2)
	ax, ay := project(a, refLat)
	bx, by := project(b, refLat)
	px, py := project(p, refLat)

	dx := bx - ax
	dy := by - ay
	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

func project(c Coordinate, refLat float64) (x, y float64) {
	x = radians(c.Lon) * math.Cos(refLat) * earthRadiusMeters
	y = radians(c.Lat) * earthRadiusMeters
	return x, y
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
