// Package itinerary defines the planned multi-leg trip model consumed by the
// trip tracker. Itineraries are produced by the planning collaborator and are
// immutable once loaded; the tracker only reads them.
package itinerary

import (
	"time"

	"github.com/tripsentry/tripsentry/pkg/geo"
)

// Mode represents the mode of transport for a single leg.
type Mode string

const (
	ModeWalk    Mode = "WALK"
	ModeBicycle Mode = "BICYCLE"
	ModeBus     Mode = "BUS"
	ModeSubway  Mode = "SUBWAY"
	ModeTram    Mode = "TRAM"
	ModeRail    Mode = "RAIL"
)

// IsTransit returns true for modes where the traveler rides a vehicle with
// fixed stops rather than steering themselves.
func (m Mode) IsTransit() bool {
	switch m {
	case ModeBus, ModeSubway, ModeTram, ModeRail:
		return true
	}
	return false
}

// Place is a named location on an itinerary: a leg origin, destination or
// intermediate stop.
type Place struct {
	Name   string
	Lat    float64
	Lon    float64
	StopID string
}

// Coordinate returns the place's position as a geo coordinate.
func (p Place) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: p.Lat, Lon: p.Lon}
}

// Step is a single turn-by-turn waypoint within a leg's geometry.
type Step struct {
	Lat               float64
	Lon               float64
	StreetName        string
	RelativeDirection string // e.g. DEPART, CONTINUE, LEFT, RIGHT
	AbsoluteDirection string // e.g. NORTH, SOUTHWEST
	Distance          float64 // meters from the previous step
}

// Coordinate returns the step's position as a geo coordinate.
func (s Step) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: s.Lat, Lon: s.Lon}
}

// Leg is one mode-homogeneous segment of an itinerary, e.g. one walk or one
// bus ride. The encoded geometry's cumulative length approximates Distance;
// steps are ordered along the geometry.
type Leg struct {
	Mode      Mode
	StartTime time.Time
	EndTime   time.Time
	Duration  float64 // seconds
	Distance  float64 // meters
	Geometry  string  // encoded polyline, precision 5
	From      Place
	To        Place
	Steps     []Step

	// IntermediateStops lists the stops passed on a transit leg, excluding
	// boarding and alighting stops.
	IntermediateStops []Place
}

// Itinerary is an ordered sequence of legs with an overall time window.
type Itinerary struct {
	StartTime time.Time
	EndTime   time.Time
	Legs      []Leg
}

// NextLeg returns the leg immediately following the given leg, or nil if leg
// is the last one or not part of this itinerary. Legs are matched by identity
// within the itinerary's backing slice.
func (i *Itinerary) NextLeg(leg *Leg) *Leg {
	for idx := range i.Legs {
		if &i.Legs[idx] == leg && idx+1 < len(i.Legs) {
			return &i.Legs[idx+1]
		}
	}
	return nil
}

// Destination returns the final place of the itinerary, or the zero Place for
// an itinerary without legs.
func (i *Itinerary) Destination() Place {
	if len(i.Legs) == 0 {
		return Place{}
	}
	return i.Legs[len(i.Legs)-1].To
}
