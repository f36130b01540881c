package planner

import (
	"time"

	"github.com/tripsentry/tripsentry/internal/itinerary"
)

// Wire types for the planner's itinerary response. Only the fields the
// tracker consumes are mapped.

type wireItinerary struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Legs      []wireLeg `json:"legs"`
}

type wireLeg struct {
	Mode              string      `json:"mode"`
	StartTime         time.Time   `json:"startTime"`
	EndTime           time.Time   `json:"endTime"`
	Duration          float64     `json:"duration"`
	Distance          float64     `json:"distance"`
	From              wirePlace   `json:"from"`
	To                wirePlace   `json:"to"`
	LegGeometry       wireGeom    `json:"legGeometry"`
	Steps             []wireStep  `json:"steps"`
	IntermediateStops []wirePlace `json:"intermediateStops"`
}

type wireGeom struct {
	Points string `json:"points"`
}

type wirePlace struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	StopID string  `json:"stopId"`
}

type wireStep struct {
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	StreetName        string  `json:"streetName"`
	RelativeDirection string  `json:"relativeDirection"`
	AbsoluteDirection string  `json:"absoluteDirection"`
	Distance          float64 `json:"distance"`
}

func (w wireItinerary) toItinerary() *itinerary.Itinerary {
	itin := &itinerary.Itinerary{
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		Legs:      make([]itinerary.Leg, 0, len(w.Legs)),
	}
	for _, l := range w.Legs {
		itin.Legs = append(itin.Legs, l.toLeg())
	}
	return itin
}

func (w wireLeg) toLeg() itinerary.Leg {
	leg := itinerary.Leg{
		Mode:      itinerary.Mode(w.Mode),
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		Duration:  w.Duration,
		Distance:  w.Distance,
		Geometry:  w.LegGeometry.Points,
		From:      w.From.toPlace(),
		To:        w.To.toPlace(),
	}
	for _, s := range w.Steps {
		leg.Steps = append(leg.Steps, itinerary.Step{
			Lat:               s.Lat,
			Lon:               s.Lon,
			StreetName:        s.StreetName,
			RelativeDirection: s.RelativeDirection,
			AbsoluteDirection: s.AbsoluteDirection,
			Distance:          s.Distance,
		})
	}
	for _, p := range w.IntermediateStops {
		leg.IntermediateStops = append(leg.IntermediateStops, p.toPlace())
	}
	return leg
}

func (w wirePlace) toPlace() itinerary.Place {
	return itinerary.Place{
		Name:   w.Name,
		Lat:    w.Lat,
		Lon:    w.Lon,
		StopID: w.StopID,
	}
}
