package tracker

import (
	"fmt"

	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/pkg/geo"
)

// NoInstruction is the sentinel rendered when no guidance applies.
const NoInstruction = "NO_INSTRUCTION"

// Instruction prefixes by proximity.
const (
	immediatePrefix = "IMMEDIATE: "
	upcomingPrefix  = "UPCOMING: "
	arrivedPrefix   = "ARRIVED: "
)

// InstructionKind identifies the guidance variant. The set is closed; Render
// handles every kind exhaustively.
type InstructionKind string

const (
	// InstructionNone carries no guidance; it renders as NoInstruction.
	InstructionNone InstructionKind = "NONE"

	// InstructionOnTrack guides an on-route traveler to the next step or to
	// the destination.
	InstructionOnTrack InstructionKind = "ON_TRACK"

	// InstructionAlightSoon warns a transit rider that their stop is near.
	InstructionAlightSoon InstructionKind = "ALIGHT_SOON"

	// InstructionDeviated redirects an off-route traveler toward the next
	// expected waypoint.
	InstructionDeviated InstructionKind = "DEVIATED"
)

// Instruction is an ephemeral guidance artifact. Each kind uses only the
// fields it needs: OnTrack carries either a step or a destination name plus a
// proximity prefix, AlightSoon and Deviated carry a location name only.
type Instruction struct {
	Kind InstructionKind

	// Distance in meters to the step, destination or stop.
	Distance float64

	// Prefix is the proximity prefix for on-track guidance, empty beyond the
	// upcoming radius.
	Prefix string

	// Step is the matched step for on-track guidance, nil for the
	// destination variant.
	Step *itinerary.Step

	// LocationName names the destination, alighting stop or deviation target.
	LocationName string

	// Locale is carried through for future localization; rendering is
	// English for now.
	Locale string
}

// Render produces the guidance text for the instruction, e.g.
//
//	"UPCOMING: CONTINUE on Langley Drive"
//	"IMMEDIATE: RIGHT on service road"
//	"ARRIVED: Gwinnett Justice Center (Central)"
//	"Your stop is coming up (Central Station)"
//	"Head to Main Street"
//
// Returns NoInstruction when the instruction carries no guidance.
func (i Instruction) Render() string {
	switch i.Kind {
	case InstructionOnTrack:
		if i.Prefix == "" {
			return NoInstruction
		}
		if i.Step != nil {
			direction := i.Step.RelativeDirection
			if direction == "DEPART" {
				direction = "Head " + i.Step.AbsoluteDirection
			}
			return fmt.Sprintf("%s%s on %s", i.Prefix, direction, i.Step.StreetName)
		}
		if i.LocationName != "" {
			return i.Prefix + i.LocationName
		}
		return NoInstruction
	case InstructionAlightSoon:
		return fmt.Sprintf("Your stop is coming up (%s)", i.LocationName)
	case InstructionDeviated:
		if i.LocationName != "" {
			return "Head to " + i.LocationName
		}
		return NoInstruction
	default:
		return NoInstruction
	}
}

// BuildInstruction selects the guidance variant for the traveler's resolved
// position and schedule status.
func BuildInstruction(pos *TravelerPosition, status TripStatus, cfg Config) Instruction {
	if pos == nil || pos.ExpectedLeg == nil {
		return Instruction{Kind: InstructionNone, Locale: localeOf(pos)}
	}

	switch status {
	case StatusDeviated:
		return deviatedInstruction(pos)
	case StatusOnSchedule, StatusAheadOfSchedule, StatusBehindSchedule:
		if pos.ExpectedLeg.Mode.IsTransit() {
			return alightInstruction(pos, cfg)
		}
		return onTrackInstruction(pos, cfg)
	default:
		return Instruction{Kind: InstructionNone, Locale: pos.Locale}
	}
}

// onTrackInstruction guides a street-mode traveler. Nearing the leg's
// destination takes precedence over step guidance.
func onTrackInstruction(pos *TravelerPosition, cfg Config) Instruction {
	destination := pos.ExpectedLeg.To
	destinationDistance := geo.Haversine(pos.CurrentPosition, destination.Coordinate())
	if destinationDistance <= cfg.UpcomingRadius {
		return Instruction{
			Kind:         InstructionOnTrack,
			Distance:     destinationDistance,
			Prefix:       proximityPrefix(destinationDistance, true, cfg),
			LocationName: destination.Name,
			Locale:       pos.Locale,
		}
	}

	aligned := AlignPositionToStep(pos, cfg)
	if !aligned.Matched() {
		return Instruction{Kind: InstructionNone, Locale: pos.Locale}
	}
	return Instruction{
		Kind:     InstructionOnTrack,
		Distance: aligned.Distance,
		Prefix:   proximityPrefix(aligned.Distance, false, cfg),
		Step:     aligned.Step,
		Locale:   pos.Locale,
	}
}

// alightInstruction warns a transit rider approaching their alighting stop.
// It triggers on proximity to the stop alone, independent of the
// immediate/upcoming radius logic used for street guidance.
func alightInstruction(pos *TravelerPosition, cfg Config) Instruction {
	stop := pos.ExpectedLeg.To
	distance := geo.Haversine(pos.CurrentPosition, stop.Coordinate())
	if distance > cfg.AlightWarningRadius {
		return Instruction{Kind: InstructionNone, Locale: pos.Locale}
	}
	return Instruction{
		Kind:         InstructionAlightSoon,
		Distance:     distance,
		LocationName: stop.Name,
		Locale:       pos.Locale,
	}
}

// deviatedInstruction points the traveler back toward the next expected
// waypoint: the expected leg's destination, or the next leg's origin when the
// leg boundary is the nearer anchor.
func deviatedInstruction(pos *TravelerPosition) Instruction {
	name := pos.ExpectedLeg.To.Name
	if name == "" && pos.NextLeg != nil {
		name = pos.NextLeg.From.Name
	}
	return Instruction{
		Kind:         InstructionDeviated,
		LocationName: name,
		Locale:       pos.Locale,
	}
}

// proximityPrefix maps a distance to its instruction prefix. Beyond the
// upcoming radius there is no instruction.
func proximityPrefix(distance float64, isDestination bool, cfg Config) string {
	switch {
	case distance <= cfg.ImmediateRadius && isDestination:
		return arrivedPrefix
	case distance <= cfg.ImmediateRadius:
		return immediatePrefix
	case distance <= cfg.UpcomingRadius:
		return upcomingPrefix
	default:
		return ""
	}
}

func localeOf(pos *TravelerPosition) string {
	if pos == nil {
		return ""
	}
	return pos.Locale
}
