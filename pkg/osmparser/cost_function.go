package osmparser

import (
	"strconv"
	"strings"

	"github.com/lintang-b-s/chroute/pkg/config"
	"github.com/paulmach/osm"
)

// Segment is a piece of an osm way between two graph vertices.
type Segment struct {
	WayID       osm.WayID
	Tags        osm.Tags
	LengthMeter float64
}

// CostFunction turns a raw segment into an arc cost and the directions it can be traversed in.
type CostFunction interface {
	ComputeArcCost(seg Segment) (weight float64, forward, backward bool)
}

// CarCostFunction weights segments by car travel time in minutes.
type CarCostFunction struct {
	speeds       map[string]float64
	speedFactor  float64
	defaultSpeed float64
}

func NewCarCostFunction(profile config.ProfileOptions) *CarCostFunction {
	speeds := make(map[string]float64, len(profile.Speeds))
	for highway, speed := range profile.Speeds {
		speeds[highway] = speed
	}
	speedFactor := profile.SpeedFactor
	if speedFactor <= 0 {
		speedFactor = 1
	}
	defaultSpeed := profile.DefaultSpeed
	if defaultSpeed <= 0 {
		defaultSpeed = 35
	}
	return &CarCostFunction{
		speeds:       speeds,
		speedFactor:  speedFactor,
		defaultSpeed: defaultSpeed,
	}
}

func (c *CarCostFunction) ComputeArcCost(seg Segment) (float64, bool, bool) {
	forward, backward := wayDirections(seg.Tags)
	speed := c.speed(seg.Tags) * c.speedFactor
	etaWeight := seg.LengthMeter / (speed * 1000 / 60) // in minutes
	return etaWeight, forward, backward
}

// speed in km/h. maxspeed tag first, then the highway class.
func (c *CarCostFunction) speed(tags osm.Tags) float64 {
	if maxSpeed, ok := parseMaxSpeed(tags.Find("maxspeed")); ok {
		return maxSpeed
	}
	highway := tags.Find("highway")
	if speed, ok := c.speeds[highway]; ok && speed > 0 {
		return speed
	}
	if speed, ok := RoadTypeMaxSpeed(highway); ok {
		return speed
	}
	return c.defaultSpeed
}

func parseMaxSpeed(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		factor = 1.60934
		value = strings.TrimSuffix(value, "mph")
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSuffix(value, "km/h")
	case strings.HasSuffix(value, "knots"):
		factor = 1.852
		value = strings.TrimSuffix(value, "knots")
	}

	currSpeed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || currSpeed <= 0 {
		// "none", "signals", "walk", ...
		return 0, false
	}
	return currSpeed * factor, true
}

/*
wayDirections. arah yang boleh dilewati:
  - oneway=yes/true/1 -> forward saja
  - oneway=-1/reverse -> backward saja
  - vehicle:forward / motor_vehicle:forward restricted -> tidak boleh forward (begitu juga backward)
  - junction=roundabout tanpa tag oneway -> forward saja
*/
func wayDirections(tags osm.Tags) (bool, bool) {
	forward, backward := true, true
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		backward = false
	case "-1", "reverse":
		forward = false
	case "":
		if junction := tags.Find("junction"); junction == "roundabout" || junction == "circular" {
			backward = false
		}
	}

	okvf, okmvf, okvb, okmvb := getRestrictedDirections(tags)
	if okvf || okmvf {
		forward = false
	}
	if okvb || okmvb {
		backward = false
	}
	return forward, backward
}

func isRestricted(value string) bool {
	if value == "no" || value == "restricted" || value == "military" || value == "emergency" || value == "private" || value == "permit" {
		return true
	}
	return false
}

func getRestrictedDirections(tags osm.Tags) (bool, bool, bool, bool) {
	vehicleForward := tags.Find("vehicle:forward")
	motorVehicleForward := tags.Find("motor_vehicle:forward")
	vehicleBackward := tags.Find("vehicle:backward")
	motorVehicleBackward := tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

// RoadTypeMaxSpeed is the assumed car speed in km/h of a highway class.
func RoadTypeMaxSpeed(roadType string) (float64, bool) {
	switch roadType {
	case "motorway":
		return 100, true
	case "trunk":
		return 70, true
	case "primary":
		return 65, true
	case "secondary":
		return 60, true
	case "tertiary":
		return 50, true
	case "unclassified":
		return 30, true
	case "residential":
		return 30, true
	case "service":
		return 20, true
	case "motorway_link":
		return 70, true
	case "trunk_link":
		return 65, true
	case "primary_link":
		return 60, true
	case "secondary_link":
		return 50, true
	case "tertiary_link":
		return 40, true
	case "living_street":
		return 10, true
	case "road":
		return 20, true
	case "track":
		return 15, true
	default:
		return 0, false
	}
}
