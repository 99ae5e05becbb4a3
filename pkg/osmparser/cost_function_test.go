package osmparser

import (
	"testing"

	"github.com/lintang-b-s/chroute/pkg/config"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
)

func TestCarCostFunction(t *testing.T) {
	cost := NewCarCostFunction(config.Default().Profile)

	tests := []struct {
		name         string
		tags         osm.Tags
		lengthMeter  float64
		wantWeight   float64
		wantForward  bool
		wantBackward bool
	}{
		{
			name:         "primary two way",
			tags:         osm.Tags{{Key: "highway", Value: "primary"}},
			lengthMeter:  6500,
			wantWeight:   6,
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "maxspeed km/h wins over highway class",
			tags:         osm.Tags{{Key: "highway", Value: "residential"}, {Key: "maxspeed", Value: "60 km/h"}},
			lengthMeter:  1000,
			wantWeight:   1,
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "maxspeed mph",
			tags:         osm.Tags{{Key: "highway", Value: "primary"}, {Key: "maxspeed", Value: "30 mph"}},
			lengthMeter:  1609.34 / 2,
			wantWeight:   1,
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "invalid maxspeed falls back to highway",
			tags:         osm.Tags{{Key: "highway", Value: "residential"}, {Key: "maxspeed", Value: "signals"}},
			lengthMeter:  500,
			wantWeight:   1,
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "oneway",
			tags:         osm.Tags{{Key: "highway", Value: "secondary"}, {Key: "oneway", Value: "yes"}},
			lengthMeter:  1000,
			wantWeight:   1,
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:         "reversed oneway",
			tags:         osm.Tags{{Key: "highway", Value: "secondary"}, {Key: "oneway", Value: "-1"}},
			lengthMeter:  1000,
			wantWeight:   1,
			wantForward:  false,
			wantBackward: true,
		},
		{
			name:         "roundabout is implicitly oneway",
			tags:         osm.Tags{{Key: "highway", Value: "tertiary"}, {Key: "junction", Value: "roundabout"}},
			lengthMeter:  500,
			wantWeight:   0.6,
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:         "vehicle forward restricted",
			tags:         osm.Tags{{Key: "highway", Value: "secondary"}, {Key: "vehicle:forward", Value: "no"}},
			lengthMeter:  1000,
			wantWeight:   1,
			wantForward:  false,
			wantBackward: true,
		},
		{
			name:         "unknown highway uses default speed",
			tags:         osm.Tags{{Key: "route", Value: "road"}},
			lengthMeter:  3500,
			wantWeight:   6,
			wantForward:  true,
			wantBackward: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weight, forward, backward := cost.ComputeArcCost(Segment{Tags: tt.tags, LengthMeter: tt.lengthMeter})
			assert.InDelta(t, tt.wantWeight, weight, 1e-9)
			assert.Equal(t, tt.wantForward, forward)
			assert.Equal(t, tt.wantBackward, backward)
		})
	}
}

func TestCarCostFunctionProfileOverride(t *testing.T) {
	profile := config.Default().Profile
	profile.Speeds = map[string]float64{"primary": 30}
	profile.SpeedFactor = 0.5
	cost := NewCarCostFunction(profile)

	weight, _, _ := cost.ComputeArcCost(Segment{
		Tags:        osm.Tags{{Key: "highway", Value: "primary"}},
		LengthMeter: 250,
	})
	assert.InDelta(t, 1, weight, 1e-9)
}
