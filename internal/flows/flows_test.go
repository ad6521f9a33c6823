package flows

import (
	"testing"

	"geo-signals/internal/briefing"
	"geo-signals/internal/geo"
	"geo-signals/internal/provenance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var center = &geo.Point{Lat: -23.55, Lng: -46.63}

func TestSynthesize_GridShapeAndProvenance(t *testing.T) {
	s := NewSynthesizer(provenance.Policy{})
	fl := s.Synthesize(center, briefing.Briefing{})
	require.Len(t, fl, 2*DefaultLines)
	for _, f := range fl {
		assert.Equal(t, provenance.Derived, f.Provenance.Label)
		assert.Equal(t, "LineString", f.Geometry.Type)
		assert.GreaterOrEqual(t, f.Properties.Intensity, 0.0)
		assert.LessOrEqual(t, f.Properties.Intensity, 1.0)
	}
	assert.Equal(t, "high", fl[0].Properties.Label)
	assert.Equal(t, "medium", fl[2].Properties.Label)
	assert.Equal(t, "low", fl[4].Properties.Label)
	assert.Equal(t, "high", fl[6].Properties.Label)
	assert.Equal(t, 0.85, fl[0].Properties.Intensity)
}

func TestSynthesize_Modifiers(t *testing.T) {
	s := NewSynthesizer(provenance.Policy{})
	find := s.Synthesize(center, briefing.Briefing{Objective: briefing.ObjectiveFindSpot})
	digital := s.Synthesize(center, briefing.Briefing{OperationalModel: briefing.ModelDigital})
	assert.Equal(t, 1.0, find[0].Properties.Intensity)
	assert.Equal(t, 0.595, digital[0].Properties.Intensity)
	assert.Equal(t, 0.66, find[2].Properties.Intensity)
}

func TestSynthesize_EmptyCases(t *testing.T) {
	assert.Empty(t, NewSynthesizer(provenance.Policy{RealOnly: true}).Synthesize(center, briefing.Briefing{}))
	assert.Empty(t, NewSynthesizer(provenance.Policy{}).Synthesize(nil, briefing.Briefing{}))
}

func TestWeekly(t *testing.T) {
	ts := Weekly(briefing.Briefing{}, provenance.Policy{})
	require.Len(t, ts, HoursPerWeek)
	for i, p := range ts {
		assert.Equal(t, i, p.Hour)
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.LessOrEqual(t, p.Value, 1.0)
	}
	assert.Greater(t, ts[19].Value, ts[3].Value)
	assert.Equal(t, ts, Weekly(briefing.Briefing{}, provenance.Policy{}))
	assert.Empty(t, Weekly(briefing.Briefing{}, provenance.Policy{RealOnly: true}))
}
