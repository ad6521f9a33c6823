package weighting

import (
	"fmt"
	"testing"

	"geo-signals/internal/briefing"

	"github.com/stretchr/testify/assert"
)

func TestOperationalWeight(t *testing.T) {
	cases := map[briefing.OperationalModel]float64{
		briefing.ModelDigital:     1.15,
		"ClientVisit":             1.05,
		"client-visit":            1.05,
		briefing.ModelItinerant:   1.1,
		briefing.ModelShopping:    1.0,
		briefing.ModelFixed:       0.95,
		briefing.ModelInvestor:    0.9,
		"":                        1.0,
		"submarine":               1.0,
	}
	for in, want := range cases {
		assert.Equal(t, want, OperationalWeight(in), "model %q", in)
	}
}

func TestMarketAndObjectiveWeight(t *testing.T) {
	assert.Equal(t, 1.15, MarketWeight(briefing.MarketPopular))
	assert.Equal(t, 1.05, MarketWeight("CostBenefit"))
	assert.Equal(t, 0.9, MarketWeight(briefing.MarketPremium))
	assert.Equal(t, 0.8, MarketWeight(briefing.MarketLuxury))
	assert.Equal(t, 1.0, MarketWeight("unknown"))

	assert.Equal(t, 1.1, ObjectiveWeight("DominateRegion"))
	assert.Equal(t, 1.0, ObjectiveWeight(briefing.ObjectiveSellMore))
	assert.Equal(t, 0.95, ObjectiveWeight(briefing.ObjectiveFindSpot))
	assert.Equal(t, 0.85, ObjectiveWeight(briefing.ObjectiveValidateIdea))
	assert.Equal(t, 1.0, ObjectiveWeight(""))
}

func TestBriefingWeight(t *testing.T) {
	b := briefing.Briefing{
		OperationalModel:  briefing.ModelDigital,
		MarketPositioning: briefing.MarketPremium,
		Objective:         briefing.ObjectiveSellMore,
	}
	assert.InDelta(t, 1.035, BriefingWeight(b), 1e-9)
	assert.Equal(t, 1.0, BriefingWeight(briefing.Briefing{}))

	low := briefing.Briefing{OperationalModel: briefing.ModelInvestor, MarketPositioning: briefing.MarketLuxury, Objective: briefing.ObjectiveValidateIdea}
	w := BriefingWeight(low)
	assert.GreaterOrEqual(t, w, BriefingWeightMin)
	assert.LessOrEqual(t, w, BriefingWeightMax)
}

func TestSeededJitter(t *testing.T) {
	for i := 0; i < 500; i++ {
		seed := fmt.Sprintf("seed-%d", i)
		v := SeededJitter(seed, 0.85, 1.15)
		assert.GreaterOrEqual(t, v, 0.85)
		assert.LessOrEqual(t, v, 1.15)
		assert.Equal(t, v, SeededJitter(seed, 0.85, 1.15))
	}
	assert.Equal(t, SeededJitter("x", 1, 2), SeededJitter("x", 2, 1))
	assert.Equal(t, 0.5, SeededJitter("anything", 0.5, 0.5))
}
