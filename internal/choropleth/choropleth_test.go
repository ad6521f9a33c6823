package choropleth

import (
	"math"
	"testing"

	"geo-signals/internal/signals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileBreaks_Coverage(t *testing.T) {
	br := QuantileBreaks([]float64{50, 10, 40, 20, 30}, DefaultPalette)
	require.Len(t, br, 5)
	assert.LessOrEqual(t, br[0].Min, 10.0)
	assert.GreaterOrEqual(t, br[4].Max, 50.0)
	for i, b := range br {
		assert.Equal(t, DefaultPalette[i], b.Color)
		assert.LessOrEqual(t, b.Min, b.Max)
	}
	// floor(i/5*4): 0,0,1,2,3 / floor((i+1)/5*4): 0,1,2,3,4
	assert.Equal(t, Break{Min: 10, Max: 10, Color: DefaultPalette[0]}, br[0])
	assert.Equal(t, Break{Min: 10, Max: 20, Color: DefaultPalette[1]}, br[1])
	assert.Equal(t, Break{Min: 40, Max: 50, Color: DefaultPalette[4]}, br[4])

	v := 25.0
	c := ColorFor(&v, br, "#fallback")
	assert.Contains(t, DefaultPalette, c)
	assert.Equal(t, DefaultPalette[2], c)
}

func TestQuantileBreaks_Empty(t *testing.T) {
	assert.Empty(t, QuantileBreaks(nil, DefaultPalette))
	assert.Empty(t, QuantileBreaks([]float64{math.NaN()}, DefaultPalette))
	assert.Empty(t, QuantileBreaks([]float64{1, 2}, nil))
}

func TestColorFor(t *testing.T) {
	br := QuantileBreaks([]float64{10, 20, 30, 40, 50}, DefaultPalette)
	assert.Equal(t, "#fb", ColorFor(nil, br, "#fb"))
	v := 10.0
	assert.Equal(t, "#fb", ColorFor(&v, nil, "#fb"))
	// 边界重叠：首个匹配胜出
	v = 20
	assert.Equal(t, DefaultPalette[1], ColorFor(&v, br, "#fb"))
	// 超出范围：回落到最后一级
	v = 999
	assert.Equal(t, DefaultPalette[4], ColorFor(&v, br, "#fb"))
}

func TestBuildLegend(t *testing.T) {
	p1, p2 := 100.0, 300.0
	s := 40
	polys := []signals.Polygon{
		{Properties: signals.PolygonProperties{ID: "a", Population: &p1, Score: &s}},
		{Properties: signals.PolygonProperties{ID: "b", Population: &p2}},
		{Properties: signals.PolygonProperties{ID: "c"}},
	}
	lg := BuildLegend(polys, AttrPopulation, nil, "#ccc")
	assert.Len(t, lg.Breaks, len(DefaultPalette))
	assert.Equal(t, "#ccc", lg.Colors["c"])
	assert.Equal(t, DefaultPalette[0], lg.Colors["a"])

	sc := BuildLegend(polys, AttrScore, []string{"#1", "#2"}, "#ccc")
	assert.Equal(t, []Break{{Min: 40, Max: 40, Color: "#1"}, {Min: 40, Max: 40, Color: "#2"}}, sc.Breaks)
	assert.Equal(t, "#ccc", sc.Colors["b"])
}
