package hotspots

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"geo-signals/internal/briefing"
	"geo-signals/internal/geo"
	"geo-signals/internal/provenance"
	"geo-signals/internal/signals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(id string, lng, lat, size float64, pop *float64) signals.Polygon {
	ring := []geo.Point{{Lat: lat, Lng: lng}, {Lat: lat, Lng: lng + size}, {Lat: lat + size, Lng: lng + size}, {Lat: lat + size, Lng: lng}, {Lat: lat, Lng: lng}}
	return signals.Polygon{
		Type:       "Feature",
		Properties: signals.PolygonProperties{ID: id, Kind: signals.KindSector, Name: id, Population: pop},
		Provenance: provenance.NewReal("ibge:test"),
		Rings:      []geo.Polygon{{Rings: [][]geo.Point{ring}, BBox: [4]float64{lng, lat, lng + size, lat + size}}},
	}
}

func fp(v float64) *float64 { return &v }

func TestRanker_OrderScoresAndRanks(t *testing.T) {
	polys := []signals.Polygon{
		square("setor:c", 0, 0, 1, fp(10000)),
		square("setor:a", 2, 2, 1, fp(100000)),
		square("setor:b", 4, 4, 1, fp(50000)),
		square("setor:none", 6, 6, 1, nil),
	}
	r := NewRanker(0, provenance.Policy{})
	hs := r.Rank(polys, briefing.Briefing{Objective: briefing.ObjectiveSellMore})
	require.Len(t, hs, 4)
	assert.Equal(t, "hs:setor:a", hs[0].ID)
	assert.Equal(t, 100, hs[0].Properties.Score)
	assert.Equal(t, "hs:setor:b", hs[1].ID)
	assert.Equal(t, "hs:setor:c", hs[2].ID)
	for i, h := range hs {
		assert.Equal(t, i+1, h.Properties.Rank)
		assert.GreaterOrEqual(t, h.Properties.Score, 1)
		assert.LessOrEqual(t, h.Properties.Score, 100)
		assert.Equal(t, provenance.Derived, h.Provenance.Label)
	}
	// 零分多边形被夹到 1
	assert.Equal(t, 1, hs[3].Properties.Score)
	// 外环顶点均值（不含闭合点）
	assert.InDelta(t, 2.5, hs[0].Point.Lat, 1e-9)
	assert.InDelta(t, 2.5, hs[0].Point.Lng, 1e-9)
}

func TestRanker_LimitTieAndDeterminism(t *testing.T) {
	var polys []signals.Polygon
	for i := 0; i < 30; i++ {
		polys = append(polys, square(fmt.Sprintf("setor:%02d", i), float64(i), 0, 1, nil))
	}
	r := NewRanker(DefaultLimit, provenance.Policy{})
	hs := r.Rank(polys, briefing.Briefing{})
	require.Len(t, hs, DefaultLimit)
	// 全零分：保持插入顺序，分数均为 1
	for i, h := range hs {
		assert.Equal(t, polys[i].Properties.ID, h.Properties.ID[len("hs:"):])
		assert.Equal(t, 1, h.Properties.Score)
	}
	assert.Equal(t, hs, r.Rank(polys, briefing.Briefing{}))
}

func TestRanker_RealOnlyAndEmpty(t *testing.T) {
	r := NewRanker(0, provenance.Policy{RealOnly: true})
	assert.Empty(t, r.Rank([]signals.Polygon{square("a", 0, 0, 1, fp(10))}, briefing.Briefing{}))
	assert.NotNil(t, r.Rank(nil, briefing.Briefing{}))
	assert.Empty(t, NewRanker(0, provenance.Policy{}).Rank(nil, briefing.Briefing{}))
}

func TestRadial(t *testing.T) {
	r := &Radial{}
	c := &geo.Point{Lat: -23.55, Lng: -46.63}
	hs, err := r.Hotspots(context.Background(), Input{Center: c})
	require.NoError(t, err)
	require.Len(t, hs, 8)
	assert.Equal(t, 100, hs[0].Properties.Score)
	assert.Equal(t, 30, hs[7].Properties.Score)
	assert.InDelta(t, c.Lng+0.015/0.9166, hs[0].Point.Lng, 1e-3)
	for _, h := range hs {
		assert.Equal(t, provenance.Derived, h.Provenance.Label)
		assert.Equal(t, "radial-fallback", h.Provenance.Method)
	}

	empty, _ := r.Hotspots(context.Background(), Input{})
	assert.Empty(t, empty)
	ro, _ := (&Radial{Policy: provenance.Policy{RealOnly: true}}).Hotspots(context.Background(), Input{Center: c})
	assert.Empty(t, ro)
}

type stubProvider struct {
	name string
	hs   []signals.Hotspot
	err  error
	hits int
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Hotspots(context.Context, Input) ([]signals.Hotspot, error) {
	s.hits++
	return s.hs, s.err
}

func TestChain_FirstNonEmptyWins(t *testing.T) {
	failing := &stubProvider{name: "failing", err: errors.New("boom")}
	empty := &stubProvider{name: "empty"}
	good := &stubProvider{name: "good", hs: []signals.Hotspot{{ID: "x"}}}
	after := &stubProvider{name: "after", hs: []signals.Hotspot{{ID: "y"}}}

	c := NewChain(failing, empty, nil, good, after)
	assert.Equal(t, []string{"failing", "empty", "good", "after"}, c.Names())

	res := c.Resolve(context.Background(), Input{})
	assert.Equal(t, "good", res.Provider)
	assert.Equal(t, []string{"failing"}, res.Failed)
	require.Len(t, res.Hotspots, 1)
	assert.Equal(t, 0, after.hits)

	none := NewChain(empty).Resolve(context.Background(), Input{})
	assert.Equal(t, "", none.Provider)
	assert.NotNil(t, none.Hotspots)
	assert.Empty(t, none.Hotspots)
}

func TestBackend_NormalizeAndProvenance(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hotspots":[
 {"lat":0.5,"lng":0.5,"name":"a","score":40,"label":"REAL","source":"osm:poi"},
 {"lat":"0.50001","lng":"0.50001","name":"dup","score":99,"label":"REAL","source":"osm:poi"},
 {"lat":0.6,"lng":0.6,"name":"b","score":"250","label":"DERIVED"},
 {"lat":5,"lng":5,"name":"outside","score":80,"label":"REAL","source":"osm:poi"},
 {"lat":"x","lng":0.5},
 {"lat":0.7,"lng":0.7,"score":-3,"label":"REAL"}
]}`))
	}))
	defer srv.Close()

	in := Input{
		Briefing: briefing.Briefing{Geography: briefing.Geography{MunicipioID: "3550308"}},
		Polygons: []signals.Polygon{square("setor:a", 0, 0, 1, nil)},
		Center:   &geo.Point{Lat: 0.5, Lng: 0.5},
	}
	b := NewBackend(srv.URL, time.Second, 0, false)
	hs, err := b.Hotspots(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "municipio=3550308")
	assert.Contains(t, gotQuery, "lat=0.500000")

	require.Len(t, hs, 3)
	assert.Equal(t, "b", hs[0].Properties.Name)
	assert.Equal(t, 100, hs[0].Properties.Score)
	assert.Equal(t, provenance.Derived, hs[0].Provenance.Label)
	assert.Equal(t, "a", hs[1].Properties.Name)
	assert.Equal(t, provenance.Real, hs[1].Provenance.Label)
	assert.Equal(t, "osm:poi", hs[1].Provenance.Source)
	assert.Equal(t, 1, hs[2].Properties.Score)
	assert.Equal(t, provenance.Derived, hs[2].Provenance.Label)
	for i, h := range hs {
		assert.Equal(t, i+1, h.Properties.Rank)
	}

	strict := NewBackend(srv.URL, time.Second, 0, true)
	hs, err = strict.Hotspots(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "a", hs[0].Properties.Name)
	assert.True(t, hs[0].Provenance.IsReal())
}

func TestBackend_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("municipio") == "1" {
			_, _ = w.Write([]byte(`{not json`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := NewBackend(srv.URL, time.Second, 0, false)
	_, err := b.Hotspots(context.Background(), Input{})
	assert.ErrorIs(t, err, ErrBackendStatus)

	_, err = b.Hotspots(context.Background(), Input{Briefing: briefing.Briefing{Geography: briefing.Geography{MunicipioID: "1"}}})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBackendStatus)
}

func TestBackend_HonoursLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hotspots":[
 {"lat":0.1,"lng":0.1,"name":"a","score":90,"label":"REAL","source":"osm:poi"},
 {"lat":0.3,"lng":0.3,"name":"b","score":70,"label":"REAL","source":"osm:poi"},
 {"lat":0.5,"lng":0.5,"name":"c","score":50,"label":"REAL","source":"osm:poi"},
 {"lat":0.7,"lng":0.7,"name":"d","score":30,"label":"REAL","source":"osm:poi"}
]}`))
	}))
	defer srv.Close()

	in := Input{Polygons: []signals.Polygon{square("setor:a", 0, 0, 1, nil)}}

	hs, err := NewBackend(srv.URL, time.Second, 2, false).Hotspots(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "a", hs[0].Properties.Name)
	assert.Equal(t, "b", hs[1].Properties.Name)
	for i, h := range hs {
		assert.Equal(t, i+1, h.Properties.Rank)
	}

	hs, err = NewBackend(srv.URL, time.Second, 0, false).Hotspots(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, hs, 4)
}
