package connectors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"geo-signals/internal/briefing"
	"geo-signals/internal/geo"
	"geo-signals/internal/signals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneSector = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"CD_SETOR":"355030801000001"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`

func TestHTTPSource_TemplateAndDecode(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(oneSector))
	}))
	defer srv.Close()

	s := NewHTTPSource("ibge_sectors", srv.URL+"/malhas/{uf}/{municipio}.json", time.Second)
	fc, err := s.Fetch(context.Background(), Request{Layer: LayerSectors, UF: "35", MunicipioID: "3550308"})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Equal(t, "/malhas/35/3550308.json", path)
	assert.Equal(t, "ibge_sectors", s.Name())
}

func TestHTTPSource_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bad":
			_, _ = w.Write([]byte(`{"type":"Topology"}`))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(oneSector))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	_, err := NewHTTPSource("x", srv.URL+"/down", time.Second).Fetch(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrStatus)

	_, err = NewHTTPSource("x", srv.URL+"/bad", time.Second).Fetch(context.Background(), Request{})
	assert.Error(t, err)

	_, err = NewHTTPSource("x", srv.URL+"/slow", 20*time.Millisecond).Fetch(context.Background(), Request{})
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "setores.geojson"), []byte(oneSector), 0o644))

	fc, err := NewFileSource(dir, LayerSectors).Fetch(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)

	missing, err := NewFileSource(dir, LayerStates).Fetch(context.Background(), Request{})
	require.NoError(t, err)
	assert.Empty(t, missing.Features)

	assert.Nil(t, NewFileSource("", LayerStates))
	assert.Equal(t, "file:setores.geojson", NewFileSource(dir, LayerSectors).Name())
}

func TestFirstOf(t *testing.T) {
	fc := geo.FeatureCollection{Type: "FeatureCollection", Features: []geo.Feature{{Type: "Feature"}}}
	boom := errors.New("boom")

	got, err := FirstOf{&StaticSource{Label: "a", Err: boom}, &StaticSource{Label: "b", Collection: fc}}.Fetch(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, got.Features, 1)

	_, err = FirstOf{&StaticSource{Label: "a", Err: boom}}.Fetch(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)

	_, err = FirstOf{}.Fetch(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrLayerDisabled)

	got, err = FirstOf{&StaticSource{Label: "empty"}}.Fetch(context.Background(), Request{})
	require.NoError(t, err)
	assert.Empty(t, got.Features)
}

func TestFetchFrom_ReportsServingSource(t *testing.T) {
	fc := geo.FeatureCollection{Type: "FeatureCollection", Features: []geo.Feature{{Type: "Feature"}}}
	boom := errors.New("boom")

	chain := FirstOf{&StaticSource{Label: "http", Err: boom}, &StaticSource{Label: "s3"}, &StaticSource{Label: "file", Collection: fc}}
	got, name, err := FetchFrom(context.Background(), chain, Request{})
	require.NoError(t, err)
	assert.Len(t, got.Features, 1)
	assert.Equal(t, "file", name)
	assert.Equal(t, "http", chain.Name())

	nested := FirstOf{&StaticSource{Label: "a"}, FirstOf{&StaticSource{Label: "b", Collection: fc}}}
	_, name, err = FetchFrom(context.Background(), nested, Request{})
	require.NoError(t, err)
	assert.Equal(t, "b", name)

	_, name, err = FetchFrom(context.Background(), &StaticSource{Label: "single", Collection: fc}, Request{})
	require.NoError(t, err)
	assert.Equal(t, "single", name)
}

func TestLayerKind(t *testing.T) {
	assert.Equal(t, signals.KindState, LayerStates.Kind())
	assert.Equal(t, signals.KindMunicipality, LayerMunicipalities.Kind())
	assert.Equal(t, signals.KindSector, LayerSectors.Kind())
	assert.Equal(t, signals.KindCustom, LayerCustom.Kind())
}

func TestCenterResolver(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "centroids.json")
	require.NoError(t, os.WriteFile(p, []byte(`[
 {"city":"São Paulo","uf":"SP","lat":-23.5505,"lng":-46.6333},
 {"city":"Bom Jesus","uf":"PI","lat":-9.07,"lng":-44.35},
 {"city":"Bom Jesus","uf":"RS","lat":-28.66,"lng":-50.43}
]`), 0o644))

	r, err := NewCenterResolver(p, "")
	require.NoError(t, err)
	defer r.Close()

	lat, lng := 1.0, 2.0
	pt, tier := r.Resolve(briefing.Briefing{Geography: briefing.Geography{PrimaryCity: "São Paulo", Lat: &lat, Lng: &lng}}, "")
	assert.Equal(t, TierBriefing, tier)
	assert.Equal(t, geo.Point{Lat: 1, Lng: 2}, *pt)

	pt, tier = r.Resolve(briefing.Briefing{Geography: briefing.Geography{PrimaryCity: "  SAO   paulo "}}, "")
	assert.Equal(t, TierTable, tier)
	assert.InDelta(t, -23.5505, pt.Lat, 1e-9)

	pt, _ = r.Resolve(briefing.Briefing{Geography: briefing.Geography{PrimaryCity: "bom jesus", UF: "rs"}}, "")
	assert.InDelta(t, -28.66, pt.Lat, 1e-9)

	pt, tier = r.Resolve(briefing.Briefing{Geography: briefing.Geography{PrimaryCity: "Atlantis"}}, "8.8.8.8")
	assert.Nil(t, pt)
	assert.Equal(t, TierNone, tier)

	_, err = NewCenterResolver(filepath.Join(dir, "nope.json"), "")
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.mmdb")
	require.NoError(t, os.WriteFile(bad, []byte("not a database"), 0o644))
	_, err = NewCenterResolver("", bad)
	assert.Error(t, err)
}

func TestCenterResolver_GeoIP(t *testing.T) {
	path := os.Getenv("GEOIP_CITY_PATH")
	if path == "" {
		t.Skip("GEOIP_CITY_PATH not set")
	}
	r, err := NewCenterResolver("", path)
	require.NoError(t, err)
	defer r.Close()
	pt, tier := r.Resolve(briefing.Briefing{}, "8.8.8.8")
	require.NotNil(t, pt)
	assert.Equal(t, TierGeoIP, tier)
	_, tier = r.Resolve(briefing.Briefing{}, "127.0.0.1")
	assert.Equal(t, TierNone, tier)
}
