package cluster_test

import (
	"os"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadAppGang/markercluster"
)

type place struct {
	Name    string
	pos     cluster.GeoCoordinates
	visible bool
}

func (p *place) GetCoordinates() cluster.GeoCoordinates { return p.pos }
func (p *place) SetVisible(v bool)                      { p.visible = v }
func (p *place) Visible() bool                          { return p.visible }
func (p *place) Draggable() bool                        { return false }

type mapView struct {
	bounds orb.Bound
	zoom   int
}

func (v *mapView) Bounds() orb.Bound   { return v.bounds }
func (v *mapView) Zoom() int           { return v.zoom }
func (v *mapView) FitBounds(orb.Bound) {}

func importData(t *testing.T, filename string) []*place {
	t.Helper()
	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)

	places := make([]*place, 0, len(fc.Features))
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		require.True(t, ok, "only points are expected in test data")
		places = append(places, &place{Name: f.Properties.MustString("name", ""), pos: cluster.FromPoint(p)})
	}
	return places
}

func toMarkers(places []*place) []cluster.Marker {
	ms := make([]cluster.Marker, len(places))
	for i, p := range places {
		ms[i] = p
	}
	return ms
}

func byName(places []*place) map[string]*place {
	result := make(map[string]*place, len(places))
	for _, p := range places {
		result[p.Name] = p
	}
	return result
}

func TestMarkerClusterer_Places(t *testing.T) {
	places := importData(t, "./testdata/places.json")
	if len(places) == 0 {
		t.Fatal("Getting empty test data")
	}
	t.Logf("Getting %v points to test\n", len(places))

	world := &mapView{bounds: orb.Bound{Min: orb.Point{-180, -85}, Max: orb.Point{180, 85}}, zoom: 3}
	mc, err := cluster.NewMarkerClusterer(world, nil, toMarkers(places), cluster.DefaultOptions(), cluster.WithLogger(cluster.QuietLogger()))
	require.NoError(t, err)
	require.NoError(t, mc.Attach())

	seen := make(map[cluster.Marker]int)
	for _, c := range mc.Clusters() {
		for _, m := range c.Markers() {
			seen[m]++
		}
	}
	for _, p := range places {
		assert.Equal(t, 1, seen[p], "%s belongs to exactly one cluster", p.Name)
		assert.True(t, mc.IsAssigned(p))
	}
	assert.Less(t, mc.TotalClusters(), len(places))

	named := byName(places)
	clusterOf := func(p *place) *cluster.Cluster {
		for _, c := range mc.Clusters() {
			if c.IsMarkerAlreadyAdded(p) {
				return c
			}
		}
		return nil
	}
	assert.Same(t, clusterOf(named["Berlin"]), clusterOf(named["Potsdam"]))
	assert.Equal(t, 1, clusterOf(named["Sydney"]).Size())
	assert.True(t, named["Sydney"].Visible())
	assert.False(t, named["Potsdam"].Visible())
}

func TestMarkerClusterer_PlacesZoomedIn(t *testing.T) {
	places := importData(t, "./testdata/places.json")
	named := byName(places)

	berlin := &mapView{bounds: orb.Bound{Min: orb.Point{12.5, 52}, Max: orb.Point{14, 53}}, zoom: 10}
	mc, err := cluster.NewMarkerClusterer(berlin, nil, toMarkers(places), cluster.DefaultOptions(), cluster.WithLogger(cluster.QuietLogger()))
	require.NoError(t, err)
	require.NoError(t, mc.Attach())

	assert.Equal(t, 2, mc.TotalClusters(), "Berlin and Potsdam are too far apart at this zoom")
	assert.True(t, named["Berlin"].Visible())
	assert.True(t, named["Potsdam"].Visible())
	assert.False(t, mc.IsAssigned(named["Hamburg"]))

	// zoom out and pan to the whole of Europe
	berlin.bounds = orb.Bound{Min: orb.Point{-25, 35}, Max: orb.Point{30, 66}}
	berlin.zoom = 4
	mc.ResetViewport(false)
	require.NoError(t, mc.Redraw())

	assert.True(t, mc.IsAssigned(named["Hamburg"]))
	assert.True(t, mc.IsAssigned(named["Reykjavik"]))
	assert.False(t, mc.IsAssigned(named["Tokyo"]))
	assert.False(t, named["Berlin"].Visible())
}
