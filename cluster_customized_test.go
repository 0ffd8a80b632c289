package cluster

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCluster_AddMarkerThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.MinimumClusterSize = 3
	a, b, c, d := newTestMarker("a", 0, 0), newTestMarker("b", 0, 0.001), newTestMarker("c", 0.001, 0), newTestMarker("d", 0.001, 0.001)
	mc := newTestClusterer(t, newTestViewport(1, 10), opts, markers(a, b, c, d))

	cl := newCluster(mc, 1)
	require.True(t, cl.AddMarker(a))
	assert.True(t, a.Visible())
	require.True(t, cl.AddMarker(b))
	assert.True(t, a.Visible())
	assert.True(t, b.Visible())

	require.True(t, cl.AddMarker(c))
	for _, m := range []*testMarker{a, b, c} {
		assert.False(t, m.Visible(), "%s is hidden once the cluster is big enough", m.Name)
	}

	d.SetVisible(true)
	require.True(t, cl.AddMarker(d))
	assert.False(t, d.Visible())
	assert.Equal(t, 4, cl.Size())

	assert.True(t, cl.IsMarkerAlreadyAdded(a))
	assert.False(t, cl.AddMarker(a), "a member is never added twice")
	assert.Equal(t, 4, cl.Size())
	assert.True(t, mc.IsAssigned(a))
}

func TestCluster_Center(t *testing.T) {
	a, b := newTestMarker("a", 0, 0), newTestMarker("b", 0, 2)

	opts := DefaultOptions()
	opts.AverageCenter = true
	mc := newTestClusterer(t, newTestViewport(5, 5), opts, markers(a, b))
	cl := newCluster(mc, 1)

	_, ok := cl.Center()
	assert.False(t, ok)
	assert.Equal(t, orb.Bound{}, cl.Bounds())

	cl.AddMarker(a)
	cl.AddMarker(b)
	center, ok := cl.Center()
	require.True(t, ok)
	assert.Equal(t, GeoCoordinates{Lon: 1, Lat: 0}, center)
	assert.True(t, cl.AdmissionBounds().Contains(center.Point()))

	mc = newTestClusterer(t, newTestViewport(5, 5), DefaultOptions(), markers(a, b))
	cl = newCluster(mc, 1)
	cl.AddMarker(a)
	cl.AddMarker(b)
	center, _ = cl.Center()
	assert.Equal(t, GeoCoordinates{Lon: 0, Lat: 0}, center, "the first marker fixes the center")
}

func TestCluster_AverageCenterConverges(t *testing.T) {
	opts := DefaultOptions()
	opts.AverageCenter = true

	var ms []*testMarker
	for i := 0; i < 10; i++ {
		ms = append(ms, newTestMarker(fmt.Sprintf("m%d", i), 0.001*float64(i), 0.002*float64(i)))
	}
	mc := newTestClusterer(t, newTestViewport(1, 10), opts, markers(ms...))
	for _, m := range ms {
		mc.addToClosestCluster(m, m.GetCoordinates())
	}

	require.Equal(t, 1, mc.TotalClusters())
	cl := mc.Clusters()[0]
	center, _ := cl.Center()
	assert.InDelta(t, 0.0045, center.Lat, 1e-12)
	assert.InDelta(t, 0.009, center.Lon, 1e-12)
	assert.True(t, cl.AdmissionBounds().Contains(center.Point()), "bounds follow the center")

	b := cl.Bounds()
	for _, m := range cl.Markers() {
		assert.True(t, b.Contains(m.GetCoordinates().Point()))
	}
	assert.Equal(t, orb.Point{0, 0}, b.Min)
	assert.InDelta(t, 0.018, b.Max.X(), 1e-12)
	assert.InDelta(t, 0.009, b.Max.Y(), 1e-12)
}

func TestCluster_MemberInsideBoundsAfterInsert(t *testing.T) {
	opts := DefaultOptions()
	opts.AverageCenter = true

	r := rand.New(rand.NewSource(7))
	ms := make([]*testMarker, 0, 1000)
	for i := 0; i < 1000; i++ {
		ms = append(ms, newTestMarker(fmt.Sprint(i), r.Float64()*4-2, r.Float64()*4-2))
	}
	mc := newTestClusterer(t, newTestViewport(3, 8), opts, markers(ms...))

	for _, m := range ms {
		mc.addToClosestCluster(m, m.GetCoordinates())

		var owner *Cluster
		for _, c := range mc.Clusters() {
			if c.IsMarkerAlreadyAdded(m) {
				owner = c
				break
			}
		}
		require.NotNil(t, owner, "%s is placed", m.Name)
		require.True(t, owner.IsMarkerInClusterBounds(m), "%s stays inside its cluster bounds after the center moved", m.Name)
	}
	assert.Greater(t, mc.TotalClusters(), 1)
}

func TestCluster_IsMarkerInClusterBounds(t *testing.T) {
	a := newTestMarker("a", 10, 10)
	mc := newTestClusterer(t, newTestViewport(20, 6), DefaultOptions(), markers(a))
	cl := newCluster(mc, 1)
	assert.False(t, cl.IsMarkerInClusterBounds(a), "an empty cluster admits nothing")

	cl.AddMarker(a)
	admission := cl.AdmissionBounds()
	assert.Less(t, admission.Min.X(), 10.0)
	assert.Greater(t, admission.Max.Y(), 10.0)

	assert.True(t, cl.IsMarkerInClusterBounds(FromPoint(admission.Max)), "edges are inside")
	assert.True(t, cl.IsMarkerInClusterBounds(FromPoint(admission.Min)))
	assert.False(t, cl.IsMarkerInClusterBounds(GeoCoordinates{Lon: admission.Max.X() + 0.01, Lat: 10}))
}

func TestCluster_Remove(t *testing.T) {
	a, b := newTestMarker("a", 0, 0), newTestMarker("b", 0, 0.001)
	mc := newTestClusterer(t, newTestViewport(1, 10), DefaultOptions(), markers(a, b))
	require.NoError(t, mc.Attach())

	cl := mc.Clusters()[0]
	icon := cl.Icon().(*StateIcon)
	require.True(t, icon.Visible())

	cl.Remove()
	assert.True(t, icon.Removed())
	assert.False(t, icon.Visible())
	assert.Equal(t, 0, cl.Size())
	assert.Equal(t, mc, cl.MarkerClusterer())
}

type customIcon struct {
	StateIcon
	cluster *Cluster
	shown   int
}

func (i *customIcon) Show() {
	i.shown++
	i.StateIcon.Show()
}

func TestCluster_Customizer(t *testing.T) {
	styles := []Style{
		{URL: "small.png", Width: 30, Height: 30, TextColor: "white"},
		{URL: "big.png", Width: 60, Height: 60, TextColor: "black"},
	}
	opts := DefaultOptions()
	opts.Styles = styles
	opts.GridSize = 40

	var icons []*customIcon
	factory := func(c *Cluster, styles []Style, padding int) ClusterIcon {
		icon := &customIcon{StateIcon: StateIcon{styles: styles, padding: padding}, cluster: c}
		icons = append(icons, icon)
		return icon
	}
	calc := func(ms []Marker, numStyles int) Sums {
		return Sums{Text: fmt.Sprintf("%d places", len(ms)), Index: numStyles}
	}

	ms := markers(newTestMarker("a", 0, 0), newTestMarker("b", 0.001, 0), newTestMarker("c", 5, 5))
	mc := newTestClusterer(t, newTestViewport(10, 8), opts, ms, WithIconFactory(factory), WithCalculator(calc))
	require.NoError(t, mc.Attach())

	require.Len(t, icons, 2)
	for i, c := range mc.Clusters() {
		assert.Equal(t, c, icons[i].cluster, "one icon per cluster")
		assert.Equal(t, 40, icons[i].Padding())
	}

	big := icons[0]
	assert.Equal(t, 1, big.shown)
	assert.Equal(t, Sums{Text: "2 places", Index: 2}, big.Sums())
	assert.Equal(t, "big.png", big.Style().URL)
	assert.Equal(t, "black", big.Style().TextColor)

	assert.Equal(t, 0, icons[1].shown, "a single marker keeps its own icon")
}
