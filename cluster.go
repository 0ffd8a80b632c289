package cluster

import (
	"github.com/paulmach/orb"
	"github.com/samber/lo"
)

// Cluster is a group of markers sharing a neighbourhood on the map.
// It is created by MarkerClusterer during a pass and lives until the next reset.
type Cluster struct {
	id        int
	clusterer *MarkerClusterer
	gridSize  int
	minSize   int
	average   bool
	center    GeoCoordinates
	hasCenter bool
	markers   []Marker
	bounds    orb.Bound
	icon      ClusterIcon
}

func newCluster(mc *MarkerClusterer, id int) *Cluster {
	c := &Cluster{
		id:        id,
		clusterer: mc,
		gridSize:  mc.gridSize,
		minSize:   mc.minClusterSize,
		average:   mc.averageCenter,
	}
	c.icon = mc.iconFactory(c, mc.styles, mc.gridSize)
	return c
}

// ID of the cluster, unique within its clusterer.
func (c *Cluster) ID() int { return c.id }

// MarkerClusterer the cluster belongs to.
func (c *Cluster) MarkerClusterer() *MarkerClusterer { return c.clusterer }

// Icon drawing the cluster.
func (c *Cluster) Icon() ClusterIcon { return c.icon }

// Size is the number of markers in the cluster.
func (c *Cluster) Size() int { return len(c.markers) }

// Markers in assignment order.
func (c *Cluster) Markers() []Marker { return c.markers }

// Center of the cluster, ok is false until the first marker is added.
func (c *Cluster) Center() (GeoCoordinates, bool) { return c.center, c.hasCenter }

// IsMarkerAlreadyAdded reports whether m is a member, by identity.
func (c *Cluster) IsMarkerAlreadyAdded(m Marker) bool {
	return lo.Contains(c.markers, m)
}

// AddMarker adds m to the cluster and returns false if it is already a member.
//
// Markers stay visible while the cluster is smaller than the minimum cluster
// size. The marker reaching that size hides every member at once, later
// markers are hidden as they arrive.
func (c *Cluster) AddMarker(m Marker) bool {
	if c.IsMarkerAlreadyAdded(m) {
		return false
	}

	pos := m.GetCoordinates()
	if !c.hasCenter {
		c.center = pos
		c.hasCenter = true
		c.calculateBounds()
	} else if c.average {
		l := float64(len(c.markers) + 1)
		c.center = GeoCoordinates{
			Lat: (c.center.Lat*(l-1) + pos.Lat) / l,
			Lon: (c.center.Lon*(l-1) + pos.Lon) / l,
		}
		c.calculateBounds()
	}

	c.clusterer.markAssigned(m)
	c.markers = append(c.markers, m)

	n := len(c.markers)
	if n < c.minSize && !m.Visible() {
		m.SetVisible(true)
	}
	if n == c.minSize {
		for _, member := range c.markers {
			member.SetVisible(false)
		}
	}
	if n >= c.minSize {
		m.SetVisible(false)
	}
	return true
}

// Bounds is the smallest box holding every member, e.g. to fit the map to it.
func (c *Cluster) Bounds() orb.Bound {
	if !c.hasCenter {
		return orb.Bound{}
	}
	b := boundOf(c.center)
	for _, m := range c.markers {
		b = b.Extend(m.GetCoordinates().Point())
	}
	return b
}

// AdmissionBounds are the center padded by the grid size, used to decide
// whether a marker may join.
func (c *Cluster) AdmissionBounds() orb.Bound { return c.bounds }

// IsMarkerInClusterBounds reports whether m lies inside the admission bounds,
// edges included.
func (c *Cluster) IsMarkerInClusterBounds(m GeoPoint) bool {
	return c.hasCenter && c.bounds.Contains(m.GetCoordinates().Point())
}

// Remove releases the icon and drops every member.
func (c *Cluster) Remove() {
	if c.icon != nil {
		c.icon.Remove()
	}
	c.markers = nil
}

func (c *Cluster) calculateBounds() {
	c.bounds = c.clusterer.extendBounds(boundOf(c.center), c.gridSize)
}

// updateIcon pushes the display state to the icon after a pass.
// It returns true when the max zoom override applied to a cluster still
// below the minimum cluster size.
func (c *Cluster) updateIcon(zoom, maxZoom int) bool {
	if maxZoom > 0 && zoom > maxZoom {
		for _, m := range c.markers {
			m.SetVisible(true)
		}
		c.icon.Hide()
		return len(c.markers) < c.minSize
	}

	if len(c.markers) < c.minSize {
		c.icon.Hide()
		return false
	}

	sums := c.clusterer.calculator(c.markers, len(c.clusterer.styles))
	c.icon.SetCenter(c.center)
	c.icon.SetSums(sums)
	c.icon.Show()
	return false
}
