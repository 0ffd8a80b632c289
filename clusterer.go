package cluster

import (
	"errors"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/samber/lo"
)

// Initial search radius of the closest cluster lookup, in km. It is larger
// than any distance on Earth, so the closest cluster is always found.
const maxClusterDistanceKm = 40000.0

// Viewport is the map the clusterer works for.
type Viewport interface {
	// Bounds currently visible, Min is south-west and Max is north-east.
	Bounds() orb.Bound
	Zoom() int
	FitBounds(b orb.Bound)
}

// MarkerClusterer owns a pool of markers and groups the ones inside the
// current viewport into clusters.
//
// It is not safe for concurrent use. A pass runs synchronously over the whole
// pool, callers serialize Redraw, Repaint and ResetViewport calls, for
// example by debouncing viewport change notifications.
type MarkerClusterer struct {
	viewport   Viewport
	projection Projection

	gridSize       int
	minClusterSize int
	maxZoom        int
	averageCenter  bool
	zoomOnClick    bool
	styles         []Style

	calculator     Calculator
	iconFactory    IconFactory
	hooks          Hooks
	logger         *log.Logger
	maxZoomReached func(*Cluster)
	clusterClick   func(*Cluster)

	markers    []Marker
	assigned   map[Marker]bool
	dragHooked map[Marker]bool
	clusters   []*Cluster

	ready         bool
	running       bool
	clusterIDLast int
}

// NewMarkerClusterer creates a clusterer for viewport. A nil projection
// defaults to WebMercator following the viewport zoom. markers are added
// without drawing, clustering starts once Attach is called.
func NewMarkerClusterer(viewport Viewport, projection Projection, markers []Marker, opts Options, options ...Option) (*MarkerClusterer, error) {
	if viewport == nil {
		return nil, errors.New("markercluster: viewport is required")
	}
	if projection == nil {
		projection = NewWebMercator(DefaultTileSize, viewport)
	}

	mc := &MarkerClusterer{
		viewport:       viewport,
		projection:     projection,
		gridSize:       opts.GridSize,
		minClusterSize: opts.MinimumClusterSize,
		maxZoom:        opts.MaxZoom,
		averageCenter:  opts.AverageCenter,
		zoomOnClick:    opts.ZoomOnClick,
		styles:         opts.styles(),
		calculator:     DefaultCalculator,
		iconFactory:    NewStateIcon,
		hooks:          NoopHooks{},
		logger:         log.Default(),
		assigned:       make(map[Marker]bool),
		dragHooked:     make(map[Marker]bool),
	}
	for _, o := range options {
		o(mc)
	}

	if len(markers) > 0 {
		if err := mc.AddMarkers(markers, true); err != nil {
			return mc, err
		}
	}
	return mc, nil
}

// Attach marks the clusterer as attached to the map and runs the first pass.
// Only the first call has an effect.
func (mc *MarkerClusterer) Attach() error {
	if mc.ready {
		return nil
	}
	mc.ready = true
	return mc.Redraw()
}

// Ready reports whether Attach was called.
func (mc *MarkerClusterer) Ready() bool { return mc.ready }

func (mc *MarkerClusterer) Viewport() Viewport     { return mc.viewport }
func (mc *MarkerClusterer) Projection() Projection { return mc.projection }

func (mc *MarkerClusterer) GridSize() int        { return mc.gridSize }
func (mc *MarkerClusterer) SetGridSize(size int) { mc.gridSize = size }

func (mc *MarkerClusterer) MinClusterSize() int        { return mc.minClusterSize }
func (mc *MarkerClusterer) SetMinClusterSize(size int) { mc.minClusterSize = size }

// MaxZoom above which markers are never clustered, 0 means no limit.
func (mc *MarkerClusterer) MaxZoom() int           { return mc.maxZoom }
func (mc *MarkerClusterer) SetMaxZoom(maxZoom int) { mc.maxZoom = maxZoom }

func (mc *MarkerClusterer) IsAverageCenter() bool { return mc.averageCenter }
func (mc *MarkerClusterer) IsZoomOnClick() bool   { return mc.zoomOnClick }

// Styles used by icons created from now on.
func (mc *MarkerClusterer) Styles() []Style          { return mc.styles }
func (mc *MarkerClusterer) SetStyles(styles []Style) { mc.styles = styles }

func (mc *MarkerClusterer) Calculator() Calculator { return mc.calculator }

// SetCalculator replaces the calculator, nil restores DefaultCalculator.
func (mc *MarkerClusterer) SetCalculator(c Calculator) {
	if c == nil {
		c = DefaultCalculator
	}
	mc.calculator = c
}

// Markers in the pool, in insertion order.
func (mc *MarkerClusterer) Markers() []Marker { return mc.markers }
func (mc *MarkerClusterer) TotalMarkers() int { return len(mc.markers) }

// Clusters built by the passes since the last reset.
func (mc *MarkerClusterer) Clusters() []*Cluster { return mc.clusters }
func (mc *MarkerClusterer) TotalClusters() int    { return len(mc.clusters) }

// IsAssigned reports whether m was placed in a cluster since the last reset.
func (mc *MarkerClusterer) IsAssigned(m Marker) bool { return mc.assigned[m] }

// AddMarker adds m to the pool and redraws unless noDraw is set.
func (mc *MarkerClusterer) AddMarker(m Marker, noDraw bool) error {
	if err := mc.pushMarkerTo(m); err != nil {
		return err
	}
	if !noDraw {
		return mc.Redraw()
	}
	return nil
}

// AddMarkers adds every valid marker of ms. Invalid ones are reported in the
// returned error, the others are kept.
func (mc *MarkerClusterer) AddMarkers(ms []Marker, noDraw bool) error {
	var errs []error
	for _, m := range ms {
		if err := mc.pushMarkerTo(m); err != nil {
			errs = append(errs, err)
		}
	}
	if !noDraw {
		errs = append(errs, mc.Redraw())
	}
	return errors.Join(errs...)
}

func (mc *MarkerClusterer) pushMarkerTo(m Marker) error {
	if _, err := validateMarker(m); err != nil {
		return err
	}
	if _, ok := mc.assigned[m]; ok {
		mc.assigned[m] = false
		return nil
	}

	mc.assigned[m] = false
	mc.markers = append(mc.markers, m)

	if dn, ok := m.(DragNotifier); ok && m.Draggable() && !mc.dragHooked[m] {
		mc.dragHooked[m] = true
		dn.OnDragEnd(func() {
			if _, pooled := mc.assigned[m]; !pooled {
				return
			}
			mc.assigned[m] = false
			if err := mc.Repaint(); err != nil {
				mc.logger.Warn("repaint after drag failed", "err", err)
			}
		})
	}
	return nil
}

// RemoveMarker removes m from the pool and hides it. It returns false if m
// was not in the pool. Unless noDraw is set, a removal resets and redraws.
func (mc *MarkerClusterer) RemoveMarker(m Marker, noDraw bool) bool {
	return mc.RemoveMarkers([]Marker{m}, noDraw)
}

// RemoveMarkers removes every marker of ms found in the pool and reports
// whether any was removed.
func (mc *MarkerClusterer) RemoveMarkers(ms []Marker, noDraw bool) bool {
	removed := mc.removeMarkers(ms) > 0
	if removed && !noDraw {
		mc.ResetViewport(false)
		if err := mc.Redraw(); err != nil {
			mc.logger.Warn("redraw after removal failed", "err", err)
		}
	}
	return removed
}

// removeMarkers compacts the pool by index in a single sweep, so removing
// several markers never skips one.
func (mc *MarkerClusterer) removeMarkers(ms []Marker) int {
	drop := make(map[Marker]bool, len(ms))
	for _, m := range ms {
		if _, ok := mc.assigned[m]; ok && m != nil {
			drop[m] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := mc.markers[:0]
	for i := 0; i < len(mc.markers); i++ {
		m := mc.markers[i]
		if drop[m] {
			m.SetVisible(false)
			delete(mc.assigned, m)
			delete(mc.dragHooked, m)
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(mc.markers); i++ {
		mc.markers[i] = nil
	}
	mc.markers = kept
	return len(drop)
}

// ClearMarkers removes every cluster and marker, hiding the markers.
func (mc *MarkerClusterer) ClearMarkers() {
	mc.ResetViewport(true)
	mc.markers = nil
	mc.assigned = make(map[Marker]bool)
	mc.dragHooked = make(map[Marker]bool)
}

// ResetViewport removes every cluster and marks every marker unassigned.
// With hide the markers are hidden as well.
func (mc *MarkerClusterer) ResetViewport(hide bool) {
	released := len(mc.clusters)
	for _, c := range mc.clusters {
		c.Remove()
	}
	for _, m := range mc.markers {
		mc.assigned[m] = false
		if hide {
			m.SetVisible(false)
		}
	}
	mc.clusters = nil
	mc.clusterIDLast = 0
	mc.hooks.OnReset(released, hide)
}

// Repaint rebuilds every cluster. The old clusters are released only after
// the new ones are drawn, so the map never shows an empty frame.
func (mc *MarkerClusterer) Repaint() error {
	if mc.running {
		return ErrPassInProgress
	}
	old := mc.clusters
	mc.clusters = nil
	mc.ResetViewport(false)

	err := mc.Redraw()

	for _, c := range old {
		c.Remove()
	}
	mc.hooks.OnRepaint(len(old))
	return err
}

// Redraw runs a clustering pass: every unassigned marker inside the extended
// viewport joins the closest cluster admitting it or starts a new one, then
// every cluster refreshes its icon. It does nothing before Attach.
//
// Markers whose position became invalid are skipped and reported in the
// returned error, they do not stop the pass.
func (mc *MarkerClusterer) Redraw() error {
	if !mc.ready {
		return nil
	}
	if mc.running {
		return ErrPassInProgress
	}
	mc.running = true
	defer func() { mc.running = false }()

	start := time.Now()
	zoom := mc.viewport.Zoom()
	bounds := mc.ExtendedBounds(mc.viewport.Bounds())

	candidates, errs := mc.candidates(bounds)
	joined := 0
	for _, c := range candidates {
		if mc.addToClosestCluster(c.marker, c.pos) {
			joined++
		}
	}

	notified := false
	for _, c := range mc.clusters {
		belowMin := c.updateIcon(zoom, mc.maxZoom)
		if belowMin && !notified && mc.maxZoomReached != nil {
			notified = true
			mc.maxZoomReached(c)
		}
	}

	err := errors.Join(errs...)
	stats := PassStats{
		Zoom:       zoom,
		Candidates: len(candidates),
		Joined:     joined,
		Skipped:    len(errs),
		Clusters:   len(mc.clusters),
		Duration:   time.Since(start),
	}
	for _, e := range errs {
		mc.logger.Warn("skipping marker", "err", e)
	}
	mc.logger.Debug("clustering pass",
		"zoom", stats.Zoom,
		"candidates", stats.Candidates,
		"joined", stats.Joined,
		"clusters", stats.Clusters,
		"markers", len(mc.markers),
		"took", stats.Duration.Round(time.Microsecond),
	)
	mc.hooks.OnPassComplete(stats, err)
	return err
}

// addToClosestCluster reports whether m joined an existing cluster.
func (mc *MarkerClusterer) addToClosestCluster(m Marker, pos GeoCoordinates) bool {
	distance := maxClusterDistanceKm
	var target *Cluster
	for _, c := range mc.clusters {
		center, ok := c.Center()
		if !ok {
			continue
		}
		if d := DistanceBetweenPoints(center, pos); d < distance {
			distance = d
			target = c
		}
	}

	if target != nil && target.IsMarkerInClusterBounds(pos) {
		target.AddMarker(m)
		return true
	}
	c := newCluster(mc, mc.nextClusterID())
	c.AddMarker(m)
	mc.clusters = append(mc.clusters, c)
	return false
}

// nextClusterID hands out sequential ids starting at the next power of ten
// above the pool size: with 78 markers the first cluster is 100.
func (mc *MarkerClusterer) nextClusterID() int {
	if mc.clusterIDLast == 0 {
		mc.clusterIDLast = int(math.Pow10(digitsCount(len(mc.markers))))
	}
	id := mc.clusterIDLast
	mc.clusterIDLast++
	return id
}

func (mc *MarkerClusterer) markAssigned(m Marker) {
	if _, ok := mc.assigned[m]; ok {
		mc.assigned[m] = true
	}
}

// ExtendedBounds pads b by the grid size in pixel space.
func (mc *MarkerClusterer) ExtendedBounds(b orb.Bound) orb.Bound {
	return mc.extendBounds(b, mc.gridSize)
}

// extendBounds moves the north-east corner grid pixels up and right and the
// south-west corner grid pixels down and left. A grid of 0 or less leaves b
// untouched.
func (mc *MarkerClusterer) extendBounds(b orb.Bound, grid int) orb.Bound {
	if grid <= 0 {
		return b
	}
	g := float64(grid)

	ne := mc.projection.FromLatLngToPixel(FromPoint(b.Max))
	ne.X += g
	ne.Y -= g

	sw := mc.projection.FromLatLngToPixel(FromPoint(b.Min))
	sw.X -= g
	sw.Y += g

	b = b.Extend(mc.projection.FromPixelToLatLng(ne).Point())
	return b.Extend(mc.projection.FromPixelToLatLng(sw).Point())
}

// FitMapToMarkers fits the viewport to every marker of the pool.
func (mc *MarkerClusterer) FitMapToMarkers() {
	if len(mc.markers) == 0 {
		return
	}
	points := lo.Map(mc.markers, func(m Marker, _ int) orb.Point {
		return m.GetCoordinates().Point()
	})
	mc.viewport.FitBounds(orb.MultiPoint(points).Bound())
}

// ClusterClick handles a click on the icon of c: the click callback fires,
// then with zoom on click the map fits the cluster. If the map is already at
// max zoom the cluster can not split further and MaxZoomReached fires.
func (mc *MarkerClusterer) ClusterClick(c *Cluster) {
	if mc.clusterClick != nil {
		mc.clusterClick(c)
	}
	if !mc.zoomOnClick {
		return
	}
	mc.viewport.FitBounds(c.Bounds())
	if mc.maxZoomReached != nil && mc.viewport.Zoom() == mc.maxZoom {
		mc.maxZoomReached(c)
	}
}
