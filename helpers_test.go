package cluster

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
)

type testMarker struct {
	Name      string
	pos       GeoCoordinates
	visible   bool
	draggable bool
	dragEnd   func()
}

func newTestMarker(name string, lat, lon float64) *testMarker {
	return &testMarker{Name: name, pos: GeoCoordinates{Lon: lon, Lat: lat}}
}

func (m *testMarker) GetCoordinates() GeoCoordinates { return m.pos }
func (m *testMarker) SetVisible(v bool)              { m.visible = v }
func (m *testMarker) Visible() bool                  { return m.visible }
func (m *testMarker) Draggable() bool                { return m.draggable }
func (m *testMarker) OnDragEnd(fn func())            { m.dragEnd = fn }

// dragTo moves the marker and fires the drag end callback.
func (m *testMarker) dragTo(lat, lon float64) {
	m.pos = GeoCoordinates{Lon: lon, Lat: lat}
	if m.dragEnd != nil {
		m.dragEnd()
	}
}

type testViewport struct {
	bounds orb.Bound
	zoom   int
	fitted []orb.Bound
}

// newTestViewport shows the box [-span, span] in both directions around 0,0.
func newTestViewport(span float64, zoom int) *testViewport {
	return &testViewport{
		bounds: orb.Bound{Min: orb.Point{-span, -span}, Max: orb.Point{span, span}},
		zoom:   zoom,
	}
}

func (v *testViewport) Bounds() orb.Bound     { return v.bounds }
func (v *testViewport) Zoom() int             { return v.zoom }
func (v *testViewport) FitBounds(b orb.Bound) { v.fitted = append(v.fitted, b) }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func markers(ms ...*testMarker) []Marker {
	result := make([]Marker, len(ms))
	for i, m := range ms {
		result[i] = m
	}
	return result
}

// QuietLogger is exported for the external test package.
var QuietLogger = quietLogger
