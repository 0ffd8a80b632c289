package cluster

import (
	"errors"
	"fmt"
	"math"
)

// Marker is a point on the map that can be clustered.
// Markers are compared by identity, so implementations should be pointer types.
type Marker interface {
	GeoPoint
	// SetVisible shows or hides the marker on the map.
	SetVisible(visible bool)
	// Visible reports whether the marker is currently shown on the map.
	Visible() bool
	// Draggable reports whether the user can move the marker.
	Draggable() bool
}

// DragNotifier is implemented by draggable markers that can report the end
// of a drag. The clusterer registers fn once, when the marker joins the pool.
type DragNotifier interface {
	OnDragEnd(fn func())
}

// ErrInvalidPoint matches every *InvalidPointError.
var ErrInvalidPoint = errors.New("invalid point")

// ErrPassInProgress is returned when a pass is requested from inside another pass.
var ErrPassInProgress = errors.New("clustering pass already in progress")

// InvalidPointError reports a marker that has no usable position.
type InvalidPointError struct {
	Marker Marker
	Reason string
}

func (e *InvalidPointError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidPoint, e.Reason)
}

func (e *InvalidPointError) Is(target error) bool {
	return target == ErrInvalidPoint
}

// validateMarker checks the marker position and returns it.
func validateMarker(m Marker) (GeoCoordinates, error) {
	if m == nil {
		return GeoCoordinates{}, &InvalidPointError{Reason: "marker is nil"}
	}
	c := m.GetCoordinates()
	switch {
	case math.IsNaN(c.Lat) || math.IsNaN(c.Lon):
		return c, &InvalidPointError{Marker: m, Reason: "position is not a number"}
	case c.Lat < -90 || c.Lat > 90:
		return c, &InvalidPointError{Marker: m, Reason: fmt.Sprintf("latitude %v out of range", c.Lat)}
	case c.Lon < -180 || c.Lon > 180:
		return c, &InvalidPointError{Marker: m, Reason: fmt.Sprintf("longitude %v out of range", c.Lon)}
	}
	return c, nil
}
