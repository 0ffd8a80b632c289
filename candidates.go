package cluster

import (
	"github.com/paulmach/orb"
)

// candidate is an unassigned marker waiting for a cluster.
type candidate struct {
	marker Marker
	pos    GeoCoordinates
}

// candidates returns the unassigned markers inside bounds, in pool order.
// Markers with an invalid position are left out and reported.
func (mc *MarkerClusterer) candidates(bounds orb.Bound) ([]candidate, []error) {
	var errs []error
	var result []candidate
	for _, m := range mc.markers {
		if mc.assigned[m] {
			continue
		}
		pos, err := validateMarker(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if bounds.Contains(pos.Point()) {
			result = append(result, candidate{marker: m, pos: pos})
		}
	}
	return result, errs
}
