// MIT License
//
// Copyright (c) 2016 MadAppGang

// Viewport driven marker clustering for maps.
//
// The clusterer holds a pool of markers and, for the area the map currently
// shows, groups nearby markers into clusters drawn as a single icon with a
// count. Nothing is precomputed per zoom level: every pass looks at the
// markers inside the viewport padded by the grid size and places each one
// that is not yet clustered.
//
// The approach is greedy, the same one used by the Google Maps MarkerClusterer:
// a marker joins the cluster with the closest center if it falls inside that
// cluster's bounds (the center padded by the grid size), otherwise it starts
// a new cluster. Results depend on marker order, there is no backtracking.
//
// Very easy to use:
//	//1.Create the clusterer for your map
//	mc, err := cluster.NewMarkerClusterer(viewport, nil, markers, cluster.DefaultOptions())
//
//	//2.Tell it the map is ready, this runs the first pass
//	err = mc.Attach()
//
//	//3.On every zoom change rebuild, on every pan just redraw
//	mc.ResetViewport(false)
//	err = mc.Redraw()
//
//	//4.Read the clusters, or let your IconFactory draw them
//	for _, c := range mc.Clusters() { ... }
//
// The map is reached only through small interfaces: Viewport for bounds and
// zoom, Projection for pixel conversion (WebMercator is provided), Marker for
// position and visibility and ClusterIcon for drawing. The library never
// touches a rendering toolkit.
//
// Cluster ids are sequential and start at the next power of ten above the
// number of markers in the pool.
// For example, with 78 markers the first cluster id is 100,
// with 991 markers it is 1000
//
// A MarkerClusterer is not safe for concurrent use.
package cluster
