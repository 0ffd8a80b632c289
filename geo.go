package cluster

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used by DistanceBetweenPoints.
const EarthRadiusKm = 6371.0

// DefaultTileSize is the Web Mercator tile size in pixels (GMaps and OSM default).
const DefaultTileSize = 256

// GeoCoordinates represent position in the Earth
type GeoCoordinates struct {
	Lon float64
	Lat float64
}

// GetCoordinates makes GeoCoordinates a GeoPoint on its own.
func (c GeoCoordinates) GetCoordinates() GeoCoordinates {
	return c
}

// Point converts the coordinates to an orb point (lon, lat order).
func (c GeoCoordinates) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// FromPoint converts an orb point back to coordinates.
func FromPoint(p orb.Point) GeoCoordinates {
	return GeoCoordinates{Lon: p.Lon(), Lat: p.Lat()}
}

// all object, that you want to cluster should implement this protocol
type GeoPoint interface {
	GetCoordinates() GeoCoordinates
}

// Pixel is a position in world pixel space, y grows to the south.
type Pixel struct {
	X, Y float64
}

// Projection converts between geographic and pixel coordinates for the
// current zoom level of the map.
type Projection interface {
	FromLatLngToPixel(GeoCoordinates) Pixel
	FromPixelToLatLng(Pixel) GeoCoordinates
}

// Zoomer reports the zoom level a projection should scale for.
type Zoomer interface {
	Zoom() int
}

// WebMercator is the spherical mercator projection used by web maps.
// World pixel size is TileSize * 2^zoom, zoom is read from Zoomer on every call.
type WebMercator struct {
	TileSize int
	Zoomer   Zoomer
}

// NewWebMercator returns a projection following z's zoom level.
func NewWebMercator(tileSize int, z Zoomer) *WebMercator {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	return &WebMercator{TileSize: tileSize, Zoomer: z}
}

func (w *WebMercator) scale() float64 {
	zoom := 0
	if w.Zoomer != nil {
		zoom = w.Zoomer.Zoom()
	}
	return float64(w.TileSize) * math.Exp2(float64(zoom))
}

func (w *WebMercator) FromLatLngToPixel(c GeoCoordinates) Pixel {
	s := w.scale()
	x, y := MercatorProjection(c)
	return Pixel{X: x * s, Y: y * s}
}

func (w *WebMercator) FromPixelToLatLng(p Pixel) GeoCoordinates {
	s := w.scale()
	return ReverseMercatorProjection(p.X/s, p.Y/s)
}

// longitude/latitude to spherical mercator in [0..1] range
func MercatorProjection(coordinates GeoCoordinates) (float64, float64) {
	x := coordinates.Lon/360.0 + 0.5
	sin := math.Sin(coordinates.Lat * math.Pi / 180.0)
	y := (0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi)
	if y < 0 {
		y = 0
	}
	if y > 1 {
		y = 1
	}
	return x, y
}

func ReverseMercatorProjection(x, y float64) GeoCoordinates {
	result := GeoCoordinates{}
	result.Lon = (x - 0.5) * 360
	y2 := (180 - y*360) * math.Pi / 180.0
	result.Lat = 360*math.Atan(math.Exp(y2))/math.Pi - 90
	return result
}

// DistanceBetweenPoints returns the great-circle distance in km between two
// points using the haversine formula. It is 0 if either point is nil.
func DistanceBetweenPoints(p1, p2 GeoPoint) float64 {
	if p1 == nil || p2 == nil {
		return 0
	}
	a, b := p1.GetCoordinates(), p2.GetCoordinates()

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// boundOf returns the zero-size bound located at c.
func boundOf(c GeoCoordinates) orb.Bound {
	p := c.Point()
	return orb.Bound{Min: p, Max: p}
}

//count number of digits, for example 123356 will return 6
func digitsCount(a int) int {
	result := 0
	for a != 0 {
		a /= 10
		result += 1
	}
	return result
}
