package cluster

import (
	"strconv"
)

// Sums is the display state computed for a cluster icon.
// Index is a 1-based style bucket, 0 and below fall back to the first style.
type Sums struct {
	Text  string
	Index int
}

// Calculator maps the markers of a cluster and the number of styles to the
// icon text and style bucket.
type Calculator func(markers []Marker, numStyles int) Sums

// DefaultCalculator uses the marker count as text and the number of decimal
// digits of that count, capped at numStyles, as the style bucket.
func DefaultCalculator(markers []Marker, numStyles int) Sums {
	count := len(markers)
	index := min(digitsCount(count), numStyles)
	return Sums{
		Text:  strconv.Itoa(count),
		Index: index,
	}
}

// ClusterIcon draws the aggregate icon of a cluster. It is implemented by
// the rendering layer, the clusterer only drives it.
type ClusterIcon interface {
	SetCenter(center GeoCoordinates)
	SetSums(sums Sums)
	Show()
	Hide()
	// Remove detaches the icon from the map for good.
	Remove()
}

// IconFactory creates the icon for a new cluster. padding is the grid size.
type IconFactory func(c *Cluster, styles []Style, padding int) ClusterIcon

// StyleFor resolves the style of a bucket index. The index is shifted to be
// 0-based and clamped to the style table, ok is false for an empty table.
func StyleFor(styles []Style, index int) (style Style, ok bool) {
	if len(styles) == 0 {
		return Style{}, false
	}
	i := max(0, index-1)
	i = min(len(styles)-1, i)
	return styles[i], true
}

// StateIcon is an in-memory ClusterIcon. It keeps the last state pushed by
// its cluster, which is all a headless consumer needs to draw it later.
type StateIcon struct {
	styles  []Style
	padding int

	center  GeoCoordinates
	sums    Sums
	style   Style
	visible bool
	removed bool
}

// NewStateIcon is the default IconFactory.
func NewStateIcon(_ *Cluster, styles []Style, padding int) ClusterIcon {
	return &StateIcon{styles: styles, padding: padding}
}

func (i *StateIcon) SetCenter(center GeoCoordinates) { i.center = center }

func (i *StateIcon) SetSums(sums Sums) {
	i.sums = sums
	i.style, _ = StyleFor(i.styles, sums.Index)
}

func (i *StateIcon) Show() { i.visible = true }

func (i *StateIcon) Hide() { i.visible = false }

func (i *StateIcon) Remove() {
	i.visible = false
	i.removed = true
}

func (i *StateIcon) Center() GeoCoordinates { return i.center }
func (i *StateIcon) Sums() Sums             { return i.sums }
func (i *StateIcon) Style() Style           { return i.style }
func (i *StateIcon) Visible() bool          { return i.visible }
func (i *StateIcon) Removed() bool          { return i.removed }
func (i *StateIcon) Padding() int           { return i.padding }
