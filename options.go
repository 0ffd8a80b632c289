package cluster

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Default option values.
const (
	DefaultGridSize           = 60
	DefaultMinimumClusterSize = 2
	DefaultMaxZoom            = 22
	DefaultImagePath          = "../images/m"
	DefaultImageExtension     = "png"
)

// DefaultStyleSizes are the icon sizes of the generated default styles.
var DefaultStyleSizes = []int{53, 56, 66, 78, 90}

// Style describes how a cluster icon looks for one style bucket.
type Style struct {
	URL                string `toml:"url" json:"url"`
	Height             int    `toml:"height" json:"height"`
	Width              int    `toml:"width" json:"width"`
	TextColor          string `toml:"text_color" json:"textColor,omitempty"`
	TextSize           int    `toml:"text_size" json:"textSize,omitempty"`
	Anchor             []int  `toml:"anchor" json:"anchor,omitempty"`
	IconAnchor         []int  `toml:"icon_anchor" json:"iconAnchor,omitempty"`
	BackgroundPosition string `toml:"background_position" json:"backgroundPosition,omitempty"`
}

// Options configure a MarkerClusterer.
// GridSize - padding in pixels applied to viewport and cluster bounds
// MinimumClusterSize - markers needed before they are replaced by a cluster icon
// MaxZoom - zoom level above which every marker is shown on its own, 0 disables it
// AverageCenter - cluster center follows the average of its markers
// ZoomOnClick - clicking a cluster fits the map to its markers
type Options struct {
	GridSize           int     `toml:"grid_size"`
	MinimumClusterSize int     `toml:"minimum_cluster_size"`
	MaxZoom            int     `toml:"max_zoom"`
	AverageCenter      bool    `toml:"average_center"`
	ZoomOnClick        bool    `toml:"zoom_on_click"`
	ImagePath          string  `toml:"image_path"`
	ImageExtension     string  `toml:"image_extension"`
	Styles             []Style `toml:"styles"`
}

// DefaultOptions returns options with:
// GridSize = 60
// MinimumClusterSize = 2
// MaxZoom = 22
// ZoomOnClick = true
// ImagePath = "../images/m", ImageExtension = "png"
func DefaultOptions() Options {
	return Options{
		GridSize:           DefaultGridSize,
		MinimumClusterSize: DefaultMinimumClusterSize,
		MaxZoom:            DefaultMaxZoom,
		ZoomOnClick:        true,
		ImagePath:          DefaultImagePath,
		ImageExtension:     DefaultImageExtension,
	}
}

// LoadOptions decodes TOML from r on top of DefaultOptions.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.NewDecoder(r).Decode(&opts); err != nil {
		return opts, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

// LoadOptionsFile reads options from a TOML file.
func LoadOptionsFile(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultOptions(), fmt.Errorf("open options: %w", err)
	}
	defer f.Close()
	return LoadOptions(f)
}

// styles returns the configured styles, or the generated defaults
// (one per DefaultStyleSizes entry, named ImagePath + n + "." + ImageExtension).
func (o Options) styles() []Style {
	if len(o.Styles) > 0 {
		return o.Styles
	}
	styles := make([]Style, 0, len(DefaultStyleSizes))
	for i, size := range DefaultStyleSizes {
		styles = append(styles, Style{
			URL:    o.ImagePath + strconv.Itoa(i+1) + "." + o.ImageExtension,
			Height: size,
			Width:  size,
		})
	}
	return styles
}

// Option sets a collaborator that does not belong in a config file.
type Option func(*MarkerClusterer)

// WithLogger sets the logger, log.Default() is used otherwise.
func WithLogger(l *log.Logger) Option {
	return func(mc *MarkerClusterer) {
		if l != nil {
			mc.logger = l
		}
	}
}

// WithIconFactory sets the factory creating one icon per cluster.
func WithIconFactory(f IconFactory) Option {
	return func(mc *MarkerClusterer) {
		if f != nil {
			mc.iconFactory = f
		}
	}
}

// WithCalculator replaces DefaultCalculator.
func WithCalculator(c Calculator) Option {
	return func(mc *MarkerClusterer) {
		if c != nil {
			mc.calculator = c
		}
	}
}

// WithHooks registers pass hooks.
func WithHooks(h Hooks) Option {
	return func(mc *MarkerClusterer) {
		if h != nil {
			mc.hooks = h
		}
	}
}

// WithMaxZoomReached sets the callback fired when a cluster cannot be
// split any further by zooming. During a pass above max zoom it fires once,
// for the first cluster still below the minimum cluster size. ClusterClick
// fires it when the map already sits at max zoom.
func WithMaxZoomReached(fn func(*Cluster)) Option {
	return func(mc *MarkerClusterer) {
		mc.maxZoomReached = fn
	}
}

// WithClusterClick sets the callback fired by ClusterClick.
func WithClusterClick(fn func(*Cluster)) Option {
	return func(mc *MarkerClusterer) {
		mc.clusterClick = fn
	}
}
