package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/MadAppGang/markercluster"
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleNumber = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// place is a marker read from a GeoJSON feature.
type place struct {
	Name    string
	pos     cluster.GeoCoordinates
	visible bool
}

func (p *place) GetCoordinates() cluster.GeoCoordinates { return p.pos }
func (p *place) SetVisible(v bool)                      { p.visible = v }
func (p *place) Visible() bool                          { return p.visible }
func (p *place) Draggable() bool                        { return false }

// fixedView is a map that never moves unless asked to fit bounds.
type fixedView struct {
	bounds orb.Bound
	zoom   int
}

func (v *fixedView) Bounds() orb.Bound     { return v.bounds }
func (v *fixedView) Zoom() int             { return v.zoom }
func (v *fixedView) FitBounds(b orb.Bound) { v.bounds = b }

type passLogger struct {
	logger *log.Logger
}

func (h passLogger) OnPassComplete(s cluster.PassStats, err error) {
	h.logger.Info("pass done",
		"zoom", s.Zoom,
		"candidates", s.Candidates,
		"joined", s.Joined,
		"skipped", s.Skipped,
		"clusters", s.Clusters,
		"took", s.Duration,
	)
	if err != nil {
		h.logger.Warn("pass reported errors", "err", err)
	}
}

func (h passLogger) OnRepaint(released int) {
	h.logger.Debug("repaint", "released", released)
}

func (h passLogger) OnReset(clusters int, hide bool) {
	h.logger.Debug("reset", "clusters", clusters, "hide", hide)
}

type flags struct {
	points  string
	config  string
	bounds  string
	zoom    int
	fit     bool
	json    bool
	verbose bool
}

func main() {
	var f flags
	root := &cobra.Command{
		Use:          "play",
		Short:        "Cluster a GeoJSON file of points for one viewport",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), f)
		},
	}
	root.Flags().StringVar(&f.points, "points", "./testdata/places.json", "GeoJSON feature collection of points")
	root.Flags().StringVar(&f.config, "config", "", "TOML options file")
	root.Flags().StringVar(&f.bounds, "bounds", "-180,-85,180,85", "viewport as west,south,east,north")
	root.Flags().IntVar(&f.zoom, "zoom", 3, "viewport zoom level")
	root.Flags().BoolVar(&f.fit, "fit", false, "fit the viewport to every point first")
	root.Flags().BoolVar(&f.json, "json", false, "print clusters as GeoJSON")
	root.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(w io.Writer, f flags) error {
	level := log.InfoLevel
	if f.verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})

	opts := cluster.DefaultOptions()
	if f.config != "" {
		var err error
		if opts, err = cluster.LoadOptionsFile(f.config); err != nil {
			return err
		}
	}

	bounds, err := parseBounds(f.bounds)
	if err != nil {
		return err
	}

	places, err := importData(f.points)
	if len(places) == 0 {
		if err == nil {
			err = fmt.Errorf("%s: no points", f.points)
		}
		return err
	}
	if err != nil {
		logger.Warn("some features were ignored", "err", err)
	}
	logger.Debug("points loaded", "count", len(places), "file", f.points)

	markers := make([]cluster.Marker, len(places))
	for i := range places {
		markers[i] = places[i]
	}

	view := &fixedView{bounds: bounds, zoom: f.zoom}
	mc, err := cluster.NewMarkerClusterer(view, cluster.NewWebMercator(cluster.DefaultTileSize, view), markers, opts,
		cluster.WithLogger(logger),
		cluster.WithHooks(passLogger{logger: logger}),
		cluster.WithMaxZoomReached(func(c *cluster.Cluster) {
			logger.Info("max zoom reached, showing markers", "cluster", c.ID(), "size", c.Size())
		}),
	)
	if err != nil {
		return err
	}
	if f.fit {
		mc.FitMapToMarkers()
	}
	if err := mc.Attach(); err != nil {
		logger.Warn("some points were skipped", "err", err)
	}

	if f.json {
		return writeGeoJSON(w, mc)
	}
	writeSummary(w, mc, view)
	return nil
}

func parseBounds(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bounds %q: want west,south,east,north", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bounds %q: %w", s, err)
		}
		v[i] = f
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func importData(filename string) ([]*place, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	var places []*place
	var errs []error
	for i, feature := range fc.Features {
		p, ok := feature.Geometry.(orb.Point)
		if !ok {
			errs = append(errs, fmt.Errorf("feature %d: not a point", i))
			continue
		}
		places = append(places, &place{
			Name: feature.Properties.MustString("name", strconv.Itoa(i)),
			pos:  cluster.FromPoint(p),
		})
	}
	return places, errors.Join(errs...)
}

// sums returns what the icon of c shows, or the count for a cluster drawn
// as its markers.
func sums(mc *cluster.MarkerClusterer, c *cluster.Cluster) cluster.Sums {
	if icon, ok := c.Icon().(*cluster.StateIcon); ok && icon.Visible() {
		return icon.Sums()
	}
	return mc.Calculator()(c.Markers(), len(mc.Styles()))
}

func writeGeoJSON(w io.Writer, mc *cluster.MarkerClusterer) error {
	fc := geojson.NewFeatureCollection()
	for _, c := range mc.Clusters() {
		center, _ := c.Center()
		s := sums(mc, c)

		feature := geojson.NewFeature(center.Point())
		feature.ID = c.ID()
		feature.Properties["point_count"] = c.Size()
		feature.Properties["text"] = s.Text
		feature.Properties["style_index"] = s.Index
		feature.BBox = geojson.NewBBox(c.Bounds())
		fc.Append(feature)
	}
	raw, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func writeSummary(w io.Writer, mc *cluster.MarkerClusterer, view *fixedView) {
	fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("%d markers, %d clusters at zoom %d", mc.TotalMarkers(), mc.TotalClusters(), view.zoom)))
	fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("viewport %v .. %v", view.bounds.Min, view.bounds.Max)))
	for _, c := range mc.Clusters() {
		center, _ := c.Center()
		s := sums(mc, c)
		names := make([]string, 0, c.Size())
		for _, m := range c.Markers() {
			names = append(names, m.(*place).Name)
		}
		fmt.Fprintf(w, "%s %s %s %s\n",
			styleNumber.Render(fmt.Sprintf("#%-6d", c.ID())),
			styleValue.Render(fmt.Sprintf("%-5s", s.Text)),
			styleDim.Render(fmt.Sprintf("(%.4f, %.4f)", center.Lat, center.Lon)),
			strings.Join(names, ", "),
		)
	}
}
