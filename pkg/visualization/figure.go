// Package visualization turns networks and point clouds into interactive
// 3D figures (ECharts HTML) and renders 2D atlas slice previews.
package visualization

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"neuroconnect/pkg/dataset"
	"neuroconnect/pkg/network"
	"neuroconnect/pkg/scale"
)

// FigureOptions controls titles, the color ramp and the node size range
// of a 3D figure.
type FigureOptions struct {
	Title    string
	Subtitle string
	Colors   []string
	Width    string
	Height   string

	// NodeSizeMin and NodeSizeMax bound the rendered endpoint sizes.
	NodeSizeMin float64
	NodeSizeMax float64
}

func (o *FigureOptions) fillDefaults() {
	if o.Width == "" {
		o.Width = "900px"
	}
	if o.Height == "" {
		o.Height = "700px"
	}
	if o.NodeSizeMin <= 0 {
		o.NodeSizeMin = 6
	}
	if o.NodeSizeMax <= 0 {
		o.NodeSizeMax = 18
	}
}

// nodeSizeScale maps the data range of sc onto the configured node size
// range.
func (o *FigureOptions) nodeSizeScale(sc scale.Linear) scale.Linear {
	return scale.Linear{Lo: o.NodeSizeMin, Hi: o.NodeSizeMax, VMin: sc.VMin, VMax: sc.VMax}
}

// NetworkFigure renders a tract network as a 3D scatter of endpoints
// joined by weighted tract lines. Edge weights are passed through the
// scaler twice: once onto the visual map range (color) and once onto the
// configured node size range, so heavier tracts draw larger endpoints. A
// symmetric difference scaler keeps zero difference at the midpoint color.
func NetworkFigure(net *network.Network, sc scale.Linear, opt FigureOptions) *charts.Scatter3D {
	opt.fillDefaults()
	fig := charts.NewScatter3D()
	fig.SetGlobalOptions(baseOptions(opt, sc)...)

	sizes := opt.nodeSizeScale(sc)
	for _, e := range net.Edges {
		scaled := sc.Apply(e.Weight)
		a, b := net.Nodes[e.A], net.Nodes[e.B]

		// Endpoint markers per tract, sized by the tract's weight.
		fig.MultiSeries = append(fig.MultiSeries, charts.SingleSeries{
			Name:        a.Tract,
			Type:        types.ChartScatter3D,
			CoordSystem: "cartesian3D",
			SymbolSize:  float32(sizes.Apply(e.Weight)),
			Data: []opts.Chart3DData{
				{
					Name:  fmt.Sprintf("%s (%s): %.4g", a.Tract, a.Kind, e.Weight),
					Value: []interface{}{a.Pos.X, a.Pos.Y, a.Pos.Z, scaled},
				},
				{
					Name:  fmt.Sprintf("%s (%s): %.4g", b.Tract, b.Kind, e.Weight),
					Value: []interface{}{b.Pos.X, b.Pos.Y, b.Pos.Z, scaled},
				},
			},
		})

		// The tract line; the fourth dimension drives the shared visual
		// map.
		fig.MultiSeries = append(fig.MultiSeries, charts.SingleSeries{
			Name:        a.Tract,
			Type:        types.ChartLine3D,
			CoordSystem: "cartesian3D",
			Data: []opts.Chart3DData{
				{Value: []interface{}{a.Pos.X, a.Pos.Y, a.Pos.Z, scaled}},
				{Value: []interface{}{b.Pos.X, b.Pos.Y, b.Pos.Z, scaled}},
			},
		})
	}

	return fig
}

// CloudFigure renders a custom point cloud, optionally with proximity
// edges. Point values (when present) are passed through the scaler and
// drive the color ramp; points share one size (the midpoint of the
// configured range) since a cloud series carries a single symbol size.
func CloudFigure(cloud *dataset.Cloud, edges [][2]int, sc scale.Linear, opt FigureOptions) *charts.Scatter3D {
	opt.fillDefaults()
	fig := charts.NewScatter3D()
	fig.SetGlobalOptions(baseOptions(opt, sc)...)

	midpoint := (sc.Lo + sc.Hi) / 2
	data := make([]opts.Chart3DData, 0, len(cloud.Points))
	for _, p := range cloud.Points {
		intensity := midpoint
		label := fmt.Sprintf("%s | group %s", p.ID, p.Group)
		if p.HasValue {
			intensity = sc.Apply(p.Value)
			label = fmt.Sprintf("%s | group %s | value %.4g", p.ID, p.Group, p.Value)
		}
		data = append(data, opts.Chart3DData{
			Name:  label,
			Value: []interface{}{p.Pos.X, p.Pos.Y, p.Pos.Z, intensity},
		})
	}
	fig.MultiSeries = append(fig.MultiSeries, charts.SingleSeries{
		Name:        "nodes",
		Type:        types.ChartScatter3D,
		CoordSystem: "cartesian3D",
		SymbolSize:  float32((opt.NodeSizeMin + opt.NodeSizeMax) / 2),
		Data:        data,
	})

	for _, e := range edges {
		a, b := cloud.Points[e[0]], cloud.Points[e[1]]
		fig.MultiSeries = append(fig.MultiSeries, charts.SingleSeries{
			Type:        types.ChartLine3D,
			CoordSystem: "cartesian3D",
			Data: []opts.Chart3DData{
				{Value: []interface{}{a.Pos.X, a.Pos.Y, a.Pos.Z, midpoint}},
				{Value: []interface{}{b.Pos.X, b.Pos.Y, b.Pos.Z, midpoint}},
			},
		})
	}

	return fig
}

// baseOptions assembles the global chart options shared by every figure.
func baseOptions(opt FigureOptions, sc scale.Linear) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: opt.Title,
			Width:     opt.Width,
			Height:    opt.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: opt.Title, Subtitle: opt.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "x (mm)", Type: "value"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "y (mm)", Type: "value"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "z (mm)", Type: "value"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(sc.Lo),
			Max:        float32(sc.Hi),
			Dimension:  "3",
			InRange:    &opts.VisualMapInRange{Color: opt.Colors},
		}),
	}
}

// RenderSideBySide writes both figures onto one flex-layout page.
func RenderSideBySide(w io.Writer, left, right *charts.Scatter3D) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(left, right)
	return page.Render(w)
}
