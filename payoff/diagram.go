package payoff

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wyfcoding/optionpricing/algorithm/types"
	"github.com/wyfcoding/optionpricing/xerrors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	// DefaultWidth 默认图宽（10 英寸）。
	DefaultWidth = 10 * vg.Inch
	// DefaultHeight 默认图高（6 英寸）。
	DefaultHeight = 6 * vg.Inch

	xLabel = "Underlying Price"
	yLabel = "Profit/Loss"
)

var (
	zeroColor      = color.NRGBA{A: 77}
	strikeColor    = color.NRGBA{R: 255, A: 77}
	breakevenColor = color.NRGBA{G: 128, A: 77}
	dashes         = []vg.Length{vg.Points(5), vg.Points(3)}

	// supportedFormats 允许对外输出的图片格式。
	supportedFormats = map[string]string{
		"png": "image/png",
		"svg": "image/svg+xml",
		"pdf": "application/pdf",
	}
)

// Diagram 可渲染的损益图。
type Diagram struct {
	Width  vg.Length
	Height vg.Length

	plot   *plot.Plot
	spots  []float64
	yRange [2]float64
}

// NewDiagram 构建单个期权的损益图：损益曲线、零线、行权价线，以及可选的盈亏平衡线。
func NewDiagram(spots []float64, strike, premium float64, typ types.OptionType, showBreakeven bool) (*Diagram, error) {
	if len(spots) == 0 {
		return nil, xerrors.ErrEmptyPriceRange
	}
	if !typ.Valid() {
		return nil, xerrors.Detailed(xerrors.ErrInvalidOptionType, "cannot plot option type %d", uint8(typ))
	}

	curve := Curve(spots, strike, premium, typ)
	d := newDiagram(spots, fmt.Sprintf("%s Option Payoff Diagram", typ.Title()), curve)

	if err := d.addCurve(typ.Title()+" Payoff", curve, plotutil.Color(0), vg.Points(1.5)); err != nil {
		return nil, err
	}
	if err := d.addReferenceLines(strike); err != nil {
		return nil, err
	}
	if showBreakeven {
		if err := d.addVertical("Breakeven", Breakeven(strike, premium, typ), breakevenColor); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// NewCombinedDiagram 构建同一行权价看涨、看跌及组合损益的对比图。
func NewCombinedDiagram(spots []float64, strike, callPremium, putPremium float64, showBreakeven bool) (*Diagram, error) {
	if len(spots) == 0 {
		return nil, xerrors.ErrEmptyPriceRange
	}

	c := Combined(spots, strike, callPremium, putPremium)
	d := newDiagram(spots, "Combined Call and Put Payoff Diagram", c.Call, c.Put, c.Total)

	faded := func(i int) color.Color {
		r, g, b, _ := plotutil.Color(i).RGBA()
		return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 128}
	}
	if err := d.addCurve("Call Payoff", c.Call, faded(0), vg.Points(1)); err != nil {
		return nil, err
	}
	if err := d.addCurve("Put Payoff", c.Put, faded(1), vg.Points(1)); err != nil {
		return nil, err
	}
	if err := d.addCurve("Combined Payoff", c.Total, plotutil.Color(2), vg.Points(2)); err != nil {
		return nil, err
	}
	if err := d.addReferenceLines(strike); err != nil {
		return nil, err
	}
	if showBreakeven {
		if err := d.addVertical("Call Breakeven", c.CallBreakeven, breakevenColor); err != nil {
			return nil, err
		}
		if err := d.addVertical("Put Breakeven", c.PutBreakeven, breakevenColor); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func newDiagram(spots []float64, title string, curves ...[]float64) *Diagram {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	lo, hi := 0.0, 0.0
	for _, c := range curves {
		lo = min(lo, floats.Min(c))
		hi = max(hi, floats.Max(c))
	}
	if pad := (hi - lo) * 0.05; pad > 0 {
		lo, hi = lo-pad, hi+pad
	} else {
		lo, hi = lo-1, hi+1
	}
	return &Diagram{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		plot:   p,
		spots:  spots,
		yRange: [2]float64{lo, hi},
	}
}

func (d *Diagram) addCurve(label string, curve []float64, c color.Color, width vg.Length) error {
	xys := make(plotter.XYs, len(curve))
	for i := range curve {
		xys[i].X = d.spots[i]
		xys[i].Y = curve[i]
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return renderFailed(err, "build payoff line")
	}
	line.Color = c
	line.Width = width
	d.plot.Add(line)
	d.plot.Legend.Add(label, line)
	return nil
}

// addReferenceLines 零损益水平线与行权价竖线。
func (d *Diagram) addReferenceLines(strike float64) error {
	x0, x1 := d.spots[0], d.spots[len(d.spots)-1]
	zero, err := plotter.NewLine(plotter.XYs{{X: x0, Y: 0}, {X: x1, Y: 0}})
	if err != nil {
		return renderFailed(err, "build zero line")
	}
	zero.Color = zeroColor
	zero.Dashes = dashes
	d.plot.Add(zero)
	return d.addVertical("Strike Price", strike, strikeColor)
}

func (d *Diagram) addVertical(label string, x float64, c color.Color) error {
	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: d.yRange[0]}, {X: x, Y: d.yRange[1]}})
	if err != nil {
		return renderFailed(err, "build "+strings.ToLower(label)+" line")
	}
	line.Color = c
	line.Dashes = dashes
	d.plot.Add(line)
	d.plot.Legend.Add(label, line)
	return nil
}

// Plot 返回底层图对象，供调用方进一步定制样式。
func (d *Diagram) Plot() *plot.Plot {
	return d.plot
}

// ContentType 返回格式对应的 MIME 类型，不支持的格式返回空串。
func ContentType(format string) string {
	return supportedFormats[strings.ToLower(format)]
}

// Render 以 png/svg/pdf 格式写出图像。
func (d *Diagram) Render(w io.Writer, format string) error {
	format = strings.ToLower(format)
	if _, ok := supportedFormats[format]; !ok {
		return xerrors.Detailed(xerrors.ErrUnsupportedFormat, "format %q", format)
	}
	wt, err := d.plot.WriterTo(d.Width, d.Height, format)
	if err != nil {
		return renderFailed(err, "render payoff diagram")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return renderFailed(err, "write payoff diagram")
	}
	return nil
}

// Save 按文件扩展名选择格式写入文件。
func (d *Diagram) Save(path string) (err error) {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if ContentType(format) == "" {
		return xerrors.Detailed(xerrors.ErrUnsupportedFormat, "file %q", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return renderFailed(err, "create diagram file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = renderFailed(cerr, "close diagram file")
		}
	}()
	return d.Render(f, format)
}

// renderFailed 以 ErrRenderFailed 为模板包装底层绘图错误。
func renderFailed(cause error, what string) *xerrors.Error {
	e := xerrors.Detailed(xerrors.ErrRenderFailed, "%s", what)
	e.Cause = cause
	return e
}
