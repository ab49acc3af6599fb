// Package chart renders candlestick charts with a volume sub-panel to
// PNG files.
package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"github.com/mkocik/stocklens/internal/market"
)

// Settings controls chart geometry and colors.
type Settings struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	UpColor    string `json:"up_color"`
	DownColor  string `json:"down_color"`
	Background string `json:"background"`
}

// DefaultSettings returns the default dark theme.
func DefaultSettings() Settings {
	return Settings{
		Width:      1500,
		Height:     1000,
		UpColor:    "#2ecc71",
		DownColor:  "#e74c3c",
		Background: "#1e1e1e",
	}
}

const (
	marginLeft   = 70.0
	marginRight  = 30.0
	marginTop    = 50.0
	marginBottom = 45.0
	panelGap     = 20.0
	// Price panel takes two thirds of the drawable height, volume the rest.
	pricePanelShare = 2.0 / 3.0
)

var (
	gridColor  = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	labelColor = color.White
)

// Render draws a candlestick chart (price bars plus a volume sub-panel)
// for the given daily bars and writes it as a PNG.
func Render(path, symbol string, bars []market.Bar, settings Settings) error {
	if len(bars) == 0 {
		return fmt.Errorf("no bars to chart for %s", symbol)
	}
	if settings.Width <= 0 || settings.Height <= 0 {
		def := DefaultSettings()
		settings.Width, settings.Height = def.Width, def.Height
	}

	up, err := parseHexColor(settings.UpColor, color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff})
	if err != nil {
		return err
	}
	down, err := parseHexColor(settings.DownColor, color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff})
	if err != nil {
		return err
	}
	bg, err := parseHexColor(settings.Background, color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff})
	if err != nil {
		return err
	}

	dc := gg.NewContext(settings.Width, settings.Height)
	dc.SetColor(bg)
	dc.Clear()

	layout := newLayout(float64(settings.Width), float64(settings.Height), bars)

	drawGrid(dc, layout)
	drawTitle(dc, layout, symbol)
	drawCandles(dc, layout, bars, up, down)
	drawVolume(dc, layout, bars, up, down)
	drawAxisLabels(dc, layout, bars)

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("write chart %s: %w", path, err)
	}
	return nil
}

type layout struct {
	width, height float64

	priceTop, priceBottom float64
	volTop, volBottom     float64
	plotLeft, plotRight   float64

	minPrice, maxPrice float64
	maxVolume          float64

	slot float64 // horizontal space per bar
}

func newLayout(width, height float64, bars []market.Bar) layout {
	l := layout{
		width:     width,
		height:    height,
		plotLeft:  marginLeft,
		plotRight: width - marginRight,
	}

	drawable := height - marginTop - marginBottom - panelGap
	l.priceTop = marginTop
	l.priceBottom = marginTop + drawable*pricePanelShare
	l.volTop = l.priceBottom + panelGap
	l.volBottom = height - marginBottom

	l.minPrice = bars[0].Low.InexactFloat64()
	l.maxPrice = bars[0].High.InexactFloat64()
	for _, b := range bars {
		if low := b.Low.InexactFloat64(); low < l.minPrice {
			l.minPrice = low
		}
		if high := b.High.InexactFloat64(); high > l.maxPrice {
			l.maxPrice = high
		}
		if v := float64(b.Volume); v > l.maxVolume {
			l.maxVolume = v
		}
	}
	if l.maxPrice == l.minPrice {
		l.maxPrice = l.minPrice + 1
	}
	if l.maxVolume == 0 {
		l.maxVolume = 1
	}
	// Headroom so candles never touch the panel edges.
	pad := (l.maxPrice - l.minPrice) * 0.05
	l.minPrice -= pad
	l.maxPrice += pad

	l.slot = (l.plotRight - l.plotLeft) / float64(len(bars))
	return l
}

func (l layout) priceY(price float64) float64 {
	frac := (price - l.minPrice) / (l.maxPrice - l.minPrice)
	return l.priceBottom - frac*(l.priceBottom-l.priceTop)
}

func (l layout) volumeY(volume float64) float64 {
	frac := volume / l.maxVolume
	return l.volBottom - frac*(l.volBottom-l.volTop)
}

func (l layout) barX(i int) float64 {
	return l.plotLeft + (float64(i)+0.5)*l.slot
}

func drawGrid(dc *gg.Context, l layout) {
	dc.SetColor(gridColor)
	dc.SetLineWidth(0.5)
	dc.SetDash(2, 4)
	for i := 0; i <= 4; i++ {
		y := l.priceTop + float64(i)*(l.priceBottom-l.priceTop)/4
		dc.DrawLine(l.plotLeft, y, l.plotRight, y)
		dc.Stroke()
	}
	dc.SetDash()

	dc.SetLineWidth(1)
	dc.DrawLine(l.plotLeft, l.priceBottom, l.plotRight, l.priceBottom)
	dc.DrawLine(l.plotLeft, l.volBottom, l.plotRight, l.volBottom)
	dc.Stroke()
}

func drawTitle(dc *gg.Context, l layout, symbol string) {
	dc.SetColor(labelColor)
	dc.DrawStringAnchored(symbol+" Stock Analysis", l.width/2, marginTop/2, 0.5, 0.5)
}

func drawCandles(dc *gg.Context, l layout, bars []market.Bar, up, down color.Color) {
	bodyWidth := l.slot * 0.7
	if bodyWidth < 1 {
		bodyWidth = 1
	}

	for i, bar := range bars {
		open := bar.Open.InexactFloat64()
		closing := bar.Close.InexactFloat64()
		high := bar.High.InexactFloat64()
		low := bar.Low.InexactFloat64()

		if closing >= open {
			dc.SetColor(up)
		} else {
			dc.SetColor(down)
		}

		x := l.barX(i)

		// Wick first, body over it.
		dc.SetLineWidth(1)
		dc.DrawLine(x, l.priceY(high), x, l.priceY(low))
		dc.Stroke()

		top := l.priceY(maxFloat(open, closing))
		bottom := l.priceY(minFloat(open, closing))
		if bottom-top < 1 { // doji: keep the body visible
			bottom = top + 1
		}
		dc.DrawRectangle(x-bodyWidth/2, top, bodyWidth, bottom-top)
		dc.Fill()
	}
}

func drawVolume(dc *gg.Context, l layout, bars []market.Bar, up, down color.Color) {
	barWidth := l.slot * 0.7
	if barWidth < 1 {
		barWidth = 1
	}

	for i, bar := range bars {
		if bar.Close.GreaterThanOrEqual(bar.Open) {
			dc.SetColor(up)
		} else {
			dc.SetColor(down)
		}

		x := l.barX(i)
		top := l.volumeY(float64(bar.Volume))
		dc.DrawRectangle(x-barWidth/2, top, barWidth, l.volBottom-top)
		dc.Fill()
	}
}

func drawAxisLabels(dc *gg.Context, l layout, bars []market.Bar) {
	dc.SetColor(labelColor)

	for i := 0; i <= 4; i++ {
		frac := float64(i) / 4
		price := l.minPrice + frac*(l.maxPrice-l.minPrice)
		y := l.priceY(price)
		dc.DrawStringAnchored(strconv.FormatFloat(price, 'f', 2, 64), l.plotLeft-8, y, 1, 0.5)
	}

	first := bars[0].Date.Format("2006-01-02")
	last := bars[len(bars)-1].Date.Format("2006-01-02")
	dc.DrawStringAnchored(first, l.plotLeft, l.volBottom+18, 0, 0.5)
	dc.DrawStringAnchored(last, l.plotRight, l.volBottom+18, 1, 0.5)

	dc.DrawStringAnchored("Volume", l.plotLeft-8, l.volTop, 1, 0.5)
}

// parseHexColor parses "#rrggbb"; empty input falls back to def.
func parseHexColor(s string, def color.RGBA) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q, expected #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
