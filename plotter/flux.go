package plotter

import (
	"fmt"
	"math"
	"strings"
)

// FluxBar is a single reaction bar in a flux chart. At marks a flux
// pinned at a bound: "lower", "upper" or "fixed".
type FluxBar struct {
	Reaction string
	Flux     float64
	At       string
}

// FluxChart renders reaction fluxes as horizontal bars around a zero
// axis. Bars sitting at one of their bounds are annotated next to the
// value.
type FluxChart struct {
	Width float64
	Title string
	Bars  []FluxBar
}

// NewFluxChart creates a flux chart with the given width. The height
// is derived from the number of bars.
func NewFluxChart(width float64) *FluxChart {
	return &FluxChart{Width: width}
}

// SetTitle sets the chart title.
func (c *FluxChart) SetTitle(t string) *FluxChart {
	c.Title = t
	return c
}

// AddBar appends a reaction bar.
func (c *FluxChart) AddBar(reaction string, flux float64, at string) *FluxChart {
	c.Bars = append(c.Bars, FluxBar{Reaction: reaction, Flux: flux, At: at})
	return c
}

// Render generates the SVG string.
func (c *FluxChart) Render() string {
	const rowHeight = 26.0
	margin := map[string]float64{"top": 40, "right": 130, "bottom": 45, "left": 150}
	plotWidth := c.Width - margin["left"] - margin["right"]
	plotHeight := rowHeight * float64(len(c.Bars))
	height := margin["top"] + plotHeight + margin["bottom"]

	// Scale from flux values, always keeping the zero axis in frame.
	xmin, xmax := 0.0, 0.0
	for _, b := range c.Bars {
		if b.Flux < xmin {
			xmin = b.Flux
		}
		if b.Flux > xmax {
			xmax = b.Flux
		}
	}
	xrange := xmax - xmin
	if xrange == 0 {
		xrange = 1
	}
	xmin -= xrange * 0.05
	xmax += xrange * 0.05

	sx := func(x float64) float64 {
		return margin["left"] + ((x-xmin)/(xmax-xmin))*plotWidth
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		int(c.Width), int(height)))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#f8f9fa" rx="8"/>`,
		int(c.Width), int(height)))

	if c.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="25" text-anchor="middle" font-family="Arial, sans-serif" font-size="16" font-weight="bold">%s</text>`,
			c.Width/2, escape(c.Title)))
	}

	// Ticks and gridlines
	numTicks := 5
	for i := 0; i <= numTicks; i++ {
		x := xmin + (xmax-xmin)*float64(i)/float64(numTicks)
		px := sx(x)
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			px, margin["top"], px, margin["top"]+plotHeight))
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="1"/>`,
			px, margin["top"]+plotHeight, px, margin["top"]+plotHeight+5))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="10">%.1f</text>`,
			px, margin["top"]+plotHeight+20, x))
	}

	// Zero axis
	zx := sx(0)
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		zx, margin["top"], zx, margin["top"]+plotHeight))

	// Bars with reaction labels and annotated values
	for i, b := range c.Bars {
		y := margin["top"] + rowHeight*float64(i)
		tip := sx(b.Flux)

		if b.Flux != 0 {
			fill := "#377eb8"
			if b.Flux < 0 {
				fill = "#e41a1c"
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%f" y="%f" width="%f" height="%f" fill="%s"/>`,
				math.Min(zx, tip), y+4, math.Abs(tip-zx), rowHeight-8, fill))
		}

		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="end" font-family="Arial, sans-serif" font-size="11">%s</text>`,
			margin["left"]-10, y+rowHeight/2+4, escape(b.Reaction)))

		value := fmt.Sprintf("%.4g", b.Flux)
		if b.At != "" {
			value += " (" + b.At + ")"
		}
		anchor := "start"
		vx := tip + 6
		if b.Flux < 0 {
			anchor = "end"
			vx = tip - 6
		}
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="%s" font-family="Arial, sans-serif" font-size="10" fill="#333">%s</text>`,
			vx, y+rowHeight/2+4, anchor, escape(value)))
	}

	sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="12">Flux</text>`,
		margin["left"]+plotWidth/2, height-8))

	sb.WriteString(`</svg>`)
	return sb.String()
}

const boundTol = 1e-9

func atBound(flux, lower, upper float64) string {
	onLower := math.Abs(flux-lower) < boundTol
	onUpper := math.Abs(flux-upper) < boundTol
	switch {
	case onLower && onUpper:
		return "fixed"
	case onLower:
		return "lower"
	case onUpper:
		return "upper"
	}
	return ""
}
