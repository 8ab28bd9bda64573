package export

import (
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/particle"
)

// Scene is what a snapshot needs from a world.
type Scene interface {
	Bounds() boundary.Box
	Live() iter.Seq[particle.Particle]
	Overlays() []field.Overlay
}

type SVGOptions struct {
	Background string
	WellStroke string
	// Scale multiplies box coordinates into SVG pixels.
	Scale float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Background: "#0a0a0a",
		WellStroke: "#4a9eff",
		Scale:      1,
	}
}

// WorldToSVG draws every live particle as a circle tinted by its remaining
// lifetime, with one ring per well shell. Only X and Y are drawn.
func WorldToSVG(s Scene, opts SVGOptions) string {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	b := s.Bounds()
	width := b.Width * opts.Scale
	height := b.Height * opts.Scale
	ox, oy := b.Origin.X, b.Origin.Y

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, opts.Background)

	sb.WriteString(`<g fill="none" stroke-width="1" stroke-dasharray="4 4">` + "\n")
	for _, o := range s.Overlays() {
		cx := (o.Center.X - ox) * opts.Scale
		cy := (o.Center.Y - oy) * opts.Scale
		for _, r := range o.Radii {
			fmt.Fprintf(&sb, `<circle class="well" cx="%.1f" cy="%.1f" r="%.1f" stroke="%s"/>`+"\n",
				cx, cy, r*opts.Scale, opts.WellStroke)
		}
	}
	sb.WriteString("</g>\n<g>\n")

	for p := range s.Live() {
		c := p.Color()
		fmt.Fprintf(&sb, `<circle class="particle" cx="%.1f" cy="%.1f" r="%.1f" fill="rgb(%d,%d,%d)" fill-opacity="%.3f"/>`+"\n",
			(p.Position.X-ox)*opts.Scale, (p.Position.Y-oy)*opts.Scale, float64(p.Radius())*opts.Scale,
			c.R, c.G, c.B, float64(c.A)/255)
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// SeriesToSVG plots a run column, such as alive count per tick, as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	hi += span * 0.1
	span = hi - lo

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	step := float64(width) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * step
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}

func WriteSVG(w io.Writer, svg string) error {
	_, err := io.WriteString(w, svg)
	return err
}

func SaveSVG(path, svg string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSVG(f, svg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
