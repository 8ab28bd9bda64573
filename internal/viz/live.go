package viz

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/export"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	panelWidth      = 54

	DefaultBurst = 25
)

type TickMsg time.Time

type Options struct {
	// Burst is the number of particles spawned per space press.
	Burst       int
	SnapshotDir string
	FrameRate   time.Duration
}

func DefaultOptions() Options {
	return Options{
		Burst:       DefaultBurst,
		SnapshotDir: ".",
		FrameRate:   time.Second / 60,
	}
}

// Model drives an experiment one tick per frame and renders it.
type Model struct {
	exp  *experiment.Experiment
	opts Options

	fresh, fading, wells *Canvas

	running      bool
	showHelp     bool
	last         metrics.Sample
	aliveHistory []float64
	speedHistory []float64
	status       string
}

func NewModel(exp *experiment.Experiment, opts Options) Model {
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultOptions().FrameRate
	}
	return Model{
		exp:          exp,
		opts:         opts,
		fresh:        NewCanvas(width, height),
		fading:       NewCanvas(width, height),
		wells:        NewCanvas(width, height),
		running:      true,
		aliveHistory: make([]float64, 0, historyCapacity),
		speedHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.FrameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.exp.World().Spawn(m.opts.Burst)
		case "p":
			m.running = !m.running
		case "c":
			m.exp.World().Clear()
		case "s":
			m.snapshot()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := max(w-panelWidth-4, 20)
	ch := max(h-4, 8)
	m.fresh = NewCanvas(cw, ch)
	m.fading = NewCanvas(cw, ch)
	m.wells = NewCanvas(cw, ch)
}

func (m *Model) step() {
	m.last = m.exp.Step()
	m.aliveHistory = appendCapped(m.aliveHistory, float64(m.last.Alive))
	m.speedHistory = appendCapped(m.speedHistory, m.last.MeanSpeed)
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) snapshot() {
	w := m.exp.World()
	path := filepath.Join(m.opts.SnapshotDir, fmt.Sprintf("snapshot_%06d.svg", w.Ticks()))
	if err := export.SaveSVG(path, export.WorldToSVG(w, export.DefaultSVGOptions())); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}
	m.status = "saved " + path
}

// project maps world X/Y onto canvas sub-pixels and returns the scale used.
func (m *Model) project(p vecmath.Point3) (x, y int, sx, sy float64) {
	b := m.exp.World().Bounds()
	sx = float64(m.fresh.PixelWidth()-1) / max(b.Width, 1)
	sy = float64(m.fresh.PixelHeight()-1) / max(b.Height, 1)
	return int((p.X - b.Origin.X) * sx), int((p.Y - b.Origin.Y) * sy), sx, sy
}

func (m *Model) draw() {
	m.fresh.Clear()
	m.fading.Clear()
	m.wells.Clear()

	w := m.exp.World()
	for _, o := range w.Overlays() {
		cx, cy, sx, sy := m.project(o.Center)
		for _, r := range o.Radii {
			m.wells.DrawEllipse(cx, cy, r*sx, r*sy)
		}
	}

	for p := range w.Live() {
		layer := m.fresh
		if p.LifetimeRatio() < 0.5 {
			layer = m.fading
		}
		x, y, sx, _ := m.project(p.Position)
		if r := int(float64(p.Radius()) * sx); r >= 1 {
			layer.FillDisc(x, y, r)
		} else {
			layer.Set(x, y)
		}
	}
}

// renderLayers merges canvases cell by cell. A cell takes the color of the
// first layer that has a dot in it.
func renderLayers(layers []*Canvas, styles []lipgloss.Style) string {
	base := layers[0]
	var b strings.Builder
	for row := 0; row < base.Height; row++ {
		for col := 0; col < base.Width; col++ {
			cell, owner := rune(brailleBlank), -1
			for i, l := range layers {
				if bits := l.Grid[row][col]; bits != brailleBlank {
					cell |= bits
					if owner < 0 {
						owner = i
					}
				}
			}
			if owner < 0 {
				b.WriteRune(cell)
				continue
			}
			b.WriteString(styles[owner].Render(string(cell)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) View() string {
	m.draw()
	canvas := renderLayers(
		[]*Canvas{m.fresh, m.fading, m.wells},
		[]lipgloss.Style{
			lipgloss.NewStyle().Foreground(CurrentTheme.Fresh),
			lipgloss.NewStyle().Foreground(CurrentTheme.Fading),
			lipgloss.NewStyle().Foreground(CurrentTheme.Well),
		},
	)
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(canvas), statsStyle.Render(m.panel()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

func (m Model) panel() string {
	w := m.exp.World()
	cfg := m.exp.Config()

	var s strings.Builder
	name := cfg.Name
	if name == "" {
		name = "fieldsim"
	}
	s.WriteString(headerStyle().Render(strings.ToUpper(name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.aliveHistory) > 1 {
		chart := asciigraph.Plot(m.aliveHistory, asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("Alive"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	stats := w.Stats()
	row("Tick", fmt.Sprintf("%d", stats.Tick))
	row("Alive", fmt.Sprintf("%d", stats.Alive))
	row("Store", fmt.Sprintf("%d", stats.Total))
	if stats.Total > 0 {
		s.WriteString(MetricLabel.Render("") + ProgressBar(float64(stats.Alive)/float64(stats.Total), 20) + "\n")
	}
	row("Speed", fmt.Sprintf("%.2f ± %.2f", m.last.MeanSpeed, m.last.SpeedStdDev))
	row("Kinetic", fmt.Sprintf("%.1f", m.last.KineticEnergy))
	row("Schedule", w.Config().Schedule.String())
	row("Policy", w.Config().Policy.String())
	if len(w.Fields()) > 0 {
		row("Active", w.ActiveField().Name())
	}
	s.WriteString(MetricLabel.Render("Trend") + SparklineChart(m.speedHistory, 30) + "\n")

	s.WriteString("\n" + Separator(40) + "\nFIELDS\n")
	if len(w.Fields()) == 0 {
		s.WriteString(Subtle.Render("  (none)") + "\n")
	}
	for _, f := range w.Fields() {
		s.WriteString("  " + f.Name() + " " + Subtle.Render(formatParams(f)) + "\n")
	}

	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	s.WriteString(KeyHint.Render("\nSP:Burst P:Pause C:Clear Q:Quit\nS:Snapshot T:Theme ?:Help"))
	return s.String()
}

func formatParams(f field.Field) string {
	params := field.ParamsOf(f)
	parts := make([]string, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k, params[k]))
	}
	return strings.Join(parts, " ")
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Spawn a burst            ║
║  P        - Pause/Resume             ║
║  C        - Clear particles          ║
║  S        - Save SVG snapshot        ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
