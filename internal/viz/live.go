package viz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/particle"
	"github.com/san-kum/mbsim/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 30
	historyCapacity = 240
	pausePoll       = 50 * time.Millisecond
)

// FrameMsg carries a pooled copy of a simulation frame into the UI.
type FrameMsg struct{ Frame *particle.Frame }

// DoneMsg reports the end of the run.
type DoneMsg struct {
	Result *sim.Result
	Err    error
}

type LiveConfig struct {
	N      int
	Bounds float64
	Speed  float64
	Ticks  int
	Bins   int
	Width  float64
	Device string
	Theme  string
	// Every forwards only every k-th tick to the UI.
	Every int
}

// Live is a sim.Presenter that shows the particle box, the speed histogram
// against the Maxwell-Boltzmann curve and per-tick statistics in the
// terminal.
type Live struct {
	cfg     LiveConfig
	pool    *particle.FramePool
	paused  *atomic.Bool
	program *tea.Program
	send    func(tea.Msg)

	done     chan struct{}
	doneOnce sync.Once
}

func NewLive(cfg LiveConfig) *Live {
	if cfg.Every <= 0 {
		cfg.Every = 1
	}
	if cfg.Bounds <= 0 {
		cfg.Bounds = 1
	}
	l := &Live{
		cfg:    cfg,
		pool:   particle.NewFramePool(cfg.N),
		paused: new(atomic.Bool),
		done:   make(chan struct{}),
	}
	l.program = tea.NewProgram(l.Model(), tea.WithAltScreen())
	l.send = l.program.Send
	return l
}

// Model returns the UI model bound to this presenter.
func (l *Live) Model() Model {
	return Model{
		cfg:    l.cfg,
		pool:   l.pool,
		paused: l.paused,
		canvas: NewCanvas(canvasWidth, canvasHeight),
		theme:  GetTheme(l.cfg.Theme),
		start:  time.Now(),
	}
}

// Run blocks until the user quits the UI.
func (l *Live) Run() error {
	defer l.Close()
	_, err := l.program.Run()
	return err
}

// Close stops forwarding frames; the next Present halts the run.
func (l *Live) Close() {
	l.doneOnce.Do(func() { close(l.done) })
}

// Finish hands the run result to the UI.
func (l *Live) Finish(result *sim.Result, err error) {
	select {
	case <-l.done:
	default:
		l.send(DoneMsg{Result: result, Err: err})
	}
}

func (l *Live) Present(ctx context.Context, f particle.Frame) error {
	select {
	case <-l.done:
		return sim.ErrHalt
	default:
	}

	last := l.cfg.Ticks > 0 && f.Tick == l.cfg.Ticks-1
	if f.Tick%l.cfg.Every == 0 || last {
		l.send(FrameMsg{Frame: l.pool.GetAndCopy(f)})
	}

	for l.paused.Load() {
		select {
		case <-l.done:
			return sim.ErrHalt
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pausePoll):
		}
	}
	return nil
}

// Model is the bubbletea model of the live view.
type Model struct {
	cfg    LiveConfig
	pool   *particle.FramePool
	paused *atomic.Bool
	canvas *Canvas
	theme  Theme

	frame      *particle.Frame
	hist       analysis.Histogram
	meanSq     []float64
	collisions []float64
	distance   float64

	start    time.Time
	finished bool
	result   *sim.Result
	err      error
	showHelp bool
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.paused.Store(false)
			return m, tea.Quit
		case " ":
			if !m.finished {
				m.paused.Store(!m.paused.Load())
			}
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case FrameMsg:
		m.observe(msg.Frame)
	case DoneMsg:
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
		m.paused.Store(false)
	}
	return m, nil
}

func (m *Model) observe(f *particle.Frame) {
	if m.frame != nil {
		m.pool.Put(m.frame)
	}
	m.frame = f

	m.canvas.Clear()
	m.canvas.PlotParticles(f.Positions, m.cfg.Bounds)

	m.hist = analysis.SpeedHistogram(f.Velocities, m.cfg.Bins, m.cfg.Width)
	m.distance = analysis.Distance(m.hist, m.cfg.Speed)

	m.meanSq = appendCapped(m.meanSq, f.MeanSq)
	m.collisions = appendCapped(m.collisions, float64(f.Collisions))
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// Tick returns the tick of the frame on screen, or -1.
func (m Model) Tick() int {
	if m.frame == nil {
		return -1
	}
	return m.frame.Tick
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED: " + m.err.Error())
	case m.finished:
		return StatusFinished.Render("FINISHED")
	case m.paused.Load():
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	particles := lipgloss.NewStyle().Foreground(m.theme.Particles).Padding(0, 1).
		Border(lipgloss.RoundedBorder()).BorderForeground(m.theme.Muted).
		Render(m.canvas.String())

	value := lipgloss.NewStyle().Foreground(m.theme.Text)
	accent := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)

	var s strings.Builder
	s.WriteString(accent.Render("MAXWELL-BOLTZMANN") + "\n")
	s.WriteString(m.status() + "\n\n")

	tick := m.Tick()
	progress := 0.0
	if m.cfg.Ticks > 0 {
		progress = float64(tick+1) / float64(m.cfg.Ticks)
	}
	s.WriteString(labelStyle.Render("Iteration") + value.Render(fmt.Sprintf("%d / %d", tick+1, m.cfg.Ticks)) + "\n")
	s.WriteString(ProgressBar(progress, 30) + "\n")
	if m.frame != nil {
		s.WriteString(labelStyle.Render("Mean v²") + value.Render(fmt.Sprintf("%.1f", m.frame.MeanSq)) + "\n")
		s.WriteString(labelStyle.Render("Collisions") + value.Render(fmt.Sprintf("%d", m.frame.Collisions)) + "\n")
	}
	s.WriteString(labelStyle.Render("MB distance") + value.Render(fmt.Sprintf("%.3f", m.distance)) + "\n")
	s.WriteString(labelStyle.Render("Particles") + value.Render(fmt.Sprintf("%d", m.cfg.N)) + "\n")
	s.WriteString(labelStyle.Render("Device") + value.Render(m.cfg.Device) + "\n")
	s.WriteString(labelStyle.Render("Wall time") + value.Render(time.Since(m.start).Truncate(time.Millisecond).String()) + "\n")
	if m.result != nil {
		s.WriteString(labelStyle.Render("Energy drift") + value.Render(fmt.Sprintf("%.2e", m.result.EnergyDrift)) + "\n")
	}
	s.WriteString("\n" + labelStyle.Render("Energy") + Sparkline(m.meanSq, 30) + "\n")
	s.WriteString(labelStyle.Render("Collisions") + Sparkline(m.collisions, 30) + "\n")

	if m.hist.Bins() > 0 {
		chart := HistogramChart(m.hist, m.cfg.Speed, 38, 10)
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Histogram).Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause T:Theme ?:Help Q:Quit"))
	stats := statsStyle.Render(s.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top, particles, stats)

	if m.showHelp {
		return `
  Space  pause / resume the simulation
  T      cycle themes (` + strings.Join(ThemeNames(), ", ") + `)
  Q      quit (halts the run)
  ?      toggle this help
` + "\n" + body
	}
	return body
}
