package viz

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/soapsort/internal/metrics"
	"github.com/san-kum/soapsort/internal/soap"
)

const (
	barWidth        = 40
	historyCapacity = 600
	maxSpeed        = 4096
)

type TickMsg time.Time

// Model holds the array being sorted and everything the view needs.
type Model struct {
	cfg        soap.Config
	seed       int64
	frameRate  int
	initial    []float64
	arr        []float64
	sorter     *soap.Sorter[float64]
	last       soap.Interaction
	swaps      int
	maxInv     int
	inversions []float64
	swapRate   []float64
	speed      int
	running    bool
	done       bool
	err        error
	theme      Theme
	showHelp   bool
}

// NewModel prepares a live sort of values. values is copied.
func NewModel(values []float64, cfg soap.Config, seed int64, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = 30
	}
	m := Model{
		cfg:       cfg,
		seed:      seed,
		frameRate: frameRate,
		initial:   append([]float64(nil), values...),
		speed:     1,
		running:   true,
		theme:     ThemeCyberpunk,
	}
	m.reset()
	return m
}

func (m *Model) reset() {
	m.arr = append([]float64(nil), m.initial...)
	m.sorter = soap.New[float64](rand.New(rand.NewSource(m.seed)), m.cfg)
	m.last = soap.Interaction{Person: -1, Soap: -1}
	m.swaps = 0
	m.maxInv = metrics.CountInversions(m.arr)
	m.inversions = append(make([]float64, 0, historyCapacity), float64(m.maxInv))
	m.swapRate = make([]float64, 0, historyCapacity)
	m.done = soap.IsSorted(m.arr)
	m.err = nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances the sort.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		case "t":
			m.theme = m.theme.next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step runs up to speed interactions and records one history sample.
func (m *Model) step() {
	swaps := 0
	for i := 0; i < m.speed; i++ {
		ev, done, err := m.sorter.Step(m.arr)
		if err != nil {
			m.err = err
			break
		}
		if done {
			m.done = true
			break
		}
		m.last = ev
		swaps += ev.Swaps
	}
	m.swaps += swaps
	if !m.done {
		m.done = soap.IsSorted(m.arr)
	}

	m.inversions = appendCapped(m.inversions, float64(metrics.CountInversions(m.arr)))
	m.swapRate = appendCapped(m.swapRate, float64(swaps))
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// Sorted reports whether the array has reached non-descending order.
func (m Model) Sorted() bool { return m.done }

// Values returns the current array.
func (m Model) Values() []float64 { return m.arr }

func (m Model) status() string {
	switch {
	case errors.Is(m.err, soap.ErrInteractionLimit):
		return StatusPaused.Render(fmt.Sprintf("STOPPED: limit of %d interactions", m.sorter.Config().MaxInteractions))
	case m.err != nil:
		return StatusError.Render("ERROR: " + m.err.Error())
	case m.done:
		return StatusRunning.Render("SORTED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

func (m Model) bars() string {
	hi := 0.0
	for _, v := range m.arr {
		if v > hi {
			hi = v
		}
	}
	if hi == 0 {
		hi = 1
	}

	var sb strings.Builder
	for i, v := range m.arr {
		n := int(v / hi * barWidth)
		if n < 1 {
			n = 1
		}
		color := m.theme.Bar
		switch i {
		case m.last.Person:
			color = m.theme.Person
		case m.last.Soap:
			color = m.theme.Soap
		}
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", n))
		sb.WriteString(fmt.Sprintf("%3d %8.2f %s\n", i, v, bar))
	}
	return sb.String()
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.bars())

	var s strings.Builder
	s.WriteString(headerStyle.Render("SOAP SORT") + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.inversions) > 1 {
		graphStyle := lipgloss.NewStyle().Foreground(m.theme.GraphLine).Padding(1, 0)
		chart := asciigraph.Plot(m.inversions, asciigraph.Height(6), asciigraph.Width(30), asciigraph.Caption("Inversions"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	current := 0.0
	if len(m.inversions) > 0 {
		current = m.inversions[len(m.inversions)-1]
	}
	progress := 1.0
	if m.maxInv > 0 {
		progress = 1 - current/float64(m.maxInv)
	}

	s.WriteString(labelStyle.Render("Interactions") + valueStyle.Render(fmt.Sprintf("%d", m.last.Number)) + "\n")
	s.WriteString(labelStyle.Render("Swaps") + valueStyle.Render(fmt.Sprintf("%d", m.swaps)) + "\n")
	s.WriteString(labelStyle.Render("Inversions") + valueStyle.Render(fmt.Sprintf("%.0f", current)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d/tick", m.speed)) + "\n")
	s.WriteString(labelStyle.Render("Order") + ProgressBar(progress, 20) + "\n")
	s.WriteString(labelStyle.Render("Swap rate") + SparklineChart(m.swapRate, 20) + "\n")

	cfg := m.sorter.Config()
	s.WriteString("\nPARAMETERS\n")
	s.WriteString(labelStyle.Render("  energy") + valueStyle.Render(fmt.Sprintf("%.2f", m.energy())) + "\n")
	s.WriteString(labelStyle.Render("  beta") + valueStyle.Render(fmt.Sprintf("%.3f", cfg.Beta)) + "\n")
	s.WriteString(labelStyle.Render("  threshold") + valueStyle.Render(fmt.Sprintf("%.3f", cfg.Threshold)) + "\n")
	if cfg.MaxInteractions > 0 {
		s.WriteString(labelStyle.Render("  cap") + valueStyle.Render(fmt.Sprintf("%d", cfg.MaxInteractions)) + "\n")
	}
	s.WriteString(labelStyle.Render("  seed") + valueStyle.Render(fmt.Sprintf("%d", m.seed)) + "\n")

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Speed T:Theme ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume sort        ║
║  R        - Reset array and seed     ║
║  Q        - Quit                     ║
║  +        - Double speed             ║
║  -        - Halve speed              ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) energy() float64 {
	if e := m.sorter.Config().Energy; e > 0 {
		return e
	}
	return float64(len(m.initial))
}

// Run starts the live view on the terminal and blocks until the user quits.
func Run(values []float64, cfg soap.Config, seed int64, frameRate int) error {
	p := tea.NewProgram(NewModel(values, cfg, seed, frameRate))
	_, err := p.Run()
	return err
}
