package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/logbuf"
	"github.com/san-kum/robonav/internal/sim"
	"go.uber.org/zap"
)

const (
	panelWidth      = 40
	logLines        = 6
	trailCapacity   = 2000
	historyCapacity = 600

	// canvas origin on screen, from canvasStyle padding
	canvasTop  = 1
	canvasLeft = 2
)

// EventMsg carries a change notification into the bubbletea loop.
type EventMsg dynamo.Event

type Arena struct {
	Width, Height int
}

// App is the interactive arena view. It never ticks the robot itself; it
// redraws on notifications and forwards input to the session.
type App struct {
	session *sim.Session
	logs    *logbuf.Buffer
	logger  *zap.Logger
	arena   Arena

	width, height int
	canvas        *Canvas
	view          Viewport

	pose      dynamo.Pose
	target    dynamo.Target
	variant   string
	trail     []dynamo.Pose
	distances []float64
	events    [dynamo.NumEvents]int
	lastErr   error
}

func NewApp(session *sim.Session, logs *logbuf.Buffer, arena Arena, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		session: session,
		logs:    logs,
		logger:  logger,
		arena:   arena,
		canvas:  NewCanvas(60, 20),
		trail:   make([]dynamo.Pose, 0, 256),
	}
	a.fit(60, 20)
	a.refresh()
	return a
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, session *sim.Session, logs *logbuf.Buffer, arena Arena, logger *zap.Logger) error {
	app := NewApp(session, logs, arena, logger)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	sub := session.Subscribe(func(e dynamo.Event) {
		p.Send(EventMsg(e))
	})
	defer sub.Cancel()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (a *App) fit(cols, rows int) {
	a.canvas.Resize(cols, rows)
	a.view = Viewport{
		ArenaWidth:  float64(a.arena.Width),
		ArenaHeight: float64(a.arena.Height),
		DotsX:       a.canvas.SubWidth(),
		DotsY:       a.canvas.SubHeight(),
	}
}

// refresh pulls a fresh snapshot from the current robot.
func (a *App) refresh() {
	r := a.session.Robot()
	a.pose = r.Pose()
	a.target = r.Target()
	a.variant = r.Name()
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			a.click(msg.X, msg.Y)
		}
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		cols := max(20, msg.Width-panelWidth-8)
		rows := max(8, msg.Height-logLines-6)
		a.fit(cols, rows)
	case EventMsg:
		a.handleEvent(dynamo.Event(msg))
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "v":
		next := a.session.Registry().Next(a.session.Variant())
		if err := a.session.Replace(next); err != nil {
			a.lastErr = err
			a.logger.Warn("replace failed", zap.Error(err))
		}
	case "c":
		a.clearTrail()
	}
	return a, nil
}

// click retargets the robot to the arena point under a terminal cell.
func (a *App) click(x, y int) {
	col, row := x-canvasLeft, y-canvasTop
	if col < 0 || row < 0 || col >= a.canvas.Width || row >= a.canvas.Height {
		return
	}
	wx, wy := a.view.CellToWorld(col, row)
	a.session.SetTarget(int(math.Round(wx)), int(math.Round(wy)))
}

func (a *App) handleEvent(e dynamo.Event) {
	if int(e) < len(a.events) {
		a.events[e]++
	}
	if e == dynamo.EventRobotReplaced {
		a.clearTrail()
	}
	a.refresh()
	if e == dynamo.EventPoseChanged {
		a.record()
	}
}

func (a *App) record() {
	a.trail = append(a.trail, a.pose)
	if len(a.trail) > trailCapacity {
		a.trail = a.trail[len(a.trail)-trailCapacity:]
	}
	a.distances = append(a.distances, a.pose.DistanceTo(a.target))
	if len(a.distances) > historyCapacity {
		a.distances = a.distances[1:]
	}
}

func (a *App) clearTrail() {
	a.trail = a.trail[:0]
	a.distances = a.distances[:0]
}

func (a *App) draw() {
	a.canvas.Clear()

	for i := 1; i < len(a.trail); i++ {
		x0, y0 := a.view.ToCanvas(a.trail[i-1].X, a.trail[i-1].Y)
		x1, y1 := a.view.ToCanvas(a.trail[i].X, a.trail[i].Y)
		a.canvas.DrawLine(x0, y0, x1, y1)
	}

	tx, ty := a.view.ToCanvas(float64(a.target.X), float64(a.target.Y))
	a.canvas.DrawCross(tx, ty, 3)

	px, py := a.view.ToCanvas(a.pose.X, a.pose.Y)
	a.canvas.DrawCircle(px, py, 2)
	hx := a.pose.X + 8*math.Cos(a.pose.Heading)
	hy := a.pose.Y + 8*math.Sin(a.pose.Heading)
	ex, ey := a.view.ToCanvas(hx, hy)
	a.canvas.DrawLine(px, py, ex, ey)
}

func (a *App) View() string {
	a.draw()
	canvasView := canvasStyle.Render(a.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(a.variant)) + "\n")

	distance := a.pose.DistanceTo(a.target)
	if dynamo.Arrived(a.pose, a.target) {
		s.WriteString(statusArrived.Render("ARRIVED") + "\n\n")
	} else {
		s.WriteString(statusMoving.Render("MOVING") + "\n\n")
	}

	s.WriteString(Readout(a.pose) + "\n\n")
	s.WriteString(row("heading", fmt.Sprintf("%.3f rad", a.pose.Heading)))
	s.WriteString(row("target", fmt.Sprintf("(%d, %d)", a.target.X, a.target.Y)))
	s.WriteString(row("distance", fmt.Sprintf("%.2f", distance)))
	s.WriteString(row("events", fmt.Sprintf("%d", a.events[dynamo.EventPoseChanged])))

	if len(a.distances) > 1 {
		chart := asciigraph.Plot(a.distances,
			asciigraph.Height(4),
			asciigraph.Width(panelWidth-10),
			asciigraph.Caption("distance"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if a.lastErr != nil {
		s.WriteString(levelStyles["ERROR"].Render(a.lastErr.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("click:target  v:variant\nc:clear trail  q:quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
	if a.logs == nil {
		return main
	}
	logWidth := max(40, lipgloss.Width(main)-2)
	return lipgloss.JoinVertical(lipgloss.Left, main, renderLogs(a.logs.Tail(logLines), logWidth))
}

// Readout is the coordinate line shown under the arena.
func Readout(p dynamo.Pose) string {
	return fmt.Sprintf("x: %.2f y: %.2f", p.X, p.Y)
}
