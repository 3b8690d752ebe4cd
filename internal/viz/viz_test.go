package viz

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/logbuf"
	"github.com/san-kum/robonav/internal/sim"
	"go.uber.org/zap"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(0, 0)
	c.Set(3, 7)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("unexpected cell %U", c.Grid[0][0])
	}
	if c.Grid[1][1] != blank|0x80 {
		t.Errorf("unexpected cell %U", c.Grid[1][1])
	}
	if !c.IsSet(3, 7) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("dot survived Clear")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	if !c.IsSet(0, 0) || !c.IsSet(19, 19) || !c.IsSet(10, 10) {
		t.Error("diagonal line missing dots")
	}
	if strings.Count(c.String(), "\n") != 4 {
		t.Error("expected 5 rows")
	}
}

func TestViewport(t *testing.T) {
	v := Viewport{ArenaWidth: 300, ArenaHeight: 200, DotsX: 120, DotsY: 80}

	tests := []struct {
		name   string
		x, y   float64
		dx, dy int
	}{
		{"bottom left", 0, 0, 0, 79},
		{"top right", 300, 200, 119, 0},
		{"top left", 0, 200, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx, dy := v.ToCanvas(tt.x, tt.y)
			if dx != tt.dx || dy != tt.dy {
				t.Errorf("ToCanvas(%v, %v) = (%d, %d), want (%d, %d)", tt.x, tt.y, dx, dy, tt.dx, tt.dy)
			}
		})
	}

	dx, dy := v.ToCanvas(150, 100)
	x, y := v.ToWorld(dx, dy)
	if math.Abs(x-150) > 3 || math.Abs(y-100) > 3 {
		t.Errorf("round trip drifted to (%f, %f)", x, y)
	}
	if !v.Contains(x, y) || v.Contains(-1, 0) {
		t.Error("Contains is wrong")
	}
}

func TestReadout(t *testing.T) {
	if got := Readout(dynamo.Pose{X: 1.5, Y: 2.25}); got != "x: 1.50 y: 2.25" {
		t.Errorf("unexpected readout %q", got)
	}
}

func newApp(t *testing.T) (*App, *sim.Session) {
	t.Helper()
	cfg := sim.DefaultSessionConfig()
	cfg.Period = time.Millisecond
	s, err := sim.NewSession(context.Background(), nil, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)

	logs := logbuf.New(16)
	logger := zap.New(logs.Core(zap.InfoLevel))
	logger.Info("hello from the log pane")
	return NewApp(s, logs, Arena{Width: 300, Height: 200}, logger), s
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestAppRecordsTrail(t *testing.T) {
	app, _ := newApp(t)

	app.Update(EventMsg(dynamo.EventPoseChanged))
	app.Update(EventMsg(dynamo.EventPoseChanged))
	if len(app.trail) != 2 || len(app.distances) != 2 {
		t.Fatalf("expected 2 trail points, got %d", len(app.trail))
	}

	app.Update(EventMsg(dynamo.EventTargetChanged))
	if len(app.trail) != 2 {
		t.Error("target change should not extend the trail")
	}

	app.Update(key('c'))
	if len(app.trail) != 0 || len(app.distances) != 0 {
		t.Error("trail not cleared")
	}
}

func TestAppCyclesVariant(t *testing.T) {
	app, s := newApp(t)

	app.Update(key('v'))
	if s.Variant() != "nimble" {
		t.Errorf("expected nimble, got %s", s.Variant())
	}

	app.Update(EventMsg(dynamo.EventRobotReplaced))
	if app.variant != "nimble" {
		t.Errorf("app still shows %s", app.variant)
	}
}

func TestAppClickSetsTarget(t *testing.T) {
	app, s := newApp(t)

	app.Update(tea.MouseMsg{
		X:      canvasLeft + 10,
		Y:      canvasTop + 5,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})

	wx, wy := app.view.CellToWorld(10, 5)
	want := dynamo.Target{X: int(math.Round(wx)), Y: int(math.Round(wy))}
	if got := s.Robot().Target(); got != want {
		t.Errorf("target %+v, want %+v", got, want)
	}

	app.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := s.Robot().Target(); got != want {
		t.Error("click outside the canvas moved the target")
	}
}

func TestAppQuit(t *testing.T) {
	app, _ := newApp(t)
	_, cmd := app.Update(key('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppView(t *testing.T) {
	app, _ := newApp(t)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app.Update(EventMsg(dynamo.EventPoseChanged))
	app.Update(EventMsg(dynamo.EventPoseChanged))

	out := app.View()
	for _, want := range []string{"STANDARD", "x: ", "target", "hello from the log pane"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if app.canvas.Width != 72 || app.canvas.Height != 28 {
		t.Errorf("canvas not resized: %dx%d", app.canvas.Width, app.canvas.Height)
	}
}
