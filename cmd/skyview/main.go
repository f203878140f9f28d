package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"skycycle/internal/config"
	"skycycle/internal/environment"
)

// preview draws the cycle into a terminal. It is the sky, the light and the
// fog for the engine it is attached to.
type preview struct {
	screen tcell.Screen

	textureA, textureB string
	blend              float64
	rotation           float64
	light              colorful.Color
	intensity          float64
	orientation        environment.Euler
	fog                colorful.Color
}

func (p *preview) SetTextures(a, b string)            { p.textureA, p.textureB = a, b }
func (p *preview) SetBlend(f float64)                 { p.blend = f }
func (p *preview) SetRotation(deg float64)            { p.rotation = deg }
func (p *preview) SetColor(c colorful.Color)          { p.light = c }
func (p *preview) SetIntensity(v float64)             { p.intensity = v }
func (p *preview) SetOrientation(e environment.Euler) { p.orientation = e }
func (p *preview) SetFogColor(c colorful.Color)       { p.fog = c }

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func scale(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}.Clamped()
}

// sunCell places the sun on the sky rows above the horizon row. The light
// pitch runs from -90 at midnight through 90 at noon to 270, so its sine is
// the height; ok is false while the sun is below the horizon.
func sunCell(e environment.Euler, dayFraction float64, width, groundRow int) (x, y int, ok bool) {
	height := math.Sin(e.X * math.Pi / 180)
	if height <= 0 || width <= 0 || groundRow <= 0 {
		return 0, 0, false
	}
	x = int(dayFraction*float64(width-1)+0.5) % width
	y = groundRow - 1 - int(height*float64(groundRow-1)+0.5)
	return x, y, true
}

func (p *preview) draw(f environment.Frame, paused bool) {
	width, height := p.screen.Size()
	if width <= 0 || height <= 2 {
		return
	}
	p.screen.Clear()

	sky := tcell.StyleDefault.Background(toTcell(scale(p.light, p.intensity*0.6)))
	horizon := tcell.StyleDefault.Background(toTcell(p.fog.BlendRgb(colorful.Color{}, 0.5)))
	skyRows := height - 2
	groundRow := skyRows * 2 / 3
	for y := 0; y < skyRows; y++ {
		style := sky
		if y >= groundRow {
			style = horizon
		}
		for x := 0; x < width; x++ {
			p.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	if sx, sy, ok := sunCell(p.orientation, f.DayFraction, width, groundRow); ok {
		glyph := tcell.StyleDefault.Background(toTcell(scale(p.light, p.intensity*0.6))).
			Foreground(toTcell(p.light))
		p.screen.SetContent(sx, sy, '☼', nil, glyph)
	}

	bar := int(p.blend * float64(width-1))
	barStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for x := 0; x < width; x++ {
		r := '─'
		if x == bar {
			r = '●'
		}
		p.screen.SetContent(x, skyRows, r, nil, barStyle)
	}

	status := fmt.Sprintf(" day %d %02d:%02d  %-7s %s -> %s %.2f  light %s x%.2f  rot %.1f",
		f.Days, f.Hours, f.Minutes, f.Phase, p.textureA, p.textureB, p.blend,
		p.light.Hex(), p.intensity, p.rotation)
	if f.Window != "" {
		status += fmt.Sprintf("  [%s %.0f%%]", f.Window, f.Progress*100)
	}
	if paused {
		status += "  (paused)"
	}
	for i, r := range []rune(status) {
		if i >= width {
			break
		}
		p.screen.SetContent(i, height-1, r, nil, tcell.StyleDefault)
	}
	p.screen.Show()
}

func loadCycle(path string) (environment.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		d := config.Default()
		if err := d.Validate(); err != nil {
			return environment.Config{}, err
		}
		cfg, err = &d, nil
	}
	if err != nil {
		return environment.Config{}, err
	}
	return cfg.Cycle.Environment()
}

func main() {
	var (
		configPath string
		speed      float64
		startHour  int
	)
	flag.StringVar(&configPath, "config", "skycycle.yml", "configuration file, defaults are used when missing")
	flag.Float64Var(&speed, "speed", 60, "game minutes per real second, overrides the configuration when > 0")
	flag.IntVar(&startHour, "start", -1, "start hour, overrides the configuration when >= 0")
	flag.Parse()

	cycle, err := loadCycle(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if speed > 0 {
		cycle.MinutesPerRealSecond = speed
	}
	if startHour >= 0 {
		cycle.StartHour = startHour
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("init screen: %v", err)
	}
	defer screen.Fini()

	view := &preview{screen: screen}
	engine := environment.New(cycle,
		environment.WithSky(view),
		environment.WithLight(view),
		environment.WithFog(view),
		environment.WithLogger(log.New(io.Discard, "", 0)),
	)
	run(view, engine)
}

func run(view *preview, engine *environment.Engine) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := view.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	frame := engine.Start()
	paused := false
	last := time.Now()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return
				}
				if ev.Key() == tcell.KeyRune && ev.Rune() == ' ' {
					paused = !paused
				}
			case *tcell.EventResize:
				view.screen.Sync()
			}
			view.draw(frame, paused)
		case now := <-ticker.C:
			if paused {
				frame = engine.Tick(0)
			} else {
				frame = engine.Tick(now.Sub(last))
			}
			last = now
			view.draw(frame, paused)
		}
	}
}
