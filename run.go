package letterfall

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	Debug   bool
}

// gameShell adapts a Document to ebiten.Game. The document is loaded on the
// first tick and follows the window size.
type gameShell struct {
	doc *Document
	fps *fpsOverlay
}

func (g *gameShell) Update() error {
	if !g.doc.Loaded() {
		g.doc.Load()
	}
	g.doc.Update()
	if g.fps != nil {
		g.fps.update(1/float64(ebiten.TPS()), g.doc)
	}
	if g.doc.quit {
		return ebiten.Termination
	}
	return nil
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	g.doc.Draw(screen)
	if g.fps != nil {
		g.fps.draw(screen)
	}
}

func (g *gameShell) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.doc.SetViewport(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens a window and drives doc until the window closes or Quit is
// called. It blocks and must be called from the main goroutine.
func Run(doc *Document, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		w, h := doc.Viewport()
		cfg.Width, cfg.Height = int(w), int(h)
	}
	if cfg.Title == "" {
		cfg.Title = "letterfall"
	}
	if cfg.Debug {
		doc.SetDebugMode(true)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := &gameShell{doc: doc}
	if cfg.ShowFPS {
		g.fps = newFPSOverlay()
	}
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("letterfall: run: %w", err)
	}
	return nil
}
