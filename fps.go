package letterfall

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay displays the current FPS and TPS along with the document clock.
// The text is re-rendered every ~0.5 seconds into a small offscreen image
// with ebitenutil.DebugPrint.
type fpsOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
}

func newFPSOverlay() *fpsOverlay {
	// 140x48 is enough for "FPS: 60.0\nTPS: 60.0\nT: 12.34s"
	return &fpsOverlay{img: ebiten.NewImage(140, 48), lastUpdate: 1}
}

func (o *fpsOverlay) update(dt float64, doc *Document) {
	o.lastUpdate += dt
	if o.lastUpdate < 0.5 {
		return
	}
	o.lastUpdate = 0

	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nT: %.2fs",
		ebiten.ActualFPS(), ebiten.ActualTPS(), doc.Now().Seconds()))
}

func (o *fpsOverlay) draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, nil)
}
