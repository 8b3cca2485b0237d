package flyin

import (
	"math"
	"strconv"
	"strings"

	"github.com/phanxgames/letterfall"
)

// Dataset keys read from a target container (data-min-duration and so on).
const (
	KeyMinDuration     = "minDuration"
	KeyMaxDuration     = "maxDuration"
	KeyMinColorDur     = "minColorDur"
	KeyMaxColorDur     = "maxColorDur"
	KeyMaxInitialDelay = "maxInitialDelay"
	KeyPerCharStagger  = "perCharStagger"
)

// ResolveTiming applies a container's dataset overrides to base. Absent,
// unparseable or non-finite values keep the base value. Negative values are
// taken as given: a negative duration settles at commit and a negative delay
// commits at once.
func ResolveTiming(container *letterfall.Node, base Timing) Timing {
	t := base
	override := func(key string, dst *float64) {
		raw, ok := container.Data(key)
		if !ok {
			return
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		*dst = v
	}
	override(KeyMinDuration, &t.MinDuration)
	override(KeyMaxDuration, &t.MaxDuration)
	override(KeyMinColorDur, &t.MinColorDur)
	override(KeyMaxColorDur, &t.MaxColorDur)
	override(KeyMaxInitialDelay, &t.MaxInitialDelay)
	override(KeyPerCharStagger, &t.PerCharStagger)
	return t
}
