package letterfall

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame timing and clock metrics.
// Only populated when Document.debug is true.
type debugStats struct {
	traverseTime    time.Duration
	submitTime      time.Duration
	commandCount    int
	transitionCount int
	timerCount      int
}

// debugLog writes timing and clock stats at debug level.
func (d *Document) debugLog(stats debugStats) {
	if !d.debug {
		return
	}
	d.log.Debug("frame",
		zap.Duration("traverse", stats.traverseTime),
		zap.Duration("submit", stats.submitTime),
		zap.Duration("total", stats.traverseTime+stats.submitTime),
		zap.Int("commands", stats.commandCount),
		zap.Int("transitions", stats.transitionCount),
		zap.Int("timers", stats.timerCount),
		zap.Duration("clock", d.now),
	)
}

// debugLogger receives tree warnings in debug mode. Node operations lack a
// Document pointer, so it mirrors the logger of the last SetDebugMode call.
var debugLogger = zap.NewNop()

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("letterfall debug: %s on disposed node %s", op, describeNode(n)))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 64

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLogger.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth),
			zap.String("node", describeNode(n)))
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		debugLogger.Warn("child count exceeds threshold",
			zap.Int("children", len(n.children)),
			zap.Int("threshold", debugMaxChildCount),
			zap.String("node", describeNode(n)))
	}
}

// describeNode formats a node for diagnostics: "<span.char#12>" or "#text".
func describeNode(n *Node) string {
	if n.Type == NodeTypeText {
		return fmt.Sprintf("#text %q", n.text)
	}
	s := "<" + n.Tag
	for _, c := range n.classes {
		s += "." + c
	}
	return fmt.Sprintf("%s#%d>", s, n.ID)
}
