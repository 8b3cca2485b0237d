package flyin

import (
	"testing"

	"go.uber.org/goleak"
)

// The effect runs entirely on the caller's goroutine.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
