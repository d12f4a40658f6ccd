package logger

import (
	"io"
	"testing"
)

func TestDisableLoggers(t *testing.T) {
	before := NewLogger("[TEST] ", Green)
	DisableLoggers()
	after := NewLogger("[TEST] ", Red)

	if before.Writer() != io.Discard || after.Writer() != io.Discard {
		t.Fatal("loggers still writing")
	}
}
