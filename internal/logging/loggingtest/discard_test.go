package loggingtest

import (
	"context"
	"testing"
)

func TestNewDiscard_DoesNotPanic(t *testing.T) {
	l := NewDiscard()
	l.With("k", "v").Error(context.Background(), "dropped")
}
