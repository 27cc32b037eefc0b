package graphrecall_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/graphrecall"
	"github.com/soundprediction/graphrecall/pkg/recall"
)

func TestSentinelsAreMatchable(t *testing.T) {
	wrapped := fmt.Errorf("similar: %w", graphrecall.ErrIndexNotReady)
	assert.True(t, errors.Is(wrapped, graphrecall.ErrIndexNotReady))
	assert.True(t, errors.Is(wrapped, recall.ErrIndexNotReady),
		"root sentinel must be the same value as the package sentinel")
}

func TestFocusedInterfaces(t *testing.T) {
	// A *Client satisfies every view of the facade; the compile-time
	// check in interfaces.go keeps the composition honest. Here we only
	// assert the views stay assignable from GraphRecall.
	var g graphrecall.GraphRecall
	var _ graphrecall.Recaller = g
	var _ graphrecall.IndexAdmin = g
	var _ graphrecall.EmbeddingService = g
	var _ graphrecall.ConnectionManager = g
}
