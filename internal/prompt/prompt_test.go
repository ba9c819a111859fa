package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	assert.Contains(t, System(ContextualizeQuestion), "standalone")
	assert.Contains(t, System(ContextQA), "{context}")
	assert.Empty(t, System(Type("unknown")))
}

func TestRenderContextQA(t *testing.T) {
	rendered := RenderContextQA("chunk one\n\nchunk two")
	assert.Contains(t, rendered, "chunk one\n\nchunk two")
	assert.False(t, strings.Contains(rendered, "{context}"))
}
