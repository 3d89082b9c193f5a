package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/promptgrid/internal/app"
	"github.com/vk/promptgrid/internal/testutil"
	"github.com/vk/promptgrid/internal/value"
)

// Test for: an input value flows through a prompt template into an output node.
func TestCoreExecution_PromptChain(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"graph/main.hcl": `
			node "input" "name" {
			  contents {
			    output = "hello"
			  }
			}

			node "prompt" "greet" {
			  contents {
			    prompt = "Say {x}"
			  }
			}

			node "output" "result" {}

			edge {
			  from = "name.input"
			  to   = "greet.x"
			}

			edge {
			  from = "greet.prompt"
			  to   = "result.output"
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "greet [prompt]\n  prompt = \"Say hello\"\n")
	assert.Contains(t, result.Output, "result [output]\n  output = \"Say hello\"\n")

	greet, ok := result.App.Store().Node("greet")
	require.True(t, ok)
	require.Len(t, greet.Data.InputLabels, 1)
	assert.True(t, greet.Data.InputLabels[0].Equal(value.NewLabel("x", value.String)))
}

// Test for: a number flowing into a string port is converted on the way.
func TestCoreExecution_NumberIntoPrompt(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"graph/main.hcl": `
			node "input" "n" {
			  contents {
			    output = 42
			  }
			}

			node "prompt" "p" {
			  contents {
			    prompt = "{v} apples"
			  }
			}

			edge {
			  from = "n.input"
			  to   = "p.v"
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files, app.Config{})

	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "n [input]\n  input = 42\n")
	assert.Contains(t, result.Output, "p [prompt]\n  prompt = \"42 apples\"\n")
}

// Test for: function nodes derive their ports from their signature.
func TestCoreExecution_FunctionNode(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"graph/main.hcl": `
			node "input" "a" {
			  contents {
			    output = 2
			  }
			}

			node "input" "b" {
			  contents {
			    output = 3
			  }
			}

			node "function" "mul" {
			  contents {
			    function = "function mul(x, y) { return x * y; }"
			  }
			}

			edge {
			  from = "a.input"
			  to   = "mul.x"
			}

			edge {
			  from = "b.input"
			  to   = "mul.y"
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files, app.Config{})

	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "mul [function]\n  result = 6\n")
	mul, ok := result.App.Store().Node("mul")
	require.True(t, ok)
	assert.Equal(t, "Mul", mul.Data.Title)
}
