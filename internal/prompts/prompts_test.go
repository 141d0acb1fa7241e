package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogue(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "API Key Missing", c.ReplyMissingKey)
	assert.NotEmpty(t, c.ReplyUnavailable)
	assert.Equal(t, "StartERA_Plan.pdf", c.PDFFilename)

	p, err := c.ChatPrompt("Be brief.", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Be brief.\n\nUser: hello", p)

	p, err = c.ChatPrompt("  ", "hello")
	require.NoError(t, err)
	assert.Contains(t, p, c.DefaultSystem)
	assert.Contains(t, p, "\n\nUser: hello")

	plan, err := c.PlanPrompt(PlanInput{Idea: "kahve dükkanı", Capital: "50k", Language: "tr"})
	require.NoError(t, err)
	assert.Contains(t, plan, "Fikir: kahve dükkanı")
	assert.Contains(t, plan, "Sermaye: 50k")
	assert.Contains(t, plan, "FİNANSAL PLAN")

	body, err := c.MailBody("123456")
	require.NoError(t, err)
	assert.Equal(t, "Kodunuz: 123456", body)
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chat:
  turn: "[{{.System}}] {{.Message}}"
plan: "plan for {{.Idea}}"
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	p, err := c.ChatPrompt("sys", "msg")
	require.NoError(t, err)
	assert.Equal(t, "[sys] msg", p)

	plan, err := c.PlanPrompt(PlanInput{Idea: "x"})
	require.NoError(t, err)
	assert.Equal(t, "plan for x", plan)
	assert.Equal(t, "API Key Missing", c.ReplyMissingKey)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("plan: ok\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("chat:\n  turn: \"{{.Broken\"\nplan: x\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
