package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHeading(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"1. YÖNETİCİ ÖZETİ", true},
		{"  PAZAR ANALİZİ  ", true},
		{"Pazar analizi", false},
		{"2024 - 2025", false},
		{"", false},
		{"FINANCIAL PLAN FOR THE NEXT FIVE YEARS OF OPERATION", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsHeading(tc.line), tc.line)
	}
}

func TestRender(t *testing.T) {
	lines := SplitLines("YÖNETİCİ ÖZETİ\r\nBu plan bir kahve dükkanı içindir.\n\nFİNANSAL PLAN\nİlk yıl gelir: 1.000.000 TL")
	out, err := NewExporter().Render("Start ERA - Business Plan", lines)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRenderEmpty(t *testing.T) {
	out, err := NewExporter().Render("Empty", nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
