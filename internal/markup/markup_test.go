package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	r := New()
	out, err := r.Render("Strong in **React** and *Go*.")
	require.NoError(t, err)
	require.Contains(t, string(out), "<strong>React</strong>")
	require.Contains(t, string(out), "<em>Go</em>")
}

func TestRenderStripsScripts(t *testing.T) {
	t.Parallel()

	r := New()
	out, err := r.Render("hello <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script")
	require.NotContains(t, string(out), "javascript:")
}

func TestRenderLinksGetNofollow(t *testing.T) {
	t.Parallel()

	out := New().MustRender("see [site](https://example.com)")
	require.True(t, strings.Contains(string(out), `rel="nofollow`), string(out))
	require.Contains(t, string(out), `target="_blank"`)
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	out, err := New().Render("")
	require.NoError(t, err)
	require.Empty(t, out)
}
