package hydrate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutes(t *testing.T) {
	out := Render("Basic {{auth_token}} for {{order_id}}", Vars{
		"auth_token": "abc==",
		"order_id":   "TRX-1",
	})
	require.Equal(t, "Basic abc== for TRX-1", out)
}

func TestRenderMissingKeyYieldsEmpty(t *testing.T) {
	out := Render("{{a}}{{b}}", Vars{"a": "X"})
	require.Equal(t, "X", out)
}

func TestRenderTrimsIdentifier(t *testing.T) {
	out := Render("{{ amount }}", Vars{"amount": int64(150000)})
	require.Equal(t, "150000", out)
}

func TestRenderNumericForms(t *testing.T) {
	require.Equal(t, "150000", Render("{{v}}", Vars{"v": float64(150000)}))
	require.Equal(t, "12.5", Render("{{v}}", Vars{"v": 12.5}))
	require.Equal(t, "7", Render("{{v}}", Vars{"v": 7}))
	require.Equal(t, "true", Render("{{v}}", Vars{"v": true}))
	require.Equal(t, "", Render("{{v}}", Vars{"v": nil}))
}

func TestRenderNoRecursion(t *testing.T) {
	// A substituted value containing placeholder syntax is left as-is.
	out := Render("{{a}}", Vars{"a": "{{b}}", "b": "nested"})
	require.Equal(t, "{{b}}", out)
}

func TestRenderHeaders(t *testing.T) {
	out := RenderHeaders(map[string]string{
		"Authorization": "Basic {{auth_token}}",
		"Content-Type":  "application/json",
	}, Vars{"auth_token": "dG9rZW4="})
	require.Equal(t, "Basic dG9rZW4=", out["Authorization"])
	require.Equal(t, "application/json", out["Content-Type"])
}
