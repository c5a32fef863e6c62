package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/template"
)

func TestFormatters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		ctx  template.Value
		want string
	}{
		{
			name: "upper",
			body: "{{name|upper}}",
			ctx:  template.Map(map[string]template.Value{"name": template.String("asha")}),
			want: "ASHA",
		},
		{
			name: "lower",
			body: "{{name|lower}}",
			ctx:  template.Map(map[string]template.Value{"name": template.String("ASHA")}),
			want: "asha",
		},
		{
			name: "title",
			body: "{{name|title}}",
			ctx:  template.Map(map[string]template.Value{"name": template.String("asha rao")}),
			want: "Asha Rao",
		},
		{
			name: "truncate shortens and marks",
			body: "{{text|truncate:5}}",
			ctx:  template.Map(map[string]template.Value{"text": template.String("hello world")}),
			want: "hello...",
		},
		{
			name: "truncate leaves short text alone",
			body: "{{text|truncate:20}}",
			ctx:  template.Map(map[string]template.Value{"text": template.String("hello")}),
			want: "hello",
		},
		{
			name: "truncate with bad argument is a no-op",
			body: "{{text|truncate:xyz}}",
			ctx:  template.Map(map[string]template.Value{"text": template.String("hello")}),
			want: "hello",
		},
		{
			name: "default fills empty value",
			body: "Hi {{nickname|default:there}}",
			ctx:  template.Map(nil),
			want: "Hi there",
		},
		{
			name: "default ignored when value present",
			body: "Hi {{nickname|default:there}}",
			ctx:  template.Map(map[string]template.Value{"nickname": template.String("Asha")}),
			want: "Hi Asha",
		},
		{
			name: "chained formatters apply left to right",
			body: "{{name|title|truncate:4}}",
			ctx:  template.Map(map[string]template.Value{"name": template.String("asha rao")}),
			want: "Asha...",
		},
		{
			name: "unknown formatter is a no-op",
			body: "{{name|sparkle}}",
			ctx:  template.Map(map[string]template.Value{"name": template.String("asha")}),
			want: "asha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := template.Render(tt.body, tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateFormatter(t *testing.T) {
	t.Parallel()

	t.Run("parseable date is reformatted", func(t *testing.T) {
		t.Parallel()
		got, err := template.Render("{{when|date:en-IN}}", template.Map(map[string]template.Value{
			"when": template.String("2026-03-15"),
		}))
		require.NoError(t, err)
		assert.Equal(t, "15 March 2026", got)
	})

	t.Run("US locale uses month-first layout", func(t *testing.T) {
		t.Parallel()
		got, err := template.Render("{{when|date:en-US}}", template.Map(map[string]template.Value{
			"when": template.String("2026-03-15"),
		}))
		require.NoError(t, err)
		assert.Equal(t, "March 15, 2026", got)
	})

	t.Run("unparseable input passes through", func(t *testing.T) {
		t.Parallel()
		got, err := template.Render("{{when|date:en-IN}}", template.Map(map[string]template.Value{
			"when": template.String("next tuesday"),
		}))
		require.NoError(t, err)
		assert.Equal(t, "next tuesday", got)
	})
}

func TestCurrencyFormatter(t *testing.T) {
	t.Parallel()

	t.Run("numeric amount is formatted", func(t *testing.T) {
		t.Parallel()
		got, err := template.Render("{{amount|currency:INR:en-IN}}", template.Map(map[string]template.Value{
			"amount": template.Number(1500),
		}))
		require.NoError(t, err)
		assert.Contains(t, got, "1")
		assert.NotEqual(t, "1500", got)
	})

	t.Run("non-numeric amount passes through unchanged", func(t *testing.T) {
		t.Parallel()
		got, err := template.Render("{{amount|currency:INR:en-IN}}", template.Map(map[string]template.Value{
			"amount": template.String("a lot"),
		}))
		require.NoError(t, err)
		assert.Equal(t, "a lot", got)
	})

	t.Run("unknown currency code passes through", func(t *testing.T) {
		t.Parallel()
		got, err := template.Render("{{amount|currency:ZZZ:en-IN}}", template.Map(map[string]template.Value{
			"amount": template.Number(10),
		}))
		require.NoError(t, err)
		assert.Equal(t, "10", got)
	})
}
