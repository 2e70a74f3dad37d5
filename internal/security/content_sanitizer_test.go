package security

import (
	"strings"
	"testing"
)

// TestSanitize_AllowedTags verifica que as tags permitidas passam intactas.
func TestSanitize_AllowedTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "p passa",
			input:        "<p>Toco bateria desde 2019.</p>",
			wantContains: []string{"<p>Toco bateria desde 2019.</p>"},
		},
		{
			name:         "br passa",
			input:        "linha 1<br>linha 2",
			wantContains: []string{"<br>", "linha 1", "linha 2"},
		},
		{
			name:         "a passa com href",
			input:        `<a href="https://example.com">meu site</a>`,
			wantContains: []string{"<a", "href", "https://example.com", "meu site", "</a>"},
		},
		{
			name:         "ul e li passam",
			input:        "<ul><li>samba</li><li>maracatu</li></ul>",
			wantContains: []string{"<ul>", "<li>", "samba", "maracatu"},
		},
		{
			name:         "blockquote passa",
			input:        "<blockquote>citação</blockquote>",
			wantContains: []string{"<blockquote>citação</blockquote>"},
		},
		{
			name:         "strong e em passam",
			input:        "<strong>negrito</strong> <em>itálico</em>",
			wantContains: []string{"<strong>negrito</strong>", "<em>itálico</em>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_ForbiddenTags verifica que tags perigosas são removidas.
func TestSanitize_ForbiddenTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantAbsent   []string
		wantContains []string
	}{
		{
			name:         "script removido",
			input:        `<p>bio</p><script>alert('xss')</script><p>segura</p>`,
			wantAbsent:   []string{"<script", "</script>", "alert"},
			wantContains: []string{"bio", "segura"},
		},
		{
			name:         "iframe removido",
			input:        `<p>bio</p><iframe src="https://evil.com"></iframe>`,
			wantAbsent:   []string{"<iframe", "evil.com"},
			wantContains: []string{"bio"},
		},
		{
			name:         "style removido",
			input:        `<p>bio</p><style>body{display:none}</style>`,
			wantAbsent:   []string{"<style", "display:none"},
			wantContains: []string{"bio"},
		},
		{
			name:         "img removido da bio",
			input:        `<p>bio</p><img src="https://example.com/x.png">`,
			wantAbsent:   []string{"<img"},
			wantContains: []string{"bio"},
		},
		{
			name:         "atributo onclick removido",
			input:        `<p onclick="alert(1)">bio</p>`,
			wantAbsent:   []string{"onclick"},
			wantContains: []string{"bio"},
		},
		{
			name:       "href javascript removido",
			input:      `<a href="javascript:alert(1)">clique</a>`,
			wantAbsent: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, absent)
				}
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_Idempotent verifica que sanitizar duas vezes não altera o
// resultado.
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	input := `<p>Toco <strong>surdo</strong></p><script>alert(1)</script>`
	once := sanitizer.Sanitize(input)
	twice := sanitizer.Sanitize(once)

	if once != twice {
		t.Errorf("sanitize is not idempotent: %q != %q", once, twice)
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	sanitizer := NewContentSanitizer()

	if got := sanitizer.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty string", got)
	}
}
