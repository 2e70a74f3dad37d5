// ContentSanitizerService sanitiza o HTML da bio dos perfis de membro,
// protegendo os usuários contra XSS. Usa política de lista de permissão da
// biblioteca bluemonday: apenas tags e atributos seguros passam.
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService define a interface de sanitização de HTML.
// Usada antes de persistir a bio do perfil e na resposta da API.
type ContentSanitizerService interface {
	// Sanitize sanitiza o HTML e retorna apenas o conteúdo seguro.
	// Tags permitidas: p, br, a, ul, ol, li, blockquote, strong, em.
	// script, iframe, style e atributos on* são removidos.
	// Links recebem target="_blank" e rel="noopener noreferrer".
	// Entrada vazia retorna string vazia.
	// A mesma entrada sempre produz a mesma saída (idempotente).
	Sanitize(rawHTML string) string
}

// contentSanitizer é a implementação de ContentSanitizerService.
// Mantém a política do bluemonday; a sanitização é thread-safe.
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer cria uma nova instância de ContentSanitizerService.
// A política é construída na inicialização:
//   - tags permitidas: p, br, a, ul, ol, li, blockquote, strong, em
//   - script, iframe, style e atributos on* ficam fora da lista e são removidos
//   - links: href permitido, URLs relativas rejeitadas, target="_blank" e
//     rel="noopener noreferrer" forçados
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	// tags simples sem atributos
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "strong", "em",
	)

	// links
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize sanitiza o HTML e retorna apenas o conteúdo seguro.
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
