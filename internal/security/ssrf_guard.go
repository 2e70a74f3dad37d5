// Package security provê as funções de segurança da aplicação.
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// SSRFGuardService define a interface de prevenção de SSRF.
// Usada pelo proxy de avatar, que busca imagens em URLs fornecidas pelo
// usuário ou pelo IdP.
type SSRFGuardService interface {
	// NewSafeClient cria um cliente HTTP com prevenção de SSRF.
	// A biblioteca safeurl bloqueia automaticamente requisições para IPs
	// privados, loopback, link-local e IPs de metadados de nuvem, inclusive
	// após a resolução DNS (proteção contra DNS rebinding).
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client

	// ValidateURL valida a segurança da URL antes da requisição.
	// Verifica esquema, host e endereço IP; URLs perigosas retornam erro.
	ValidateURL(rawURL string) error
}

// allowedSchemes são os esquemas de URL permitidos.
var allowedSchemes = []string{"http", "https"}

// blockedNetworks são as faixas de rede bloqueadas.
// Parseadas uma única vez na inicialização do pacote. O safeurl também valida
// o IP resolvido no nível do net.Dialer, cobrindo ataques de DNS rebinding.
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// IPs privados (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// loopback (RFC 1122)
		"127.0.0.0/8",
		// link-local (RFC 3927), inclui o IP de metadados de nuvem (169.254.169.254)
		"169.254.0.0/16",
		// rede atual
		"0.0.0.0/8",
		// loopback IPv6
		"::1/128",
		// link-local IPv6
		"fe80::/10",
		// unique-local IPv6
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// ssrfGuard é a implementação de SSRFGuardService.
type ssrfGuard struct{}

// NewSSRFGuard cria uma nova instância de SSRFGuardService.
func NewSSRFGuard() *ssrfGuard {
	return &ssrfGuard{}
}

// NewSafeClient cria um cliente HTTP com prevenção de SSRF.
// A configuração padrão do safeurl bloqueia:
//   - IPs privados (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//   - loopback (127.0.0.0/8, ::1)
//   - link-local (169.254.0.0/16, fe80::/10)
//   - IP de metadados (169.254.169.254)
//
// O safeurl valida o IP pós-resolução DNS pelo hook Control do net.Dialer,
// cobrindo ataques de DNS rebinding.
func (g *ssrfGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// ValidateURL valida a segurança da URL antes da requisição.
// É uma verificação estática sem resolução DNS, usada como checagem prévia
// antes de buscar a imagem de avatar. DNS rebinding é coberto pelo Dialer do
// cliente criado em NewSafeClient.
func (g *ssrfGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	// esquema: apenas http/https
	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	// host vazio é rejeitado
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	// endereço IP literal: compara com as faixas bloqueadas
	ip := net.ParseIP(host)
	if ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	// hostname: rejeita nomes perigosos como localhost
	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

// isAllowedScheme verifica se o esquema está na lista de permitidos.
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedIP verifica se o IP está em alguma faixa bloqueada.
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// blockedHostnames são os hostnames bloqueados.
var blockedHostnames = []string{
	"localhost",
}

// isBlockedHostname verifica se o hostname está bloqueado.
func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	for _, blocked := range blockedHostnames {
		if lower == blocked {
			return true
		}
	}
	return false
}
