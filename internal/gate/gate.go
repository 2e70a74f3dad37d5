// Package gate implementa o controle de acesso por rota de navegação.
//
// A cada requisição de página o gate resolve o estado do visitante
// (anônimo, não verificável, inativo, membro ou admin) e decide entre
// permitir a passagem ou redirecionar para a rota adequada ao estado.
// A decisão é avaliada do zero a cada requisição: não há cache entre
// requisições, portanto não há estado mutável compartilhado a proteger.
package gate

import "net/url"

// State representa a classificação do visitante para fins de navegação.
// É derivado por requisição a partir da sessão e do registro de filiação;
// nunca é persistido.
type State int

const (
	// StateAnonymous indica requisição sem sessão.
	StateAnonymous State = iota
	// StateUnverifiable indica sessão presente cuja classificação não pôde
	// ser confirmada (falha ou timeout na consulta). Degrada para negação
	// nas rotas protegidas sem bloquear as rotas públicas.
	StateUnverifiable
	// StateInactive indica sessão de cadastro aguardando aprovação
	// (inclui registros rejeitados, que também não têm acesso).
	StateInactive
	// StateMember indica membro aprovado.
	StateMember
	// StateAdmin indica administrador.
	StateAdmin
)

// String descreve o estado para logs e métricas.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateUnverifiable:
		return "unverifiable"
	case StateInactive:
		return "inactive"
	case StateMember:
		return "member"
	case StateAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Rotas de navegação conhecidas pelo gate.
const (
	RouteHome            = "/"
	RouteLogin           = "/login"
	RouteRegister        = "/register"
	RouteDashboard       = "/dashboard"
	RouteProfile         = "/profile"
	RouteAdmin           = "/admin"
	RoutePendingApproval = "/pending-approval"
)

// logoutParam é o parâmetro de query que sinaliza intenção de logout.
// O gate remove o parâmetro e redireciona para a URL limpa sem consultar
// sessão nem classificação.
const logoutParam = "logout"

// Decision é o resultado da avaliação do gate para uma requisição.
// Allow true permite a passagem; caso contrário RedirectTo contém o destino.
type Decision struct {
	Allow      bool
	RedirectTo string
	// Reason identifica o motivo do redirecionamento para logs e métricas.
	Reason string
}

var allow = Decision{Allow: true}

func redirect(target, reason string) Decision {
	return Decision{RedirectTo: target, Reason: reason}
}

// pathKind classifica o caminho da requisição nas categorias da tabela de
// decisão.
type pathKind int

const (
	pathOther pathKind = iota
	pathProtected
	pathAdminOnly
	pathPending
	pathPublicAuth
)

// kindOf categoriza o caminho. Caminhos fora das categorias conhecidas são
// pathOther e passam sem interferência do gate.
func kindOf(path string) pathKind {
	switch {
	case path == RouteAdmin || hasPathPrefix(path, RouteAdmin):
		return pathAdminOnly
	case path == RouteDashboard || path == RouteProfile:
		return pathProtected
	case path == RoutePendingApproval:
		return pathPending
	case path == RouteHome || path == RouteLogin || path == RouteRegister:
		return pathPublicAuth
	default:
		return pathOther
	}
}

// hasPathPrefix verifica prefixo de caminho respeitando o separador
// ("/admin/x" casa com "/admin"; "/administracao" não).
func hasPathPrefix(path, prefix string) bool {
	return len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '/'
}

// IsCallbackPath informa se o caminho pertence ao fluxo de OAuth.
// Durante a troca do código o estado da sessão é transitoriamente
// inconsistente; o gate deixa passar sem consultar nada.
func IsCallbackPath(path string) bool {
	return path == "/auth" || hasPathPrefix(path, "/auth")
}

// LogoutRedirectTarget detecta a intenção de logout na query.
// Quando presente, retorna a URL limpa (sem o parâmetro) para onde
// redirecionar, dispensando qualquer consulta de autenticação.
func LogoutRedirectTarget(path string, query url.Values) (string, bool) {
	if query.Get(logoutParam) != "true" {
		return "", false
	}

	cleaned := url.Values{}
	for k, vs := range query {
		if k == logoutParam {
			continue
		}
		cleaned[k] = vs
	}

	target := path
	if encoded := cleaned.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target, true
}

// Decide aplica a tabela de decisão do gate para um estado e um caminho.
// Pressupõe que os curto-circuitos (callback e logout) já foram tratados.
func Decide(state State, path string) Decision {
	switch kindOf(path) {
	case pathAdminOnly:
		switch state {
		case StateAnonymous:
			return redirect(RouteLogin, "admin_requires_login")
		case StateUnverifiable, StateInactive:
			return redirect(RoutePendingApproval, "admin_requires_approval")
		case StateMember:
			return redirect(RouteProfile, "admin_only")
		default:
			return allow
		}

	case pathProtected:
		switch state {
		case StateAnonymous:
			return redirect(RouteLogin, "requires_login")
		case StateUnverifiable, StateInactive:
			return redirect(RoutePendingApproval, "requires_approval")
		case StateMember:
			// membros navegam pelo perfil; o dashboard é a visão de admin
			if path == RouteDashboard {
				return redirect(RouteProfile, "member_home")
			}
			return allow
		default:
			return allow
		}

	case pathPending:
		switch state {
		case StateMember:
			return redirect(RouteProfile, "already_approved")
		case StateAdmin:
			return redirect(RouteDashboard, "already_approved")
		default:
			return allow
		}

	case pathPublicAuth:
		switch state {
		case StateInactive:
			return redirect(RoutePendingApproval, "awaiting_approval")
		case StateMember:
			return redirect(RouteProfile, "already_signed_in")
		case StateAdmin:
			return redirect(RouteDashboard, "already_signed_in")
		default:
			return allow
		}
	}

	return allow
}

// PostLoginTarget resolve a rota de destino após o login, conforme a
// classificação recém-resolvida. Estados não aprovados vão para o dashboard
// e o próprio gate os redireciona para a página de aprovação pendente.
func PostLoginTarget(state State) string {
	switch state {
	case StateAdmin:
		return RouteDashboard
	case StateMember:
		return RouteProfile
	default:
		return RouteDashboard
	}
}
