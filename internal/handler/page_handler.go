package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/coringas/sistema-coringas/internal/gate"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageSpec associa uma rota de navegação ao template e ao título da página.
type pageSpec struct {
	file  string
	title string
}

var pageSpecs = map[string]pageSpec{
	gate.RouteHome:            {file: "home.html", title: "Início"},
	gate.RouteLogin:           {file: "login.html", title: "Entrar"},
	gate.RouteRegister:        {file: "register.html", title: "Cadastro"},
	gate.RouteDashboard:       {file: "dashboard.html", title: "Dashboard"},
	gate.RouteProfile:         {file: "profile.html", title: "Meu perfil"},
	gate.RouteAdmin:           {file: "admin.html", title: "Administração"},
	gate.RoutePendingApproval: {file: "pending_approval.html", title: "Cadastro em análise"},
}

// PageHandler serve as páginas de navegação.
// O controle de acesso é do gate; aqui só se renderiza o template embutido.
type PageHandler struct {
	pages map[string]*template.Template
}

// NewPageHandler interpreta os templates embutidos.
// Cada página é combinada com o layout na inicialização; erro aqui indica
// template inválido no binário e deve abortar o boot.
func NewPageHandler() (*PageHandler, error) {
	pages := make(map[string]*template.Template, len(pageSpecs))
	for route, spec := range pageSpecs {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+spec.file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", spec.file, err)
		}
		pages[route] = tmpl
	}
	return &PageHandler{pages: pages}, nil
}

// pageData é o contexto passado aos templates.
type pageData struct {
	Title string
}

// ServePage renderiza a página registrada para a rota.
func (h *PageHandler) ServePage(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := h.pages[route]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.ExecuteTemplate(w, "layout.html", pageData{Title: pageSpecs[route].title}); err != nil {
			slog.Error("failed to render page",
				slog.String("route", route),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Routes lista as rotas de página registradas.
func (h *PageHandler) Routes() []string {
	routes := make([]string, 0, len(h.pages))
	for route := range h.pages {
		routes = append(routes, route)
	}
	return routes
}
