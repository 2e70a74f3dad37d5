// Package metrics provê a coleta e exposição de métricas Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector é a interface de coleta de métricas.
// Usada pelo gate de acesso, pelos serviços e pelo worker.
type MetricsCollector interface {
	RecordGateDecision(state string, allowed bool, reason string)
	RecordMemberCreated()
	RecordSignIn(newUser bool)
	RecordHTTPStatus(statusCode int)
	RecordAuthLookupLatency(duration time.Duration)
	RecordSessionsPurged(count int64)
}

// Collector é a implementação que coleta métricas Prometheus.
type Collector struct {
	gateDecisions     *prometheus.CounterVec
	membersCreated    prometheus.Counter
	signIns           *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
	authLookupLatency prometheus.Histogram
	sessionsPurged    prometheus.Counter
}

// NewCollector cria um Collector e registra as métricas no registry indicado.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coringas_gate_decisions_total",
			Help: "Decisões do gate de acesso por estado, resultado e motivo",
		}, []string{"state", "allowed", "reason"}),
		membersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coringas_members_created_total",
			Help: "Total de registros de filiação criados",
		}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coringas_sign_ins_total",
			Help: "Total de sign-ins por tipo de usuário",
		}, []string{"new_user"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coringas_http_status_total",
			Help: "Respostas HTTP por status code",
		}, []string{"status_code"}),
		authLookupLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coringas_auth_lookup_latency_seconds",
			Help:    "Latência da resolução de sessão e classificação (segundos)",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coringas_sessions_purged_total",
			Help: "Total de sessões expiradas removidas pelo worker",
		}),
	}

	reg.MustRegister(
		c.gateDecisions,
		c.membersCreated,
		c.signIns,
		c.httpStatus,
		c.authLookupLatency,
		c.sessionsPurged,
	)

	return c
}

// RecordGateDecision registra uma decisão do gate de acesso.
func (c *Collector) RecordGateDecision(state string, allowed bool, reason string) {
	c.gateDecisions.WithLabelValues(state, strconv.FormatBool(allowed), reason).Inc()
}

// RecordMemberCreated registra a criação de um registro de filiação.
func (c *Collector) RecordMemberCreated() {
	c.membersCreated.Inc()
}

// RecordSignIn registra um sign-in.
func (c *Collector) RecordSignIn(newUser bool) {
	c.signIns.WithLabelValues(strconv.FormatBool(newUser)).Inc()
}

// RecordHTTPStatus registra o status code da resposta.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAuthLookupLatency registra a latência da resolução de autenticação.
func (c *Collector) RecordAuthLookupLatency(duration time.Duration) {
	c.authLookupLatency.Observe(duration.Seconds())
}

// RecordSessionsPurged registra a quantidade de sessões expiradas removidas.
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// Handler retorna o handler HTTP de scrape do Prometheus.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute retorna o handler HTTP do endpoint /metrics.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
