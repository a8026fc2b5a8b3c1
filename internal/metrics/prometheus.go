package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fpp_tailscale"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	commands        *prom.CounterVec
	commandDuration *prom.HistogramVec
	actions         *prom.CounterVec
	actionDuration  *prom.HistogramVec
	states          *prom.CounterVec
	connected       prom.Gauge
}

// NewPrometheusRecorder registers its collectors on reg, or on a new
// registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	p := &PrometheusRecorder{
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Daemon commands run, by program and exit code",
		}, []string{"program", "exit_code"}),
		commandDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Daemon command wall time",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 3, 5, 10, 30},
		}, []string{"program"}),
		actions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "api_actions_total",
			Help:      "API actions handled, by action and result",
		}, []string{"action", "result"}),
		actionDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "api_action_duration_seconds",
			Help:      "API action latency",
			Buckets:   prom.DefBuckets,
		}, []string{"action"}),
		states: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "state_evaluations_total",
			Help:      "Connection state evaluations, by cause",
		}, []string{"cause"}),
		connected: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 when the last evaluated state was connected",
		}),
	}
	reg.MustRegister(p.commands, p.commandDuration, p.actions, p.actionDuration, p.states, p.connected)
	return p
}

func (p *PrometheusRecorder) ObserveCommand(program string, exitCode int, d time.Duration) {
	if p == nil {
		return
	}
	p.commands.WithLabelValues(program, strconv.Itoa(exitCode)).Inc()
	p.commandDuration.WithLabelValues(program).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveAction(action string, success bool, d time.Duration) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.actions.WithLabelValues(action, res).Inc()
	p.actionDuration.WithLabelValues(action).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveState(cause string, connected bool) {
	if p == nil {
		return
	}
	p.states.WithLabelValues(cause).Inc()
	v := 0.0
	if connected {
		v = 1
	}
	p.connected.Set(v)
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prom.Registry {
	reg := prom.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus exposition format.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
