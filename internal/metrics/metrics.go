// Package metrics exposes prometheus collectors for a simulation run.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "izhinet"

// Recorder owns a private registry so several runs in one process do not
// collide. A nil Recorder is safe to use and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	steps       prometheus.Counter
	spikes      *prometheus.CounterVec
	links       prometheus.Gauge
	neurons     prometheus.Gauge
	stepSeconds prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Simulated time steps.",
		}),
		spikes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spikes_total",
			Help:      "Spikes emitted, by neuron type.",
		}, []string{"type"}),
		links: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links",
			Help:      "Directed links in the network.",
		}),
		neurons: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "neurons",
			Help:      "Neurons in the network.",
		}),
		stepSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_seconds",
			Help:      "Wall time of one network update.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	r.registry.MustRegister(r.steps, r.spikes, r.links, r.neurons, r.stepSeconds)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// SetNetwork records the current network size and link count.
func (r *Recorder) SetNetwork(neurons, links int) {
	if r == nil {
		return
	}
	r.neurons.Set(float64(neurons))
	r.links.Set(float64(links))
}

// ObserveStep counts one step and its duration.
func (r *Recorder) ObserveStep(d time.Duration) {
	if r == nil {
		return
	}
	r.steps.Inc()
	r.stepSeconds.Observe(d.Seconds())
}

// AddSpikes adds n spikes for neuron type typeName.
func (r *Recorder) AddSpikes(typeName string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.spikes.WithLabelValues(typeName).Add(float64(n))
}

// Handler serves the registry in the text exposition format. A nil
// Recorder answers 404.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Server serves a Recorder on /metrics until Close.
type Server struct {
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// Serve starts listening on addr and serves r in the background.
func Serve(addr string, r *Recorder, logger *slog.Logger) (*Server, error) {
	if r == nil {
		return nil, errors.New("metrics: nil recorder")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	s := &Server{
		srv:      &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: ln,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	return s, nil
}

// Addr is the bound listen address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close shuts the server down, waiting up to the context deadline.
func (s *Server) Close(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}
