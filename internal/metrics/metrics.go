package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/terraincognita07/travelgc/internal/services"
)

type Recorder struct {
	registry    *prometheus.Registry
	slideViews  *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	recorder := &Recorder{
		registry: registry,
		slideViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelgc",
			Name:      "slide_views_total",
			Help:      "Deck pages rendered, by slide key.",
		}, []string{"slide"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelgc",
			Name:      "registration_submissions_total",
			Help:      "Registration submissions, by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		recorder.slideViews,
		recorder.submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return recorder
}

func (recorder *Recorder) Registry() *prometheus.Registry {
	return recorder.registry
}

func (recorder *Recorder) RecordSlideView(slideKey string) {
	recorder.slideViews.WithLabelValues(slideKey).Inc()
}

func (recorder *Recorder) RecordSubmission(outcome services.SubmissionOutcome) {
	recorder.submissions.WithLabelValues(string(outcome)).Inc()
}
