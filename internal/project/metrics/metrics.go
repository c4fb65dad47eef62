package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the project module.
type Metrics struct {
	ProjectsCreated prometheus.Counter
	DomainsAttached prometheus.Counter
}

// New creates a Metrics instance with all project module metrics registered.
func New() *Metrics {
	return &Metrics{
		ProjectsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docshost_projects_created_total",
			Help: "Total number of projects created",
		}),
		DomainsAttached: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docshost_domains_attached_total",
			Help: "Total number of custom domains attached to projects",
		}),
	}
}
