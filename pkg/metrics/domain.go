package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics counts donation lifecycle activity.
type DomainMetrics struct {
	transitions *prometheus.CounterVec
	fanoutMails *prometheus.CounterVec
}

// NewDomainMetrics registers the donation metrics on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_transitions_total",
		Help: "Donation status transitions, labelled by target status.",
	}, []string{"status"})
	fanoutMails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fanout_emails_total",
		Help: "Nearby-donation notification emails, labelled by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(transitions, fanoutMails)
	return &DomainMetrics{transitions: transitions, fanoutMails: fanoutMails}
}

// IncTransition counts a committed transition into the given status.
func (d *DomainMetrics) IncTransition(status string) {
	if d == nil || d.transitions == nil {
		return
	}
	d.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncFanoutMail counts one fan-out email attempt by outcome ("sent" or "failed").
func (d *DomainMetrics) IncFanoutMail(outcome string) {
	if d == nil || d.fanoutMails == nil {
		return
	}
	d.fanoutMails.WithLabelValues(normalizeLabel(outcome)).Inc()
}
