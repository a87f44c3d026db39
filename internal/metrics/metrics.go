package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for CPFValidations.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
)

// Rejection reasons for RegistrationsRejected.
const (
	ReasonMalformedBody = "malformed_body"
	ReasonInvalidCPF    = "invalid_cpf"
	ReasonValidation    = "validation"
)

// Metrics provides observability for CPF checks and author registrations.
type Metrics struct {
	CPFValidations        *prometheus.CounterVec
	RegistrationsCreated  prometheus.Counter
	RegistrationsRejected *prometheus.CounterVec
}

// New registers all metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CPFValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compuse_cpf_validations_total",
			Help: "Total number of CPF checks by result",
		}, []string{"result"}),
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "compuse_author_registrations_created_total",
			Help: "Total number of author registrations stored",
		}),
		RegistrationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compuse_author_registrations_rejected_total",
			Help: "Total number of author registrations refused before storage",
		}, []string{"reason"}),
	}
}

// ObserveCPF records the outcome of one CPF check.
func (m *Metrics) ObserveCPF(valid bool) {
	result := ResultInvalid
	if valid {
		result = ResultValid
	}
	m.CPFValidations.WithLabelValues(result).Inc()
}

// IncrementRegistrationCreated records a stored registration.
func (m *Metrics) IncrementRegistrationCreated() {
	m.RegistrationsCreated.Inc()
}

// IncrementRegistrationRejected records a registration refused for reason.
func (m *Metrics) IncrementRegistrationRejected(reason string) {
	m.RegistrationsRejected.WithLabelValues(reason).Inc()
}
