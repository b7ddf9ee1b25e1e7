package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentExecuteTotal counts payment engine invocations by outcome.
	PaymentExecuteTotal *prometheus.CounterVec
	// PaymentGatewayDuration records the latency of outbound gateway calls in milliseconds.
	PaymentGatewayDuration *prometheus.HistogramVec
	// CheckoutTotal counts checkout attempts by provider and outcome.
	CheckoutTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentExecuteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_execute_total",
			Help:      "Count of payment engine executions by outcome.",
		}, []string{"provider", "result"})
		PaymentGatewayDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_gateway_duration_ms",
			Help:      "Latency of outbound payment gateway calls in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"provider"})
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by provider and outcome.",
		}, []string{"provider", "result"})

		registerCounterVec(reg, &PaymentExecuteTotal)
		registerHistogramVec(reg, &PaymentGatewayDuration)
		registerCounterVec(reg, &CheckoutTotal)
	})
}

func registerCounterVec(reg prometheus.Registerer, vec **prometheus.CounterVec) {
	if err := reg.Register(*vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				*vec = existing
				return
			}
		}
		panic(err)
	}
}

func registerHistogramVec(reg prometheus.Registerer, vec **prometheus.HistogramVec) {
	if err := reg.Register(*vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				*vec = existing
				return
			}
		}
		panic(err)
	}
}
