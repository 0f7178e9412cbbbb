// Package metrics exposes Prometheus collectors for the API. Everything is
// registered on the default registry via promauto so handlers only need to
// call the increment helpers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	signupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clientdesk",
		Name:      "signups_total",
		Help:      "Company signups by outcome.",
	}, []string{"status"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clientdesk",
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"status"})

	invitesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clientdesk",
		Name:      "invites_total",
		Help:      "Invitations issued by outcome.",
	}, []string{"status"})

	otpVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clientdesk",
		Name:      "otp_verifications_total",
		Help:      "OTP verification attempts by outcome.",
	}, []string{"status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "clientdesk",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern, method and code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"pattern", "method", "code"})
)

const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusError    = "error"
)

func Signup(status string)          { signupsTotal.WithLabelValues(status).Inc() }
func Login(status string)           { loginsTotal.WithLabelValues(status).Inc() }
func Invite(status string)          { invitesTotal.WithLabelValues(status).Inc() }
func OTPVerification(status string) { otpVerificationsTotal.WithLabelValues(status).Inc() }

func ObserveRequest(pattern, method, code string, seconds float64) {
	httpRequestDuration.WithLabelValues(pattern, method, code).Observe(seconds)
}
