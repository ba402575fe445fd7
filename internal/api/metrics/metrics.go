// Package metrics defines and registers all custom Prometheus metrics for the
// rental marketplace API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register themselves with the default Prometheus registry at init
// time via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rental"

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts bookings that were confirmed and paid.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings confirmed with a captured payment.",
	},
)

// BookingConflictsTotal counts booking requests rejected because the requested
// date range overlapped an existing confirmed or active booking.
var BookingConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_conflicts_total",
		Help:      "Total number of booking requests rejected by the date conflict check.",
	},
)

// BookingsCancelledTotal counts cancellations, refunded or not.
var BookingsCancelledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_cancelled_total",
		Help:      "Total number of bookings moved to the cancelled state.",
	},
)

// PaymentFailuresTotal counts charges declined or errored by the processor.
var PaymentFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_failures_total",
		Help:      "Total number of payment captures that failed, leaving no booking.",
	},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// RealtimeConnections tracks the number of websocket clients currently
// connected to this instance.
var RealtimeConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Current number of connected realtime clients.",
	},
)
