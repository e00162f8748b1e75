package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_command_executions_total",
		Help: "Total number of command executions by outcome",
	}, []string{"command", "status"})

	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bot_command_duration_seconds",
		Help:    "Duration of command handler execution",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	CommandRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_command_rejections_total",
		Help: "Total number of invocations rejected during validation",
	}, []string{"command", "reason"})

	CooldownChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_cooldown_checks_total",
		Help: "Total number of cooldown checks by result",
	}, []string{"result"})

	CooldownEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_cooldown_entries",
		Help: "Number of live cooldown entries",
	})

	DispatchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_dispatch_errors_total",
		Help: "Total number of interactions that could not be routed",
	}, []string{"kind"})

	ReplyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_reply_failures_total",
		Help: "Total number of failed reply attempts",
	}, []string{"reason"})

	PaginationSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bot_pagination_sessions",
		Help: "Number of live pagination sessions",
	})

	PaginationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_pagination_events_total",
		Help: "Total number of pagination button events",
	}, []string{"action"})

	ModalSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_modal_submissions_total",
		Help: "Total number of modal submissions by outcome",
	}, []string{"modal", "status"})

	AuditRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_audit_records_total",
		Help: "Total number of audit records by outcome",
	}, []string{"status"})
)
