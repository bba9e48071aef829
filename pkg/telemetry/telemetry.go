package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine-level counters exposed on the debug server's /metrics endpoint.
var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatcore_ops_total",
		Help: "Mutation-engine operations applied, by operation.",
	}, []string{"op"})

	rejectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatcore_rejects_total",
		Help: "Operations rejected by a precondition, by operation and reason.",
	}, []string{"op", "reason"})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatcore_messages_total",
		Help: "Messages appended to chat logs, by direction.",
	}, []string{"direction"})

	typingEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatcore_typing_events_total",
		Help: "Simulated typing markers started.",
	})

	chatsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatcore_chats",
		Help: "Chats currently in the store.",
	})
)

func IncOp(op string) { opsTotal.WithLabelValues(op).Inc() }

func IncReject(op, reason string) { rejectsTotal.WithLabelValues(op, reason).Inc() }

func IncMessage(direction string) { messagesTotal.WithLabelValues(direction).Inc() }

func IncTypingEvent() { typingEventsTotal.Inc() }

func SetChats(n int) { chatsGauge.Set(float64(n)) }
