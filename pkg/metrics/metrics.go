package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores Prometheus del motor de inventario, expuestos en /metrics.
var (
	// Operations cuenta operaciones del motor por nombre y resultado
	// (ok, rejected, error).
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_operations_total",
		Help: "Operaciones del motor de inventario por operación y resultado",
	}, []string{"operation", "result"})

	// CacheLookups cuenta lecturas al espejo de caché (hit o miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_cache_lookups_total",
		Help: "Lecturas al caché de inventario por resultado",
	}, []string{"result"})

	// EventsPublished cuenta eventos de dominio publicados por tipo.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_events_published_total",
		Help: "Eventos de dominio publicados por tipo",
	}, []string{"type"})

	// SideEffectFailures cuenta fallos best-effort post-commit (cache o publish).
	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_side_effect_failures_total",
		Help: "Fallos de efectos secundarios post-commit por canal",
	}, []string{"channel"})
)

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)
