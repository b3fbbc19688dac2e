package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace:   "paradox_mgsp",
	Subsystem:   "monitor",
	Name:        "events_total",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"group"})

var lastEventGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace:   "paradox_mgsp",
	Subsystem:   "monitor",
	Name:        "last_event_timestamp_seconds",
	Help:        "",
	ConstLabels: map[string]string{},
})

var panelInfoGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "paradox_mgsp",
	Subsystem:   "panel",
	Name:        "info",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"product", "firmware", "panel"})
