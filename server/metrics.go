// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package server

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gogpu/mpvtex"
	"github.com/gogpu/mpvtex/dispatch"
)

// collector reports player and channel statistics at scrape time. Player
// counters are summed over the sessions alive at the moment of the scrape.
type collector struct {
	reg     *dispatch.Registry
	host    *Host
	clients *atomic.Int64

	sessions        *prometheus.Desc
	requests        *prometheus.Desc
	renders         *prometheus.Desc
	renderFailures  *prometheus.Desc
	framesPublished *prometheus.Desc
	skippedCycles   *prometheus.Desc
	channels        *prometheus.Desc
	marks           *prometheus.Desc
	coalesced       *prometheus.Desc
}

func newCollector(reg *dispatch.Registry, host *Host, clients *atomic.Int64) *collector {
	return &collector{
		reg:     reg,
		host:    host,
		clients: clients,

		sessions: prometheus.NewDesc("mpvtex_sessions_active",
			"Number of live player sessions.", nil, nil),
		requests: prometheus.NewDesc("mpvtex_render_requests_total",
			"Render requests raised by the engine.", nil, nil),
		renders: prometheus.NewDesc("mpvtex_renders_total",
			"Engine render calls.", nil, nil),
		renderFailures: prometheus.NewDesc("mpvtex_render_failures_total",
			"Engine render calls that failed or panicked.", nil, nil),
		framesPublished: prometheus.NewDesc("mpvtex_frames_published_total",
			"Frames swapped into the front buffer.", nil, nil),
		skippedCycles: prometheus.NewDesc("mpvtex_skipped_cycles_total",
			"Render cycles that published nothing.", nil, nil),
		channels: prometheus.NewDesc("mpvtex_channel_clients",
			"Connected websocket clients.", nil, nil),
		marks: prometheus.NewDesc("mpvtex_frame_marks_total",
			"Frame-available marks received from players.", nil, nil),
		coalesced: prometheus.NewDesc("mpvtex_frame_events_coalesced_total",
			"Frame events merged into an already pending event.", nil, nil),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sessions
	ch <- c.requests
	ch <- c.renders
	ch <- c.renderFailures
	ch <- c.framesPublished
	ch <- c.skippedCycles
	ch <- c.channels
	ch <- c.marks
	ch <- c.coalesced
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	var total mpvtex.Stats
	sessions := 0
	c.reg.Each(func(s dispatch.Session) {
		st := s.Stats()
		sessions++
		total.RenderRequests += st.RenderRequests
		total.Renders += st.Renders
		total.RenderFailures += st.RenderFailures
		total.FramesPublished += st.FramesPublished
		total.SkippedCycles += st.SkippedCycles
	})
	ch <- prometheus.MustNewConstMetric(c.sessions, prometheus.GaugeValue, float64(sessions))
	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(total.RenderRequests))
	ch <- prometheus.MustNewConstMetric(c.renders, prometheus.CounterValue, float64(total.Renders))
	ch <- prometheus.MustNewConstMetric(c.renderFailures, prometheus.CounterValue, float64(total.RenderFailures))
	ch <- prometheus.MustNewConstMetric(c.framesPublished, prometheus.CounterValue, float64(total.FramesPublished))
	ch <- prometheus.MustNewConstMetric(c.skippedCycles, prometheus.CounterValue, float64(total.SkippedCycles))
	ch <- prometheus.MustNewConstMetric(c.channels, prometheus.GaugeValue, float64(c.clients.Load()))
	ch <- prometheus.MustNewConstMetric(c.marks, prometheus.CounterValue, float64(c.host.marks.Load()))
	ch <- prometheus.MustNewConstMetric(c.coalesced, prometheus.CounterValue, float64(c.host.coalesced.Load()))
}

// newMetricsRegistry returns a registry with the player collector and the
// standard process and Go runtime collectors.
func newMetricsRegistry(c *collector) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		c,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}
