package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "layerguard_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "layerguard_graph_nodes_total",
		Help: "Number of files in the most recent import graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "layerguard_graph_edges_total",
		Help: "Number of resolved import edges in the most recent import graph.",
	})

	GraphCycles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "layerguard_graph_cycles_total",
		Help: "Number of distinct import cycles in the most recent import graph.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "layerguard_analysis_seconds",
		Help:    "Time spent in each phase of a check.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	FilesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "layerguard_files_analyzed_total",
		Help: "Total number of source files analyzed.",
	})

	FileErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "layerguard_file_errors_total",
		Help: "Total number of files skipped because they could not be read or parsed.",
	})

	ViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layerguard_violations_total",
		Help: "Total number of violations reported, by rule.",
	}, []string{"rule"})

	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layerguard_checks_total",
		Help: "Total number of completed checks, by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "layerguard_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	MCPToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layerguard_mcp_tool_calls_total",
		Help: "Total number of MCP tool invocations, by tool and outcome.",
	}, []string{"tool", "outcome"})
)
