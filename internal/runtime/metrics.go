package runtime

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type runtimeMetricsCollection struct {
	frameCount  metric.Int64Counter
	changeCount metric.Int64Counter
}

var metrics runtimeMetricsCollection

func init() {
	const name = "cheevo/runtime"
	meter := otel.Meter(name)

	frameCount, err := meter.Int64Counter(
		"runtime/frame_count",
		metric.WithDescription("Number of frames evaluated"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create frame count metric: %w", err))
	}

	changeCount, err := meter.Int64Counter(
		"runtime/change_count",
		metric.WithDescription("Number of changes emitted, by kind"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create change count metric: %w", err))
	}

	metrics = runtimeMetricsCollection{
		frameCount:  frameCount,
		changeCount: changeCount,
	}
}
