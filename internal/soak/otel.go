package soak

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tgarena/survivor/internal/soak"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
