package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/kirananta/storefront/internal/constants"
)

var Tracer = otel.Tracer(constants.AppShippingService)
