package consts

const (
	COMPONENT_PRIMARY_STORE = "primary_store"
	COMPONENT_CACHE         = "cache"
	COMPONENT_METRICS       = "metrics"
	COMPONENT_TELEMETRY     = "telemetry"
)
