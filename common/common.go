package common

var (
	// PackageName is the default service tag.
	PackageName = "ccip-ens-gateway"

	// MetricsNamespace prefixes every collector. Prometheus names do not allow dashes.
	MetricsNamespace = "ccip_gateway"

	// Version is overridden at build time with -ldflags "-X ...common.Version=...".
	Version = "dev"
)
