package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/ccip-ens-gateway/api"
	"github.com/ruteri/ccip-ens-gateway/common"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second
	rateLimit := cCtx.String(RateLimitFlag.Name)

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		RateLimit:                rateLimit,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var SignerKeyFlag = &cli.StringFlag{
	Name:    "signer-key",
	EnvVars: []string{"SIGNER_PRIVATE_KEY"},
	Usage:   "hex-encoded secp256k1 private key attesting gateway responses",
}

var RegistryAddrFlag = &cli.StringFlag{
	Name:    "registry-address",
	EnvVars: []string{"REGISTRY_ADDRESS"},
	Usage:   "address of the L2 registry contract answering resolver reads",
}

var RpcAddrFlag = &cli.StringFlag{
	Name:    "rpc-addr",
	EnvVars: []string{"RPC_URL"},
	Value:   "http://127.0.0.1:8545",
	Usage:   "address to connect to RPC",
}

var ValiditySecondsFlag = &cli.Int64Flag{
	Name:    "validity-seconds",
	EnvVars: []string{"CCIP_VALID_FOR_IN_SECONDS"},
	Value:   60,
	Usage:   "seconds an attested response stays valid",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	EnvVars: []string{"GATEWAY_LISTEN_ADDR"},
	Value:   "127.0.0.1:4000",
	Usage:   "address to listen on for the gateway",
}

var RpcTimeoutFlag = &cli.DurationFlag{
	Name:  "rpc-timeout",
	Value: 0,
	Usage: "timeout of a single registry call, 0 for none",
}

var RateLimitFlag = &cli.StringFlag{
	Name:  "rate-limit",
	Value: "",
	Usage: "per-client rate limit such as 100-S or 1000-M, empty to disable",
}

var HealthIntervalFlag = &cli.DurationFlag{
	Name:  "health-interval",
	Value: 15 * time.Second,
	Usage: "interval of the chain health probe",
}

var DevRecordsFlag = &cli.StringFlag{
	Name:  "dev-records",
	Usage: "serve records from this JSON file with an in-memory registry instead of connecting to RPC",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to stay not ready before shutting down",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
