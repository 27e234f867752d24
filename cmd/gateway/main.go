package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ruteri/ccip-ens-gateway/api/gateway"
	"github.com/ruteri/ccip-ens-gateway/cmd/flags"
	"github.com/ruteri/ccip-ens-gateway/common"
	"github.com/ruteri/ccip-ens-gateway/cryptoutils"
	"github.com/ruteri/ccip-ens-gateway/health"
	"github.com/ruteri/ccip-ens-gateway/httpserver"
	"github.com/ruteri/ccip-ens-gateway/interfaces"
	"github.com/ruteri/ccip-ens-gateway/registry"
	"github.com/urfave/cli/v2"
)

var cliFlags = append([]cli.Flag{
	flags.SignerKeyFlag,
	flags.RegistryAddrFlag,
	flags.RpcAddrFlag,
	flags.ValiditySecondsFlag,
	flags.ListenAddrFlag,
	flags.RpcTimeoutFlag,
	flags.RateLimitFlag,
	flags.HealthIntervalFlag,
	flags.DevRecordsFlag,
	flags.LogServiceFlagFn(common.PackageName),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "ccip-gateway",
		Usage: "Serve attested CCIP-Read answers for ENS names from an L2 registry",
		Flags: cliFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			devRecords := cCtx.String(flags.DevRecordsFlag.Name)
			validity := time.Duration(cCtx.Int64(flags.ValiditySecondsFlag.Name)) * time.Second

			signer, err := loadSigner(cCtx.String(flags.SignerKeyFlag.Name), validity, devRecords != "", logger)
			if err != nil {
				logger.Error("Failed to load signer key", "err", err)
				return err
			}
			logger.Info("Attesting responses", "signer", signer.Address().Hex(), "validity", signer.Validity())

			registryAddr, err := parseRegistryAddress(cCtx.String(flags.RegistryAddrFlag.Name), devRecords != "")
			if err != nil {
				logger.Error("Invalid registry address", "err", err)
				return err
			}

			var caller interfaces.ChainCaller
			var probe *health.Probe

			if devRecords != "" {
				logger.Warn("Serving records from file with an in-memory registry", "file", devRecords)
				memory, err := loadDevRegistry(devRecords, registryAddr)
				if err != nil {
					logger.Error("Failed to load records", "err", err)
					return err
				}
				caller = memory
			} else {
				rpcAddress := cCtx.String(flags.RpcAddrFlag.Name)
				logger.Info("Connecting to Ethereum RPC", "address", rpcAddress)
				ethClient, err := ethclient.Dial(rpcAddress)
				if err != nil {
					logger.Error("Failed to dial RPC", "err", err)
					return err
				}
				defer ethClient.Close()

				caller = ethClient
				probe = health.NewProbe(ethClient, cCtx.Duration(flags.HealthIntervalFlag.Name), logger)
			}

			resolver := registry.NewInvoker(caller, registryAddr.Address()).
				WithTimeout(cCtx.Duration(flags.RpcTimeoutFlag.Name))
			handler := gateway.NewHandler(resolver, signer, logger)

			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))
			server, err := httpserver.New(cfg, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			if probe != nil {
				probe.WithMetrics(server.Metrics()).OnStatus(server.SetChainHealthy)
				if err := probe.Start(); err != nil {
					logger.Error("Failed to start chain health probe", "err", err)
					return err
				}
				defer probe.Stop()
			}

			logger.Info("Starting gateway", "registry", registryAddr.Address().Hex())
			server.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Gateway is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Gateway shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadSigner parses the signing key. In development mode a missing key is
// replaced by an ephemeral one.
func loadSigner(keyHex string, validity time.Duration, dev bool, logger *slog.Logger) (*cryptoutils.Signer, error) {
	if keyHex == "" {
		if !dev {
			return nil, fmt.Errorf("--%s is required", flags.SignerKeyFlag.Name)
		}
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		logger.Warn("No signer key configured, using an ephemeral key")
		return cryptoutils.NewSigner(key, validity)
	}

	key, err := cryptoutils.LoadPrivateKey(keyHex)
	if err != nil {
		return nil, err
	}
	return cryptoutils.NewSigner(key, validity)
}

func parseRegistryAddress(addr string, dev bool) (interfaces.ContractAddress, error) {
	if addr == "" {
		if dev {
			return interfaces.ContractAddress{}, nil
		}
		return interfaces.ContractAddress{}, errors.New("--" + flags.RegistryAddrFlag.Name + " is required")
	}
	return interfaces.NewContractAddressFromHex(addr)
}

func loadDevRegistry(path string, addr interfaces.ContractAddress) (*registry.MemoryRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	memory := registry.NewMemoryRegistry(addr.Address())
	if err := memory.LoadRecords(f); err != nil {
		return nil, err
	}
	return memory, nil
}
