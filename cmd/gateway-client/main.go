// Package main (cmd/gateway-client) resolves ENS records through a CCIP-Read
// gateway and verifies the attestation of every answer.
//
// Example usage:
//
//	gateway-client --gateway-url=http://127.0.0.1:4000 \
//	    --sender=0x1111111111111111111111111111111111111111 \
//	    --signer=0x2222222222222222222222222222222222222222 \
//	    text chonk.eth bio
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-ens-gateway/api/clients"
	"github.com/urfave/cli/v2"
)

var flagGatewayURL = &cli.StringFlag{
	Name:  "gateway-url",
	Value: "http://127.0.0.1:4000",
	Usage: "CCIP-Read gateway to query",
}
var flagSender = &cli.StringFlag{
	Name:     "sender",
	Required: true,
	Usage:    "resolver contract address the lookup is made for",
}
var flagSigner = &cli.StringFlag{
	Name:  "signer",
	Usage: "expected gateway signer address, unchecked if empty",
}
var flagTimeout = &cli.DurationFlag{
	Name:  "timeout",
	Value: clients.DefaultTimeout,
	Usage: "request timeout",
}

func newClient(cCtx *cli.Context) (*clients.GatewayClient, error) {
	sender := cCtx.String(flagSender.Name)
	if !common.IsHexAddress(sender) {
		return nil, fmt.Errorf("invalid sender address %q", sender)
	}

	var signer common.Address
	if s := cCtx.String(flagSigner.Name); s != "" {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid signer address %q", s)
		}
		signer = common.HexToAddress(s)
	}

	return clients.NewGatewayClient(cCtx.String(flagGatewayURL.Name), common.HexToAddress(sender), signer, cCtx.Duration(flagTimeout.Name)), nil
}

func nameArg(cCtx *cli.Context, n int) (string, error) {
	if cCtx.NArg() != n {
		return "", errors.New("wrong number of arguments, see --help")
	}
	return cCtx.Args().First(), nil
}

func main() {
	app := &cli.App{
		Name:  "gateway-client",
		Usage: "Resolve ENS records through a CCIP-Read gateway",
		Flags: []cli.Flag{
			flagGatewayURL,
			flagSender,
			flagSigner,
			flagTimeout,
		},
		Commands: []*cli.Command{
			{
				Name:      "addr",
				Usage:     "resolve the address of a name, optionally for a SLIP-44 coin type",
				ArgsUsage: "<name> [coin-type]",
				Action: func(cCtx *cli.Context) error {
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}

					name := cCtx.Args().First()
					switch cCtx.NArg() {
					case 1:
						addr, err := c.Addr(name)
						if err != nil {
							return err
						}
						fmt.Println(addr.Hex())
						return nil
					case 2:
						coinType, err := strconv.ParseUint(cCtx.Args().Get(1), 10, 64)
						if err != nil {
							return fmt.Errorf("invalid coin type: %w", err)
						}
						addr, err := c.AddrCoinType(name, coinType)
						if err != nil {
							return err
						}
						fmt.Println(hexutil.Encode(addr))
						return nil
					default:
						return errors.New("wrong number of arguments, see --help")
					}
				},
			},
			{
				Name:      "text",
				Usage:     "resolve a text record of a name",
				ArgsUsage: "<name> <key>",
				Action: func(cCtx *cli.Context) error {
					name, err := nameArg(cCtx, 2)
					if err != nil {
						return err
					}
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}

					text, err := c.Text(name, cCtx.Args().Get(1))
					if err != nil {
						return err
					}
					fmt.Println(text)
					return nil
				},
			},
			{
				Name:      "contenthash",
				Usage:     "resolve the content hash of a name",
				ArgsUsage: "<name>",
				Action: func(cCtx *cli.Context) error {
					name, err := nameArg(cCtx, 1)
					if err != nil {
						return err
					}
					c, err := newClient(cCtx)
					if err != nil {
						return err
					}

					hash, err := c.Contenthash(name)
					if err != nil {
						return err
					}
					fmt.Println(hexutil.Encode(hash))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
