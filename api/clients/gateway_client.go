package clients

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-ens-gateway/api"
	"github.com/ruteri/ccip-ens-gateway/ccip"
	"github.com/ruteri/ccip-ens-gateway/cryptoutils"
	"github.com/ruteri/ccip-ens-gateway/registry"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/timeout"
)

// DefaultTimeout bounds a gateway request when no timeout is given.
const DefaultTimeout = 30 * time.Second

var (
	// ErrUnexpectedSigner is returned when a response is attested by a key
	// other than the expected gateway signer.
	ErrUnexpectedSigner = errors.New("response signed by unexpected key")

	// ErrExpired is returned for responses whose validity has passed.
	ErrExpired = errors.New("response expired")
)

// GatewayError is a non-2xx reply from the gateway.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// GatewayClient performs CCIP-Read lookups against a gateway the way a
// resolving client does after an OffchainLookup revert, and verifies the
// attestation of every response.
type GatewayClient struct {
	cli    *gentleman.Client
	sender common.Address
	signer common.Address
	now    func() time.Time
}

// NewGatewayClient creates a client for the gateway at gatewayURL.
//
// Parameters:
//   - gatewayURL: The gateway base URL (e.g., "http://127.0.0.1:4000")
//   - sender: The resolver contract address the lookups are made for
//   - signer: The expected gateway signer; the zero address skips the check
//   - requestTimeout: Request timeout duration (optional, default DefaultTimeout)
func NewGatewayClient(gatewayURL string, sender common.Address, signer common.Address, requestTimeout ...time.Duration) *GatewayClient {
	clientTimeout := DefaultTimeout
	if len(requestTimeout) > 0 && requestTimeout[0] > 0 {
		clientTimeout = requestTimeout[0]
	}

	cli := gentleman.New().URL(gatewayURL)
	cli.Use(timeout.Request(clientTimeout))

	return &GatewayClient{
		cli:    cli,
		sender: sender,
		signer: signer,
		now:    time.Now,
	}
}

// Lookup posts resolve calldata to the gateway and returns the verified
// attested response.
func (c *GatewayClient) Lookup(data []byte) (*ccip.AttestedResponse, error) {
	req := c.cli.Post()
	req.JSON(api.GatewayRequest{
		Sender: c.sender.Hex(),
		Data:   hexutil.Encode(data),
	})

	resp, err := req.Send()
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Close()

	if !resp.Ok {
		var errResp api.ErrorResponse
		if err := resp.JSON(&errResp); err != nil || errResp.Message == "" {
			errResp.Message = resp.String()
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	var body api.GatewayResponse
	if err := resp.JSON(&body); err != nil {
		return nil, fmt.Errorf("could not parse gateway response: %w", err)
	}

	envelope, err := hexutil.Decode(body.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid response data: %w", err)
	}

	attested, err := ccip.DecodeEnvelope(envelope)
	if err != nil {
		return nil, err
	}

	if err := c.verify(data, attested); err != nil {
		return nil, err
	}
	return attested, nil
}

func (c *GatewayClient) verify(request []byte, attested *ccip.AttestedResponse) error {
	if attested.Expires < uint64(c.now().Unix()) {
		return fmt.Errorf("%w at %d", ErrExpired, attested.Expires)
	}

	recovered, err := cryptoutils.RecoverSigner(c.sender, attested.Expires, request, attested.Result, attested.Signature)
	if err != nil {
		return err
	}
	if c.signer != (common.Address{}) && recovered != c.signer {
		return fmt.Errorf("%w: got %s, want %s", ErrUnexpectedSigner, recovered.Hex(), c.signer.Hex())
	}
	return nil
}

// Resolve looks up a resolver function for name and returns the decoded value.
func (c *GatewayClient) Resolve(name string, kind registry.FunctionKind, params ...interface{}) (interface{}, error) {
	f := registry.FunctionFor(kind)

	inner, err := f.EncodeCall(ccip.Namehash(name), params...)
	if err != nil {
		return nil, err
	}
	dnsName, err := ccip.EncodeDNSName(name)
	if err != nil {
		return nil, err
	}
	data, err := ccip.EncodeResolveCall(dnsName, inner)
	if err != nil {
		return nil, err
	}

	attested, err := c.Lookup(data)
	if err != nil {
		return nil, err
	}

	value, err := f.DecodeResult(attested.Result)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s result: %w", f, err)
	}
	return value, nil
}

// Addr resolves the Ethereum address of name.
func (c *GatewayClient) Addr(name string) (common.Address, error) {
	value, err := c.Resolve(name, registry.AddrFunc)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected addr result type %T", value)
	}
	return addr, nil
}

// AddrCoinType resolves the address of name for a SLIP-44 coin type.
func (c *GatewayClient) AddrCoinType(name string, coinType uint64) ([]byte, error) {
	value, err := c.Resolve(name, registry.AddrCoinTypeFunc, new(big.Int).SetUint64(coinType))
	if err != nil {
		return nil, err
	}
	addr, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected addr result type %T", value)
	}
	return addr, nil
}

// Text resolves the text record key of name.
func (c *GatewayClient) Text(name string, key string) (string, error) {
	value, err := c.Resolve(name, registry.TextFunc, key)
	if err != nil {
		return "", err
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected text result type %T", value)
	}
	return text, nil
}

// Contenthash resolves the content hash of name.
func (c *GatewayClient) Contenthash(name string) ([]byte, error) {
	value, err := c.Resolve(name, registry.ContenthashFunc)
	if err != nil {
		return nil, err
	}
	hash, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected contenthash result type %T", value)
	}
	return hash, nil
}
