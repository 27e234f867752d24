package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/ruteri/ccip-ens-gateway/api"
	"github.com/ruteri/ccip-ens-gateway/ccip"
	"github.com/ruteri/ccip-ens-gateway/interfaces"
	"github.com/ruteri/ccip-ens-gateway/metrics"
	"github.com/ruteri/ccip-ens-gateway/registry"
)

const (
	// maxBodySize is the maximum allowed request body size (1MB).
	maxBodySize = 1024 * 1024

	// MissingPayloadMessage is returned when a request has no data field.
	MissingPayloadMessage = "Missing msg.data"

	// MethodNotAllowedMessage is returned for any method other than POST and OPTIONS.
	MethodNotAllowedMessage = "Only POST requests are allowed"

	unsupportedLabel = "unsupported"
)

// Handler serves CCIP-Read lookups for ENSIP-10 resolve(bytes,bytes) calls.
// It holds no per-request state and is safe for concurrent use.
type Handler struct {
	resolver interfaces.Resolver
	signer   interfaces.AttestationSigner
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewHandler creates a gateway handler.
//
// Parameters:
//   - resolver: performs the inner resolver read against the L2 registry
//   - signer: attests every response
//   - log: structured logger for operational insights
func NewHandler(resolver interfaces.Resolver, signer interfaces.AttestationSigner, log *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		signer:   signer,
		log:      log,
	}
}

// WithMetrics returns a copy of the handler recording to m.
func (h *Handler) WithMetrics(m *metrics.Metrics) *Handler {
	return &Handler{
		resolver: h.resolver,
		signer:   h.signer,
		metrics:  m,
		log:      h.log,
	}
}

// RegisterRoutes mounts the gateway on the router root. The single path is
// discriminated by method:
//   - POST / - resolve a CCIP-Read request
//   - OPTIONS / - CORS preflight
//
// Every other method is answered with 405.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Handle("/", h)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		h.HandleResolve(w, r)
	default:
		h.writeError(w, ccip.NewError(ccip.MethodNotAllowed, MethodNotAllowedMessage, nil))
	}
}

// HandleResolve processes a CCIP-Read lookup.
//
// Request body: JSON api.GatewayRequest
//
// Response: JSON api.GatewayResponse on success, api.ErrorResponse otherwise.
//
// Status codes:
//   - 200 OK: attested response produced
//   - 400 Bad Request: malformed request, name or calldata, or unsupported function
//   - 500 Internal Server Error: registry call or signing failed
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, function, err := h.parseRequest(w, r)
	if err != nil {
		h.metrics.ObserveRequest(function, ccip.KindOf(err).String(), time.Since(start))
		h.writeError(w, err)
		return
	}

	resp, err := h.Process(r.Context(), req)
	if err != nil {
		h.metrics.ObserveRequest(function, ccip.KindOf(err).String(), time.Since(start))
		h.writeError(w, err)
		return
	}

	envelope, err := resp.Encode()
	if err != nil {
		h.metrics.ObserveRequest(function, ccip.KindOf(err).String(), time.Since(start))
		h.writeError(w, err)
		return
	}

	h.metrics.ObserveRequest(function, metrics.OutcomeOK, time.Since(start))
	h.writeJSON(w, http.StatusOK, api.GatewayResponse{Data: hexutil.Encode(envelope)})
}

// parseRequest reads and validates the request body. It also returns the
// metrics label of the requested resolver function.
func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) (ccip.Request, string, error) {
	var body api.GatewayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body); err != nil {
		return ccip.Request{}, unsupportedLabel, ccip.NewError(ccip.MalformedEnvelope, "Invalid request body", err)
	}

	if body.Data == "" {
		return ccip.Request{}, unsupportedLabel, ccip.NewError(ccip.MissingPayload, MissingPayloadMessage, nil)
	}

	data, err := hexutil.Decode(body.Data)
	if err != nil {
		return ccip.Request{}, unsupportedLabel, ccip.NewError(ccip.MalformedEnvelope, "Invalid msg.data", err)
	}

	if !common.IsHexAddress(body.Sender) {
		return ccip.Request{}, functionLabel(data), ccip.NewError(ccip.MalformedEnvelope, "Invalid sender", nil)
	}

	return ccip.Request{Sender: common.HexToAddress(body.Sender), Data: data}, functionLabel(data), nil
}

// Process runs the request pipeline: decode the resolve call, take the
// first label of the name, resolve the inner call for its labelhash and
// attest the result.
func (h *Handler) Process(ctx context.Context, req ccip.Request) (*ccip.AttestedResponse, error) {
	name, inner, err := ccip.DecodeResolveCall(req.Data)
	if err != nil {
		return nil, err
	}

	label, _, err := ccip.DecodeDNSName(name)
	if err != nil {
		return nil, err
	}
	labelhash := interfaces.NewLabelhash(label)

	// TODO: scope labels to configured parent names; records are currently shared by every parent.
	start := time.Now()
	result, err := h.resolver.Resolve(ctx, labelhash, inner)
	h.metrics.ObserveUpstream(functionLabel(req.Data), time.Since(start))
	if err != nil {
		return nil, err
	}

	expires, signature, err := h.signer.Sign(req.Data, result, req.Sender)
	if err != nil {
		return nil, ccip.NewError(ccip.InternalFault, ccip.GenericFailureMessage, err)
	}

	h.log.Debug("Resolved CCIP-Read request",
		"name", ccip.PresentDNSName(name),
		"labelhash", labelhash.Hex(),
		"sender", req.Sender.Hex(),
		"expires", expires)

	return &ccip.AttestedResponse{
		Result:    result,
		Expires:   expires,
		Signature: signature,
	}, nil
}

// functionLabel names the resolver function requested by a resolve call
// without failing. Unknown and undecodable calls share a single label.
func functionLabel(data []byte) string {
	_, inner, err := ccip.DecodeResolveCall(data)
	if err != nil || len(inner) < 4 {
		return unsupportedLabel
	}
	f, err := registry.LookupSelector([4]byte(inner[:4]))
	if err != nil {
		return unsupportedLabel
	}
	return f.Signature
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := ccip.KindOf(err)
	status := kind.StatusCode()

	if status >= http.StatusInternalServerError {
		h.log.Error("Failed to process request", "kind", kind.String(), "err", err)
	} else {
		h.log.Warn("Rejected request", "kind", kind.String(), "err", err)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		status = http.StatusRequestEntityTooLarge
	}

	h.writeJSON(w, status, api.ErrorResponse{Message: ccip.PublicMessage(err)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}
