package ccip

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// DecodeDNSName reads the first label of a DNS wire-format name and returns
// it together with the bytes that follow it. A zero-length first label (the
// root name) yields an empty label.
func DecodeDNSName(name []byte) (string, []byte, error) {
	if len(name) == 0 {
		return "", nil, NewError(MalformedName, "Invalid DNS-encoded name", fmt.Errorf("empty name"))
	}

	labelLen := int(name[0])
	if labelLen > len(name)-1 {
		return "", nil, NewError(MalformedName, "Invalid DNS-encoded name",
			fmt.Errorf("label length %d exceeds remaining %d bytes", labelLen, len(name)-1))
	}

	return string(name[1 : 1+labelLen]), name[1+labelLen:], nil
}

// EncodeDNSName packs a dotted name into DNS wire format, including the
// terminating zero-length label.
func EncodeDNSName(name string) ([]byte, error) {
	fqdn := dns.Fqdn(name)
	buf := make([]byte, len(fqdn)+1)
	off, err := dns.PackDomainName(fqdn, buf, 0, nil, false)
	if err != nil {
		return nil, fmt.Errorf("invalid name %q: %w", name, err)
	}
	return buf[:off], nil
}

// PresentDNSName renders a wire-format name in dotted form for logging.
// Names that do not parse are rendered as hex.
func PresentDNSName(name []byte) string {
	presented, _, err := dns.UnpackDomainName(name, 0)
	if err != nil {
		return "0x" + hex.EncodeToString(name)
	}
	if presented == "." {
		return presented
	}
	return strings.TrimSuffix(presented, ".")
}
