package cryptoutils

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

var testSender = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

func TestAttestationDigestLayout(t *testing.T) {
	request := []byte("request")
	result := []byte("result")
	expires := uint64(0x0102030405060708)

	var preimage []byte
	preimage = append(preimage, 0x19, 0x00)
	preimage = append(preimage, testSender.Bytes()...)
	preimage = append(preimage, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08)
	preimage = append(preimage, crypto.Keccak256(request)...)
	preimage = append(preimage, crypto.Keccak256(result)...)
	require.Len(t, preimage, 94)

	assert.Equal(t, crypto.Keccak256Hash(preimage), AttestationDigest(testSender, expires, request, result))
}

func TestSignAndRecover(t *testing.T) {
	key, err := LoadPrivateKey(testKeyHex)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	signer, err := NewSigner(key, 0)
	require.NoError(t, err)
	signer = signer.WithClock(func() time.Time { return now })
	assert.Equal(t, DefaultValidity, signer.Validity())

	expires, sig, err := signer.Sign([]byte("request"), []byte("result"), testSender)
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000060), expires)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	recovered, err := RecoverSigner(testSender, expires, []byte("request"), []byte("result"), sig)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), recovered)
	assert.Equal(t, recovered, signer.Address())

	// the raw 0/1 recovery id is accepted too
	raw := common.CopyBytes(sig)
	raw[64] -= 27
	recovered, err = RecoverSigner(testSender, expires, []byte("request"), []byte("result"), raw)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestRecoverSigner_TamperedFields(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := NewSigner(key, 5*time.Minute)
	require.NoError(t, err)

	expires, sig, err := signer.Sign([]byte("request"), []byte("result"), testSender)
	require.NoError(t, err)

	for name, recoverFn := range map[string]func() (common.Address, error){
		"sender": func() (common.Address, error) {
			return RecoverSigner(common.HexToAddress("0x01"), expires, []byte("request"), []byte("result"), sig)
		},
		"expires": func() (common.Address, error) {
			return RecoverSigner(testSender, expires+1, []byte("request"), []byte("result"), sig)
		},
		"request": func() (common.Address, error) {
			return RecoverSigner(testSender, expires, []byte("other"), []byte("result"), sig)
		},
		"result": func() (common.Address, error) {
			return RecoverSigner(testSender, expires, []byte("request"), []byte("other"), sig)
		},
	} {
		t.Run(name, func(t *testing.T) {
			recovered, err := recoverFn()
			if err == nil {
				assert.NotEqual(t, signer.Address(), recovered)
			}
		})
	}

	_, err = RecoverSigner(testSender, expires, []byte("request"), []byte("result"), sig[:64])
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestSign_FreshPerCall(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := NewSigner(key, time.Minute)
	require.NoError(t, err)

	tick := time.Unix(1700000000, 0)
	signer = signer.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})

	e1, s1, err := signer.Sign([]byte("req"), []byte("res"), testSender)
	require.NoError(t, err)
	e2, s2, err := signer.Sign([]byte("req"), []byte("res"), testSender)
	require.NoError(t, err)

	assert.Equal(t, e1+1, e2)
	assert.NotEqual(t, s1, s2)
}

func TestSign_ExpiredStillValid(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := NewSigner(key, time.Minute)
	require.NoError(t, err)
	signer = signer.WithClock(func() time.Time { return time.Unix(1000, 0) })

	expires, sig, err := signer.Sign([]byte("req"), []byte("res"), testSender)
	require.NoError(t, err)
	assert.Less(t, expires, uint64(time.Now().Unix()))

	recovered, err := RecoverSigner(testSender, expires, []byte("req"), []byte("res"), sig)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestLoadPrivateKey(t *testing.T) {
	withPrefix, err := LoadPrivateKey(testKeyHex)
	require.NoError(t, err)
	withoutPrefix, err := LoadPrivateKey(testKeyHex[2:] + "\n")
	require.NoError(t, err)
	assert.Equal(t, withPrefix.D, withoutPrefix.D)

	_, err = LoadPrivateKey("0x1234")
	assert.Error(t, err)

	_, err = NewSigner(nil, time.Minute)
	assert.Error(t, err)
}
