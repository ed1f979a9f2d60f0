package base58check

import (
	"encoding/hex"
	"testing"

	btcbase58 "github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/treeforest/easytx/base58"
	"github.com/treeforest/easytx/hashing"
)

func TestBase58check(t *testing.T) {
	hash160 := hashing.Hash160{}.ComputeHash([]byte("public key"))
	payload := append([]byte{0x00}, hash160...)

	address := Encode(payload)
	require.Equal(t, byte('1'), address[0])

	decoded, err := Decode(address)
	require.NoError(t, err)
	require.Equal(t, payload, decoded)

	require.Equal(t, btcbase58.CheckEncode(hash160, 0x00), address)
}

func TestGenesisAddress(t *testing.T) {
	hash, _ := hex.DecodeString("62e907b15cbf27d5425399ebf6f0fb50ebb88f18")
	require.Equal(t, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", Encode(append([]byte{0x00}, hash...)))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb")
	require.True(t, errors.Is(err, ErrInvalidChecksum))

	_, err = Decode("1A1zP1eP5QGefi2DMPTfTL5SLmv7Div0Na")
	require.True(t, errors.Is(err, base58.ErrInvalidCharacter))

	_, err = Decode("1")
	require.True(t, errors.Is(err, ErrTooShort))

	require.False(t, IsValid(""))
	require.True(t, IsValid("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))
}

func TestBase43Check(t *testing.T) {
	payload := []byte("a transaction to be shown as a qr code")
	s := EncodeWith(base58.Base43, payload)
	got, err := DecodeWith(base58.Base43, s)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	_, err = DecodeWith(base58.Base58, s)
	require.Error(t, err)
}
