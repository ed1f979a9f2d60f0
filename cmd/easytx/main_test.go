package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/treeforest/easytx/config"
)

const genesisCoinbaseHex = "01000000010000000000000000000000000000000000000000000000000000000000000000ffffffff4d04ffff001d0104455468652054696d65732030332f4a616e2f32303039204368616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c6f757420666f722062616e6b73ffffffff0100f2052a01000000434104678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5fac00000000"

func run(t *testing.T, args ...string) error {
	conf = config.DefaultConfig()
	return newApp().Run(append([]string{"easytx"}, args...))
}

func TestCommands(t *testing.T) {
	tests := [][]string{
		{"decodetx", genesisCoinbaseHex},
		{"decodetx", "--dump", genesisCoinbaseHex},
		{"decodescript", "76a914000000000000000000000000000000000000000088ac"},
		{"decodescript", "--witness", "0201020100"},
		{"classify", "512103000000000000000000000000000000000000000000000000000000000000000051ae"},
		{"run", "--push", "02", "--push", "03", "93559c"},
		{"address", "decode", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		{"address", "p2pkh", "--hash", "62e907b15cbf27d5425399ebf6f0fb50ebb88f18"},
		{"--network", "testnet", "address", "p2wpkh", "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"},
		{"address", "p2wsh", "51"},
		{"varint", "515"},
		{"varint", "--decode", "fd0302"},
		{"base58", "encode", "--check", "0062e907b15cbf27d5425399ebf6f0fb50ebb88f18"},
		{"base58", "decode", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		{"bech32", "encode", "bc", "00"},
		{"bech32", "decode", "a12uel5l"},
		{"merkle", "--proof", "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
			"4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"},
	}
	for _, args := range tests {
		require.NoError(t, run(t, args...), "%v", args)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := [][]string{
		{"--network", "bogus", "varint", "1"},
		{"decodetx", "00"},
		{"decodescript", "zz"},
		{"decodescript", "63"},
		{"run", "ac"},
		{"address", "decode", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb"},
		{"varint", "--decode", "fd0100"},
		{"merkle"},
	}
	for _, args := range tests {
		require.Error(t, run(t, args...), "%v", args)
	}
}

func TestStoreCommands(t *testing.T) {
	dir := t.TempDir()
	c := config.DefaultConfig()
	c.LevelDBPath = filepath.Join(dir, "db")
	c.BloomCapacity = 100
	b, err := c.Marshal()
	require.NoError(t, err)
	path := filepath.Join(dir, "easytx.yaml")
	require.NoError(t, os.WriteFile(path, b, 0644))

	txId := "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
	require.NoError(t, run(t, "--config", path, "store", "put", genesisCoinbaseHex))
	require.NoError(t, run(t, "--config", path, "store", "get", txId))
	require.NoError(t, run(t, "--config", path, "store", "get", "--decode", txId))
	require.NoError(t, run(t, "--config", path, "store", "list"))
	require.NoError(t, run(t, "--config", path, "store", "remove", txId))
	require.Error(t, run(t, "--config", path, "store", "get", txId))
	require.Error(t, run(t, "--config", path, "store", "remove", "xyz"))
}
