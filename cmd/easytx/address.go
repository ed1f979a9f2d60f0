package main

import (
	"fmt"

	"github.com/treeforest/easytx/address"
	"github.com/treeforest/easytx/config"
	"github.com/treeforest/easytx/hashing"
	"github.com/treeforest/easytx/script"
	"github.com/urfave/cli"
)

func addressCommand() cli.Command {
	hashFlag := cli.BoolFlag{Name: "hash", Usage: "参数已经是哈希值"}
	return cli.Command{
		Name:  "address",
		Usage: "地址的解析与生成",
		Subcommands: []cli.Command{
			{
				Name:      "decode",
				Usage:     "解析地址(尝试所有网络)",
				ArgsUsage: "<address>",
				Action: func(c *cli.Context) error {
					addr, err := address.Decode(c.Args().First())
					if err != nil {
						return err
					}
					pub := script.NewPubkeyScript()
					if err = pub.SetToAddressFor(addr.String(), addr.Net); err != nil {
						return err
					}
					fmt.Printf("type:          %s\n", addr.Type)
					fmt.Printf("network:       %s\n", addr.Net)
					fmt.Printf("hash:          %x\n", addr.Hash)
					fmt.Printf("pubkey script: %s\n", pub.Hex())
					return nil
				},
			},
			encodeAddressCommand("p2pkh", "<pubkey|hash160>", hashing.Hash160{}, address.EncodeP2PKH, hashFlag),
			encodeAddressCommand("p2sh", "<redeem script|hash160>", hashing.Hash160{}, address.EncodeP2SH, hashFlag),
			encodeAddressCommand("p2wpkh", "<pubkey|hash160>", hashing.Hash160{}, address.EncodeP2WPKH, hashFlag),
			encodeAddressCommand("p2wsh", "<witness script|sha256>", hashing.Sha256{}, address.EncodeP2WSH, hashFlag),
		},
	}
}

type encodeFunc func(hash []byte, net *config.NetParams) (string, error)

// encodeAddressCommand 参数默认是公钥或脚本，带 --hash 时直接作为哈希
func encodeAddressCommand(name, argsUsage string, hasher hashing.Hasher, encode encodeFunc, hashFlag cli.Flag) cli.Command {
	return cli.Command{
		Name:      name,
		Usage:     "生成 " + name + " 地址",
		ArgsUsage: argsUsage,
		Flags:     []cli.Flag{hashFlag},
		Action: func(c *cli.Context) error {
			data, err := hexArg(c, 0, "data")
			if err != nil {
				return err
			}
			if !c.Bool("hash") {
				data = hasher.ComputeHash(data)
			}
			addr, err := encode(data, netParams())
			if err != nil {
				return err
			}
			fmt.Println(addr)
			return nil
		},
	}
}
