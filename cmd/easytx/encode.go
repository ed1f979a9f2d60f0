package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/base58"
	"github.com/treeforest/easytx/base58check"
	"github.com/treeforest/easytx/bech32"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/treeforest/easytx/varint"
	"github.com/urfave/cli"
)

func varintCommand() cli.Command {
	return cli.Command{
		Name:      "varint",
		Usage:     "CompactInt 与 StackInt 编码",
		ArgsUsage: "<number|hex>",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "decode, d", Usage: "将参数作为 CompactInt 十六进制解码"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("decode") {
				raw, err := hexArg(c, 0, "compact int")
				if err != nil {
					return err
				}
				r := stream.NewReader(raw)
				v, err := varint.ReadCompactInt(r)
				if err != nil {
					return err
				}
				if r.Remaining() != 0 {
					return errors.Errorf("%d trailing bytes", r.Remaining())
				}
				fmt.Println(uint64(v))
				return nil
			}

			n, err := strconv.ParseUint(c.Args().First(), 10, 64)
			if err != nil {
				return errors.Wrap(err, "invalid number")
			}
			fmt.Printf("compact int: %x\n", varint.CompactInt(n).Bytes())
			if n <= 0xffffffff {
				fmt.Printf("stack int:   %x\n", varint.StackInt(n).Bytes())
			}
			return nil
		},
	}
}

func base58Command() cli.Command {
	flags := []cli.Flag{
		cli.BoolFlag{Name: "check", Usage: "带4字节校验和"},
		cli.BoolFlag{Name: "base43", Usage: "使用 Base43 字母表"},
	}
	encoder := func(c *cli.Context) *base58.Encoder {
		if c.Bool("base43") {
			return base58.Base43
		}
		return base58.Base58
	}
	return cli.Command{
		Name:  "base58",
		Usage: "Base58 / Base58Check 编解码",
		Subcommands: []cli.Command{
			{
				Name:      "encode",
				ArgsUsage: "<hex>",
				Flags:     flags,
				Action: func(c *cli.Context) error {
					raw, err := hexArg(c, 0, "data")
					if err != nil {
						return err
					}
					if c.Bool("check") {
						fmt.Println(base58check.EncodeWith(encoder(c), raw))
					} else {
						fmt.Println(encoder(c).Encode(raw))
					}
					return nil
				},
			},
			{
				Name:      "decode",
				ArgsUsage: "<string>",
				Flags:     flags,
				Action: func(c *cli.Context) error {
					var (
						raw []byte
						err error
					)
					if c.Bool("check") {
						raw, err = base58check.DecodeWith(encoder(c), c.Args().First())
					} else {
						raw, err = encoder(c).Decode(c.Args().First())
					}
					if err != nil {
						return err
					}
					fmt.Println(hex.EncodeToString(raw))
					return nil
				},
			},
		},
	}
}

func bech32Command() cli.Command {
	return cli.Command{
		Name:  "bech32",
		Usage: "Bech32 编解码",
		Subcommands: []cli.Command{
			{
				Name:      "encode",
				ArgsUsage: "<hrp> <hex>",
				Action: func(c *cli.Context) error {
					raw, err := hexArg(c, 1, "data")
					if err != nil {
						return err
					}
					data, err := bech32.ConvertBits(raw, 8, 5, true)
					if err != nil {
						return err
					}
					s, err := bech32.Encode(c.Args().First(), data)
					if err != nil {
						return err
					}
					fmt.Println(s)
					return nil
				},
			},
			{
				Name:      "decode",
				ArgsUsage: "<string>",
				Action: func(c *cli.Context) error {
					hrp, data, err := bech32.Decode(c.Args().First())
					if err != nil {
						return err
					}
					fmt.Printf("hrp:  %s\n", hrp)
					fmt.Printf("data: %x (5-bit groups)\n", data)
					if raw, err := bech32.ConvertBits(data, 5, 8, false); err == nil {
						fmt.Printf("data: %x (bytes)\n", raw)
					}
					return nil
				},
			},
		},
	}
}
