package main

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/address"
	"github.com/treeforest/easytx/script"
	"github.com/treeforest/easytx/script/stack"
	"github.com/urfave/cli"
)

func decodeScriptCommand() cli.Command {
	return cli.Command{
		Name:      "decodescript",
		Usage:     "将脚本解析为操作码文本",
		ArgsUsage: "<hex>",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "witness, w", Usage: "按见证数据解析(每项带 CompactInt 长度头)"},
		},
		Action: func(c *cli.Context) error {
			raw, err := hexArg(c, 0, "script")
			if err != nil {
				return err
			}

			s := &script.Script{IsWitness: c.Bool("witness")}
			if err = s.SetFromBytes(raw); err != nil {
				return err
			}
			fmt.Println(s)
			fmt.Printf("operations: %d\n", s.Len())
			return nil
		},
	}
}

func classifyCommand() cli.Command {
	return cli.Command{
		Name:      "classify",
		Usage:     "识别锁定脚本和赎回脚本的类型",
		ArgsUsage: "<hex>",
		Action: func(c *cli.Context) error {
			raw, err := hexArg(c, 0, "script")
			if err != nil {
				return err
			}
			net := netParams()

			pub, err := script.ParsePubkeyScript(raw)
			if err != nil {
				return err
			}
			fmt.Printf("script:        %s\n", pub)
			fmt.Printf("pubkey script: %s\n", pub.Type())
			if addr, err := pub.Address(net); err == nil {
				fmt.Printf("address:       %s\n", addr)
			}
			if data, ok := pub.ReturnData(); ok {
				fmt.Printf("return data:   %x\n", data)
			}

			redeem, err := script.ParseRedeemScript(raw)
			if err != nil {
				return err
			}
			fmt.Printf("redeem script: %s\n", redeem.Type())
			if info, err := redeem.MultiSigInfo(); err == nil {
				fmt.Printf("multisig:      %d-of-%d\n", info.M, info.N)
				for _, key := range info.PubKeys {
					fmt.Printf("  %x\n", key)
				}
			}
			if lockTime, ok := redeem.LockTime(); ok {
				fmt.Printf("lock time:     %d\n", lockTime)
			}
			if p2pkh, err := redeem.ConvertP2WPKHToP2PKH(); err == nil {
				fmt.Printf("p2pkh form:    %s\n", p2pkh)
			}

			p2sh, err := address.EncodeP2SH(redeem.ScriptHash(), net)
			if err != nil {
				return err
			}
			p2wsh, err := address.EncodeP2WSH(redeem.WitnessScriptHash(), net)
			if err != nil {
				return err
			}
			fmt.Printf("p2sh address:  %s\n", p2sh)
			fmt.Printf("p2wsh address: %s\n", p2wsh)
			return nil
		},
	}
}

func runCommand() cli.Command {
	return cli.Command{
		Name:      "run",
		Usage:     "执行脚本(不支持签名校验操作码)",
		ArgsUsage: "<hex>",
		Flags: []cli.Flag{
			cli.StringSliceFlag{Name: "push, p", Usage: "执行前压入栈的十六进制数据，可重复"},
		},
		Action: func(c *cli.Context) error {
			raw, err := hexArg(c, 0, "script")
			if err != nil {
				return err
			}
			s, err := script.Parse(raw)
			if err != nil {
				return err
			}

			st := stack.New()
			st.StrictNumbers = conf.StrictNumbers
			for _, item := range c.StringSlice("push") {
				b, err := hex.DecodeString(item)
				if err != nil {
					return errors.Wrapf(err, "invalid stack item %s", item)
				}
				st.Push(b)
			}

			runErr := s.Run(st)
			items := st.Items()
			fmt.Printf("stack (%d items, top first):\n", len(items))
			for i := len(items) - 1; i >= 0; i-- {
				fmt.Printf("  %x\n", items[i])
			}
			if alt := st.AltItems(); len(alt) > 0 {
				fmt.Printf("alt stack: %d items\n", len(alt))
			}
			if runErr != nil {
				return runErr
			}
			fmt.Printf("result: %v\n", !st.Empty() && script.IsTrue(st.Peek()))
			return nil
		},
	}
}
