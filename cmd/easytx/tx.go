package main

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/treeforest/easytx"
	"github.com/treeforest/easytx/merkle"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/urfave/cli"
)

func decodeTxCommand() cli.Command {
	return cli.Command{
		Name:      "decodetx",
		Usage:     "解析原始交易",
		ArgsUsage: "<hex>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "file, f", Usage: "从文件读取十六进制交易"},
			cli.BoolFlag{Name: "dump", Usage: "输出完整的对象结构"},
		},
		Action: func(c *cli.Context) error {
			raw, err := hexInput(c, "transaction")
			if err != nil {
				return err
			}
			tx, err := parseTx(raw)
			if err != nil {
				return err
			}

			if c.Bool("dump") {
				spew.Dump(tx)
				return nil
			}

			fmt.Print(tx)
			net := netParams()
			for i, out := range tx.TxOutList {
				if addr, err := out.PubScript.Address(net); err == nil {
					fmt.Printf("  Output %d address: %s\n", i, addr)
				}
			}
			return nil
		},
	}
}

// parseTx 按配置的最大交易大小解析，不允许多余字节
func parseTx(raw []byte) (*easytx.Transaction, error) {
	tx := new(easytx.Transaction)
	r := stream.NewReader(raw)
	if err := tx.DeserializeWithLimit(r, conf.MaxTxSize); err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, errors.Errorf("%d trailing bytes after transaction", r.Remaining())
	}
	return tx, nil
}

func merkleCommand() cli.Command {
	return cli.Command{
		Name:      "merkle",
		Usage:     "按顺序计算交易哈希的默克尔根",
		ArgsUsage: "<txid>...",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "proof", Usage: "输出该交易的默克尔路径"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("missing txid")
			}
			hashes := make([]chainhash.Hash, 0, c.NArg())
			for _, s := range c.Args() {
				h, err := chainhash.NewHashFromStr(s)
				if err != nil {
					return errors.Wrapf(err, "invalid txid %s", s)
				}
				hashes = append(hashes, *h)
			}

			tree := merkle.New()
			root, err := tree.BuildWithHashes(hashes)
			if err != nil {
				return err
			}
			fmt.Println(root)

			if target := c.String("proof"); target != "" {
				h, err := chainhash.NewHashFromStr(target)
				if err != nil {
					return errors.Wrapf(err, "invalid txid %s", target)
				}
				proof, err := tree.GenerateMerkleProof(*h)
				if err != nil {
					return err
				}
				fmt.Printf("index: %d\n", proof.Index)
				for _, b := range proof.Branch {
					fmt.Println(b)
				}
				fmt.Printf("verified: %v\n", tree.VerifyMerkleProof(*h, proof))
			}
			return nil
		},
	}
}
