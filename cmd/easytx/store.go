package main

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/dao"
	"github.com/urfave/cli"
)

func storeCommand() cli.Command {
	return cli.Command{
		Name:  "store",
		Usage: "本地交易存储",
		Subcommands: []cli.Command{
			{
				Name:      "put",
				Usage:     "校验并保存原始交易",
				ArgsUsage: "<hex>",
				Flags:     []cli.Flag{cli.StringFlag{Name: "file, f", Usage: "从文件读取十六进制交易"}},
				Action: withStore(func(c *cli.Context, o *dao.DAO) error {
					raw, err := hexInput(c, "transaction")
					if err != nil {
						return err
					}
					tx, err := parseTx(raw)
					if err != nil {
						return err
					}
					if err = o.PutTx(tx.Hash(), tx.Bytes()); err != nil {
						return err
					}
					fmt.Println(tx.TxId())
					return nil
				}),
			},
			{
				Name:      "get",
				ArgsUsage: "<txid>",
				Flags:     []cli.Flag{cli.BoolFlag{Name: "decode, d", Usage: "输出解析后的交易"}},
				Action: withStore(func(c *cli.Context, o *dao.DAO) error {
					hash, err := txIdArg(c)
					if err != nil {
						return err
					}
					raw, err := o.GetTx(hash)
					if err != nil {
						return err
					}
					if !c.Bool("decode") {
						fmt.Printf("%x\n", raw)
						return nil
					}
					tx, err := parseTx(raw)
					if err != nil {
						return err
					}
					fmt.Print(tx)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "列出所有已保存的交易",
				Action: withStore(func(c *cli.Context, o *dao.DAO) error {
					return o.Traverse(func(hash chainhash.Hash, raw []byte) bool {
						fmt.Printf("%s %d bytes\n", hash, len(raw))
						return true
					})
				}),
			},
			{
				Name:      "remove",
				ArgsUsage: "<txid>",
				Action: withStore(func(c *cli.Context, o *dao.DAO) error {
					hash, err := txIdArg(c)
					if err != nil {
						return err
					}
					return o.RemoveTx(hash)
				}),
			},
		},
	}
}

// withStore 打开配置中的交易库，命令结束后关闭
func withStore(fn func(c *cli.Context, o *dao.DAO) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		o, err := dao.New(conf.LevelDBPath, conf.BloomCapacity, conf.BloomFalsePositive)
		if err != nil {
			return err
		}
		defer o.Close()
		return fn(c, o)
	}
}

func txIdArg(c *cli.Context) (chainhash.Hash, error) {
	hash, err := chainhash.NewHashFromStr(c.Args().First())
	if err != nil {
		return chainhash.Hash{}, errors.Wrapf(err, "invalid txid %q", c.Args().First())
	}
	return *hash, nil
}
