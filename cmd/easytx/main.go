package main

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/treeforest/easytx/config"
	log "github.com/treeforest/logger"
	"github.com/urfave/cli"
)

var conf = config.DefaultConfig()

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "easytx"
	app.Version = "0.1.0"
	app.HelpName = "easytx"
	app.Usage = "command line tool for bitcoin transactions and scripts"
	app.UsageText = "easytx [global options] command [command options] [args]"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "yaml 配置文件路径"},
		cli.StringFlag{Name: "network, n", Usage: "mainnet、testnet 或 regtest，覆盖配置文件"},
		cli.BoolFlag{Name: "debug", Usage: "输出调试日志"},
	}
	app.Before = loadConfig
	app.Commands = []cli.Command{
		decodeTxCommand(),
		merkleCommand(),
		decodeScriptCommand(),
		classifyCommand(),
		runCommand(),
		addressCommand(),
		varintCommand(),
		base58Command(),
		bech32Command(),
		storeCommand(),
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	sort.Sort(cli.FlagsByName(app.Flags))
	return app
}

func loadConfig(c *cli.Context) error {
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return errors.WithMessage(err, "load config failed")
		}
		conf = loaded
	}
	if network := c.String("network"); network != "" {
		conf.Network = network
	}
	if _, err := conf.NetParams(); err != nil {
		return err
	}
	if c.Bool("debug") || conf.LogLevel == "debug" {
		log.SetLevel(log.DEBUG)
	}
	log.Debugf("network: %s, max tx size: %d", conf.Network, conf.MaxTxSize)
	return nil
}

// netParams 配置在 Before 中已校验
func netParams() *config.NetParams {
	params, _ := conf.NetParams()
	return params
}

// hexArg 第 i 个参数按十六进制解码
func hexArg(c *cli.Context, i int, name string) ([]byte, error) {
	s := strings.TrimSpace(c.Args().Get(i))
	if s == "" {
		return nil, errors.Errorf("missing %s", name)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	return b, nil
}

// hexInput 优先读取 --file，否则读取第一个参数
func hexInput(c *cli.Context, name string) ([]byte, error) {
	if path := c.String("file"); path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		b, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s in %s", name, path)
		}
		return b, nil
	}
	return hexArg(c, 0, name)
}
