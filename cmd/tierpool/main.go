// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tierpool/api"
	"github.com/vechain/tierpool/cmd/tierpool/httpserver"
	"github.com/vechain/tierpool/co"
	"github.com/vechain/tierpool/log"
	"github.com/vechain/tierpool/metrics"
	"github.com/vechain/tierpool/node"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "TierPool",
		Usage:     "Tiered deposit and reward ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			ownerFlag,
			devFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			cacheFlag,
			keepIntervalFlag,
			ntpServerFlag,
			ntpScheduleFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	if enableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	dataDir := makeDataDir(ctx)

	stateDB := openStateDB(dataDir)
	defer func() { log.Info("closing state database..."); stateDB.Close() }()

	logDB := openLogDB(dataDir)
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	n, err := node.New(stateDB, logDB, gene, node.Options{CacheSize: int(ctx.Uint64(cacheFlag.Name))})
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping node..."); n.Close() }()

	handler, closeSubs := api.New(n, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   enableMetrics,
	})
	defer closeSubs()

	apiURL, stopAPI, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); stopAPI() }()

	metricsURL := ""
	if enableMetrics {
		url, stopMetrics, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); stopMetrics() }()
		metricsURL = url
	}

	if interval := ctx.Duration(keepIntervalFlag.Name); interval > 0 {
		n.Keep(exitSignal, interval)
	}

	ntpServer := ctx.String(ntpServerFlag.Name)
	var goes co.Goes
	goes.Go(func() { checkClockOffset(ntpServer) })
	defer goes.Wait()

	scheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(ctx.String(ntpScheduleFlag.Name), func() { checkClockOffset(ntpServer) }); err != nil {
		return errors.Wrap(err, "parse ntp schedule")
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	printStartupMessage(n, dataDir, apiURL, metricsURL)

	<-exitSignal.Done()
	return nil
}

func printStartupMessage(n *node.Node, dataDir, apiURL, metricsURL string) {
	var owner, dev string
	var pools uint64
	err := n.View(func(v *node.View) error {
		o, err := v.Owner()
		if err != nil {
			return err
		}
		d, err := v.DevAccount()
		if err != nil {
			return err
		}
		if pools, err = v.PoolCount(); err != nil {
			return err
		}
		owner, dev = o.String(), d.String()
		return nil
	})
	if err != nil {
		log.Warn("failed to read ledger", "err", err)
	}

	metricsLine := "Disabled"
	if metricsURL != "" {
		metricsLine = metricsURL
	}
	fmt.Printf(`Starting %v
    Owner      [ %v ]
    Dev        [ %v ]
    Pools      [ %v ]
    Data dir   [ %v ]
    API portal [ %v ]
    Metrics    [ %v ]
`,
		fullVersion(), owner, dev, pools, dataDir, apiURL, metricsLine)
}
