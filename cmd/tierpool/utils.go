// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tierpool/genesis"
	"github.com/vechain/tierpool/log"
	"github.com/vechain/tierpool/logdb"
	"github.com/vechain/tierpool/lvldb"
	"github.com/vechain/tierpool/thor"
)

// maxClockOffset is the clock drift tolerated before a warning is logged.
const maxClockOffset = 5 * time.Second

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fatal(fmt.Sprintf(format, args...))
}

func initLogger(ctx *cli.Context) {
	verbosity := ctx.Uint64(verbosityFlag.Name)
	if verbosity > log.LvlTrace {
		verbosity = log.LvlTrace
	}
	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.Init(os.Stderr, int(verbosity), ctx.Bool(jsonLogsFlag.Name), color)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// selectGenesis loads the genesis file if one is given, or builds the default
// tiers for the owner and dev accounts.
func selectGenesis(ctx *cli.Context) (*genesis.Config, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.Load(path)
	}
	owner, err := parseAccount(ctx.String(ownerFlag.Name), ownerFlag.Name)
	if err != nil {
		return nil, err
	}
	dev, err := parseAccount(ctx.String(devFlag.Name), devFlag.Name)
	if err != nil {
		return nil, err
	}
	return genesis.Default(owner, dev), nil
}

func parseAccount(s, flag string) (thor.Address, error) {
	if s == "" {
		return thor.Address{}, fmt.Errorf("missing -%s, or use -%s", flag, genesisFlag.Name)
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.Wrapf(err, "parse -%s", flag)
	}
	if addr.IsZero() {
		return thor.Address{}, fmt.Errorf("-%s must not be the zero address", flag)
	}
	return addr, nil
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatalf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatalf("create data dir at '%v': %v", dataDir, err)
	}
	return dataDir
}

func openStateDB(dataDir string) *lvldb.LevelDB {
	dir := filepath.Join(dataDir, "state.db")
	db, err := lvldb.New(dir, lvldb.Options{CacheSize: 128, OpenFilesCacheCapacity: 64})
	if err != nil {
		fatalf("open state database at '%v': %v", dir, err)
	}
	return db
}

func openLogDB(dataDir string) *logdb.LogDB {
	path := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		fatalf("open log database at '%v': %v", path, err)
	}
	return db
}

// checkClockOffset warns when the local clock drifts from the NTP server,
// since deposit maturity follows the local clock.
func checkClockOffset(server string) {
	if server == "" {
		return
	}
	resp, err := ntp.Query(server)
	if err != nil {
		log.Debug("failed to access NTP", "server", server, "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		log.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

// copy from go-ethereum
func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.tierpool")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.tierpool")
		default:
			return filepath.Join(home, ".org.vechain.tierpool")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
