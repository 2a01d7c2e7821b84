// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/polimec/polimec-node/config"
	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/kv"
	"github.com/polimec/polimec-node/ledger"
	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/lvldb"
	"github.com/polimec/polimec-node/storage"
	"github.com/polimec/polimec-node/xcm"
)

const maxRequestBody = 200 * 1024

// stateBucket prefixes every funding key in the database.
const stateBucket = kv.Bucket("f")

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := &slog.LevelVar{}
	logLevel.Set(log.FromVerbosity(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, logLevel)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, logLevel, useColor)
	}
	log.SetDefault(handler)
	return logLevel
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func openDB(ctx *cli.Context) (*lvldb.LevelDB, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return lvldb.NewMem()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dir)
	}
	db, err := lvldb.New(dir, lvldb.Options{CacheSize: 128, OpenFilesCacheCapacity: 500, Sync: true})
	if err != nil {
		return nil, errors.Wrapf(err, "open database [%v]", dir)
	}
	return db, nil
}

// newFunding wires the funding service over db with the configured parameters.
func newFunding(cfg *config.Config, db *lvldb.LevelDB) (*funding.Funding, error) {
	state := storage.New(stateBucket.NewStore(db))
	if err := cfg.ApplyDurations(state); err != nil {
		return nil, err
	}
	if err := state.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit configuration")
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	prices, err := cfg.Oracle()
	if err != nil {
		return nil, err
	}
	return funding.New(state, params, ledger.NewStore(state), prices, xcm.NewRouter())
}

func serve(addr string, handler http.Handler, path string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(listener)
	}()
	return "http://" + listener.Addr().String() + path, func() {
		srv.Close()
		<-done
	}, nil
}

func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		h.ServeHTTP(w, r)
	})
}

func printStartupMessage(ctx *cli.Context, apiURL, adminURL string, block uint32) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		dataDir = "Memory"
	}
	printStartup(os.Stdout, fullVersion(), dataDir, apiURL, adminURL, block)
}

func printStartup(w io.Writer, version, dataDir, apiURL, adminURL string, block uint32) {
	fmt.Fprintf(w, `Starting %v
    Data dir    [ %v ]
    Block       [ %v ]
    API portal  [ %v ]
`, version, dataDir, block, apiURL)
	if adminURL != "" {
		fmt.Fprintf(w, "    Admin       [ %v ]\n", adminURL)
	}
}
