// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/polimec/polimec-node/api"
	"github.com/polimec/polimec-node/api/admin"
	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/health"
	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/metrics"
	"github.com/polimec/polimec-node/node"
	"github.com/polimec/polimec-node/plmc"

	nodeAPI "github.com/polimec/polimec-node/api/node"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
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
		Name:      "Polimec",
		Usage:     "Node of the Polimec funding protocol",
		Copyright: "2025 The VeChainThor developers",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiSlowQueriesThresholdFlag,
			enableAPILogsFlag,
			enableAdminFlag,
			adminAddrFlag,
			enableMetricsFlag,
			blockIntervalFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "inspect",
				Usage: "dump the stored state of a project",
				Flags: []cli.Flag{
					dataDirFlag,
					configFlag,
					projectFlag,
				},
				Action: inspectAction,
			},
			{
				Name:  "issue-credential",
				Usage: "sign an investor credential",
				Flags: []cli.Flag{
					keyFlag,
					issuerFlag,
					accountFlag,
					didFlag,
					investorTypeFlag,
					policyFlag,
					expiryFlag,
				},
				Action: issueCredentialAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing database..."); db.Close() }()

	f, err := newFunding(cfg, db)
	if err != nil {
		return err
	}
	verifier, err := cfg.Verifier()
	if err != nil {
		return err
	}
	if verifier == nil {
		logger.Warn("no credential key configured, authenticated routes are disabled")
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	interval := ctx.Duration(blockIntervalFlag.Name)
	healthStatus := health.New(interval)
	n := node.New(f, interval, healthStatus)

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(n, verifier, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Info:                 nodeAPI.Info{Version: fullVersion(), BlockInterval: interval.String()},
	})
	apiURL, apiCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), handler, time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); closeSubs(); apiCloser() }()

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, adminCloser, err := startAdminServer(ctx.String(adminAddrFlag.Name), admin.New(logLevel, apiLogs, healthStatus))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); adminCloser() }()
		adminURL = url
	}

	printStartupMessage(ctx, apiURL, adminURL, f.Block())

	group, groupCtx := errgroup.WithContext(exitSignal)
	group.Go(func() error {
		return n.Run(groupCtx)
	})
	return group.Wait()
}

func inspectAction(ctx *cli.Context) error {
	var level slog.LevelVar
	level.Set(log.LevelWarn)
	log.SetDefault(log.NewTerminalHandlerWithLevel(os.Stderr, &level, false))

	if ctx.String(dataDirFlag.Name) == "" {
		return errors.New("data-dir is required")
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := newFunding(cfg, db)
	if err != nil {
		return err
	}
	id := plmc.ProjectID(ctx.Uint(projectFlag.Name))
	metadata, err := f.Metadata(id)
	if err != nil {
		return err
	}
	details, err := f.Details(id)
	if err != nil {
		return err
	}
	entry, block, scheduled, err := f.ScheduledUpdate(id)
	if err != nil {
		return err
	}

	config := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	fmt.Printf("block: %d\n", f.Block())
	config.Dump(metadata)
	config.Dump(details)
	if scheduled {
		fmt.Printf("next update at block %d:\n", block)
		config.Dump(entry)
	}
	return nil
}

func issueCredentialAction(ctx *cli.Context) error {
	seed, err := hex.DecodeString(strings.TrimPrefix(ctx.String(keyFlag.Name), "0x"))
	if err != nil || len(seed) != ed25519.SeedSize {
		return errors.New("key: expected a hex encoded 32 bytes seed")
	}
	account, err := plmc.ParseAddress(ctx.String(accountFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "account")
	}
	investorType, err := plmc.ParseInvestorType(ctx.String(investorTypeFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "investor-type")
	}
	investor := plmc.Investor{
		Account: account,
		DID:     plmc.DID(ctx.String(didFlag.Name)),
		Type:    investorType,
		Policy:  ctx.String(policyFlag.Name),
	}
	if err := investor.DID.Validate(); err != nil {
		return errors.WithMessage(err, "did")
	}

	key := ed25519.NewKeyFromSeed(seed)
	token, err := credentials.Issue(key, ctx.String(issuerFlag.Name), investor, time.Now().Add(ctx.Duration(expiryFlag.Name)))
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "verifier public key: 0x%x\n", key.Public().(ed25519.PublicKey))
	return nil
}

func startAdminServer(addr string, handler http.Handler) (string, func(), error) {
	return serve(addr, handler, "/admin")
}

func startAPIServer(addr string, handler http.Handler, timeout time.Duration) (string, func(), error) {
	if timeout > 0 {
		handler = handleAPITimeout(handler, timeout)
	}
	handler = requestBodyLimit(handler)
	return serve(addr, handler, "/")
}
