// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the funding database, memory when empty",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the yaml configuration file",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration greater than the threshold (ms) will be logged",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	blockIntervalFlag = cli.DurationFlag{
		Name:  "block-interval",
		Value: 6 * time.Second,
		Usage: "time between two blocks",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	// inspect
	projectFlag = cli.UintFlag{
		Name:  "project",
		Usage: "id of the project to inspect",
	}

	// issue-credential
	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "hex encoded ed25519 seed of the credential issuer",
	}
	issuerFlag = cli.StringFlag{
		Name:  "issuer",
		Usage: "name of the credential issuer",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "account of the investor",
	}
	didFlag = cli.StringFlag{
		Name:  "did",
		Usage: "decentralized identifier of the investor",
	}
	investorTypeFlag = cli.StringFlag{
		Name:  "investor-type",
		Value: "retail",
		Usage: "investor type (retail|professional|institutional)",
	}
	policyFlag = cli.StringFlag{
		Name:  "policy",
		Usage: "policy cid the investor is whitelisted for",
	}
	expiryFlag = cli.DurationFlag{
		Name:  "expiry",
		Value: 24 * time.Hour,
		Usage: "validity of the credential",
	}
)
