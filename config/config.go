// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the node configuration file.
package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/polimec/polimec-node/credentials"
	"github.com/polimec/polimec-node/fixed"
	"github.com/polimec/polimec-node/funding"
	"github.com/polimec/polimec-node/funding/rewards"
	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/oracle"
	"github.com/polimec/polimec-node/plmc"
	"github.com/polimec/polimec-node/storage"
)

var logger = log.WithContext("pkg", "config")

// Durations are round lengths in blocks, zero keeps the built in value.
type Durations struct {
	Evaluation              uint32 `yaml:"evaluation"`
	AuctionInitializePeriod uint32 `yaml:"auction_initialize_period"`
	AuctionOpening          uint32 `yaml:"auction_opening"`
	AuctionClosing          uint32 `yaml:"auction_closing"`
	Community               uint32 `yaml:"community"`
	Remainder               uint32 `yaml:"remainder"`
	SuccessToSettlement     uint32 `yaml:"success_to_settlement"`
}

// Limits cap the work of a block and the participations of users and projects.
type Limits struct {
	ProjectsToUpdatePerBlock uint32 `yaml:"projects_to_update_per_block"`
	SettlementsPerBlock      uint32 `yaml:"settlements_per_block"`
	MigrationsPerXcm         uint32 `yaml:"migrations_per_xcm"`
	MigrationsPerUser        uint32 `yaml:"migrations_per_user"`
	EvaluationsPerUser       uint32 `yaml:"evaluations_per_user"`
	BidsPerUser              uint32 `yaml:"bids_per_user"`
	ContributionsPerUser     uint32 `yaml:"contributions_per_user"`
	EvaluationsPerProject    uint32 `yaml:"evaluations_per_project"`
	BidsPerProject           uint32 `yaml:"bids_per_project"`
	ContributionsPerProject  uint32 `yaml:"contributions_per_project"`
}

// FeeBracket charges Fee, a ratio such as "0.1", on the next Limit USD raised.
// An empty limit covers the rest.
type FeeBracket struct {
	Fee   string `yaml:"fee"`
	Limit string `yaml:"limit"`
}

// Treasuries are the accounts receiving protocol funds.
type Treasuries struct {
	Protocol     string `yaml:"protocol"`
	Bond         string `yaml:"bond"`
	Contribution string `yaml:"contribution"`
	FeeRecipient string `yaml:"fee_recipient"`
}

// Credentials configure the trusted issuer of investor credentials.
type Credentials struct {
	Issuer    string `yaml:"issuer"`
	PublicKey string `yaml:"public_key"`
	CacheSize int    `yaml:"cache_size"`
}

// Config is the node configuration file.
type Config struct {
	Durations Durations `yaml:"durations"`
	Limits    Limits    `yaml:"limits"`

	// MinUSDPerEvaluation is a decimal USD amount.
	MinUSDPerEvaluation        string       `yaml:"min_usd_per_evaluation"`
	EvaluationSuccessThreshold string       `yaml:"evaluation_success_threshold"`
	FeeBrackets                []FeeBracket `yaml:"fee_brackets"`
	Treasuries                 Treasuries   `yaml:"treasuries"`

	// Prices are USD prices of whole asset units keyed by asset symbol.
	Prices      map[string]string `yaml:"prices"`
	Credentials Credentials       `yaml:"credentials"`
}

// defaultPrices are used for assets the file does not price.
var defaultPrices = map[plmc.Asset]string{
	plmc.Native: "0.5",
	plmc.USDT:   "1",
	plmc.USDC:   "1",
	plmc.DOT:    "5",
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Credentials: Credentials{CacheSize: 1024},
	}
}

// Load reads the yaml file at path over the defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	return Parse(content)
}

// Parse decodes a yaml document over the defaults.
func Parse(content []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(content, c); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return c, nil
}

// usdAmount converts a decimal USD string to minimal units.
func usdAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, errors.New("negative amount")
	}
	return d.Shift(int32(plmc.USDDecimals)).BigInt(), nil
}

func parseAccount(s string, fallback plmc.Address) (plmc.Address, error) {
	if s == "" {
		return fallback, nil
	}
	return plmc.ParseAddress(s)
}

// Params returns the funding parameters, starting from the built in ones.
func (c *Config) Params() (*funding.Params, error) {
	p := funding.DefaultParams()

	for _, v := range []struct {
		dst *uint32
		src uint32
	}{
		{&p.MaxProjectsToUpdatePerBlock, c.Limits.ProjectsToUpdatePerBlock},
		{&p.MaxSettlementsPerBlock, c.Limits.SettlementsPerBlock},
		{&p.MaxMigrationsPerXcm, c.Limits.MigrationsPerXcm},
		{&p.MaxMigrationsPerUser, c.Limits.MigrationsPerUser},
		{&p.MaxEvaluationsPerUser, c.Limits.EvaluationsPerUser},
		{&p.MaxBidsPerUser, c.Limits.BidsPerUser},
		{&p.MaxContributionsPerUser, c.Limits.ContributionsPerUser},
		{&p.MaxEvaluationsPerProject, c.Limits.EvaluationsPerProject},
		{&p.MaxBidsPerProject, c.Limits.BidsPerProject},
		{&p.MaxContributionsPerProject, c.Limits.ContributionsPerProject},
	} {
		if v.src != 0 {
			*v.dst = v.src
		}
	}

	if c.MinUSDPerEvaluation != "" {
		amount, err := usdAmount(c.MinUSDPerEvaluation)
		if err != nil {
			return nil, errors.Wrap(err, "invalid min_usd_per_evaluation")
		}
		p.MinUSDPerEvaluation = amount
	}
	if c.EvaluationSuccessThreshold != "" {
		threshold, err := fixed.ParsePerquintill(c.EvaluationSuccessThreshold)
		if err != nil {
			return nil, errors.Wrap(err, "invalid evaluation_success_threshold")
		}
		p.EvaluationSuccessThreshold = threshold
	}

	if len(c.FeeBrackets) > 0 {
		brackets := make([]rewards.FeeBracket, 0, len(c.FeeBrackets))
		for i, b := range c.FeeBrackets {
			fee, err := fixed.ParsePerquintill(b.Fee)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid fee of bracket %d", i)
			}
			bracket := rewards.FeeBracket{Fee: fee}
			if b.Limit != "" {
				if bracket.Limit, err = usdAmount(b.Limit); err != nil {
					return nil, errors.Wrapf(err, "invalid limit of bracket %d", i)
				}
			} else if i != len(c.FeeBrackets)-1 {
				return nil, errors.Errorf("only the last bracket may be unbounded")
			}
			brackets = append(brackets, bracket)
		}
		p.FeeBrackets = brackets
	}

	var err error
	if p.ProtocolTreasury, err = parseAccount(c.Treasuries.Protocol, p.ProtocolTreasury); err != nil {
		return nil, errors.Wrap(err, "invalid protocol treasury")
	}
	if p.BondTreasury, err = parseAccount(c.Treasuries.Bond, p.BondTreasury); err != nil {
		return nil, errors.Wrap(err, "invalid bond treasury")
	}
	if p.ContributionTreasury, err = parseAccount(c.Treasuries.Contribution, p.ContributionTreasury); err != nil {
		return nil, errors.Wrap(err, "invalid contribution treasury")
	}
	if p.FeeRecipient, err = parseAccount(c.Treasuries.FeeRecipient, p.FeeRecipient); err != nil {
		return nil, errors.Wrap(err, "invalid fee recipient")
	}
	return p, nil
}

// Oracle returns a static oracle loaded with the configured prices.
func (c *Config) Oracle() (*oracle.Static, error) {
	prices := make(map[plmc.Asset]string, len(defaultPrices))
	for asset, price := range defaultPrices {
		prices[asset] = price
	}
	for symbol, price := range c.Prices {
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid price of %s", symbol)
		}
		if !d.IsPositive() {
			return nil, errors.Errorf("price of %s must be positive", symbol)
		}
		asset := plmc.Asset(strings.ToUpper(symbol))
		if asset != plmc.Native && !asset.IsFundingAsset() {
			return nil, errors.Errorf("unknown asset %s", symbol)
		}
		prices[asset] = d.String()
	}
	return oracle.NewStatic(prices)
}

// ApplyDurations stores the configured round lengths as overrides in the state. They take
// effect for the funding service created afterwards.
func (c *Config) ApplyDurations(state *storage.State) error {
	for _, v := range []struct {
		variable *storage.ConfigVariable
		value    uint32
	}{
		{funding.EvaluationRoundDuration, c.Durations.Evaluation},
		{funding.AuctionInitializePeriodDuration, c.Durations.AuctionInitializePeriod},
		{funding.AuctionOpeningDuration, c.Durations.AuctionOpening},
		{funding.AuctionClosingDuration, c.Durations.AuctionClosing},
		{funding.CommunityRoundDuration, c.Durations.Community},
		{funding.RemainderRoundDuration, c.Durations.Remainder},
		{funding.SuccessToSettlementTime, c.Durations.SuccessToSettlement},
	} {
		if v.value == 0 {
			continue
		}
		if err := v.variable.Store(state, v.value); err != nil {
			return errors.Wrapf(err, "failed to store %s", v.variable.Name())
		}
		logger.Debug("round duration configured", "name", v.variable.Name(), "blocks", v.value)
	}
	return nil
}

// Verifier returns the credential verifier, nil when no key is configured.
func (c *Config) Verifier() (*credentials.Verifier, error) {
	if c.Credentials.PublicKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(strings.TrimPrefix(c.Credentials.PublicKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid credentials public key")
	}
	size := c.Credentials.CacheSize
	if size <= 0 {
		size = 1024
	}
	return credentials.NewVerifier(ed25519.PublicKey(key), c.Credentials.Issuer, size)
}
