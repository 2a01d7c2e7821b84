// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package credentials verifies investor credentials and receiving account ownership proofs.
package credentials

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polimec/polimec-node/cache"
	"github.com/polimec/polimec-node/log"
	"github.com/polimec/polimec-node/plmc"
)

var logger = log.WithContext("pkg", "credentials")

// ErrBadOrigin is returned for any credential that does not verify.
var ErrBadOrigin = errors.New("bad origin")

// Claims are the claims of an investor credential. The subject is the investor account and the
// audience, when present, the whitelisted policy.
type Claims struct {
	jwt.RegisteredClaims
	DID          string `json:"did"`
	InvestorType string `json:"investor_type"`
}

type verified struct {
	investor plmc.Investor
	expiry   time.Time
}

// Verifier checks EdDSA signed credentials of a trusted issuer.
type Verifier struct {
	key    ed25519.PublicKey
	issuer string
	cache  *cache.LRU[string, verified]
}

// NewVerifier creates a verifier trusting key, optionally restricted to an issuer name.
func NewVerifier(key ed25519.PublicKey, issuer string, cacheSize int) (*Verifier, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, errors.New("invalid verifier key")
	}
	c, err := cache.NewLRU[string, verified](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Verifier{key: key, issuer: issuer, cache: c}, nil
}

// Verify returns the investor a token vouches for at time now.
func (v *Verifier) Verify(token string, now time.Time) (plmc.Investor, error) {
	res, err := v.cache.GetOrLoad(token, func(token string) (verified, error) {
		return v.parse(token, now)
	})
	if err != nil {
		logger.Debug("credential rejected", "err", err)
		return plmc.Investor{}, ErrBadOrigin
	}
	if !now.Before(res.expiry) {
		v.cache.Remove(token)
		return plmc.Investor{}, ErrBadOrigin
	}
	return res.investor, nil
}

func (v *Verifier) parse(token string, now time.Time) (verified, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...); err != nil {
		return verified{}, err
	}

	account, err := plmc.ParseAddress(claims.Subject)
	if err != nil {
		return verified{}, err
	}
	did := plmc.DID(claims.DID)
	if err := did.Validate(); err != nil {
		return verified{}, err
	}
	investorType, err := plmc.ParseInvestorType(claims.InvestorType)
	if err != nil {
		return verified{}, err
	}
	var policy string
	if len(claims.Audience) > 0 {
		policy = claims.Audience[0]
	}
	return verified{
		investor: plmc.Investor{Account: account, DID: did, Type: investorType, Policy: policy},
		expiry:   claims.ExpiresAt.Time,
	}, nil
}

// Issue signs a credential for an investor valid until expiry.
func Issue(key ed25519.PrivateKey, issuer string, investor plmc.Investor, expiry time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   investor.Account.String(),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
		DID:          string(investor.DID),
		InvestorType: investor.Type.String(),
	}
	if investor.Policy != "" {
		claims.Audience = jwt.ClaimStrings{investor.Policy}
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
}
