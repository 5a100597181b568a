// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis seeds a fresh ledger: owner and dev accounts, the tier
// ladders of both tracks and the initial token allocations.
package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/tierpool/builtin/solidity"
	"github.com/vechain/tierpool/builtin/tierpool"
	"github.com/vechain/tierpool/builtin/token"
	"github.com/vechain/tierpool/log"
	"github.com/vechain/tierpool/state"
	"github.com/vechain/tierpool/thor"
)

var (
	logger = log.WithContext("pkg", "genesis")

	slotApplied = solidity.Slot("genesis-applied")
)

// Default tier ladder, shared by both tracks.
var (
	DefaultLocks = []uint64{300, 600, 900, 1200, 1500}
	DefaultRates = []uint64{100, 200, 300, 400, 500}
)

// Config describes the initial ledger.
type Config struct {
	Owner    string    `yaml:"owner"`
	Dev      string    `yaml:"dev"`
	Pools    []Pool    `yaml:"pools"`
	Accounts []Account `yaml:"accounts"`
}

// Pool is a tier appended to its track in declaration order.
type Pool struct {
	Name        string `yaml:"name"`
	Farming     bool   `yaml:"farming"`
	Lock        uint64 `yaml:"lock"`
	PenaltyRate uint64 `yaml:"penaltyRate"`
}

// Account is a token allocation. Amounts are decimal or 0x-prefixed hex.
type Account struct {
	Address string `yaml:"address"`
	Base    string `yaml:"base"`
	LP      string `yaml:"lp"`
}

// Target is the ledger a config is applied to.
type Target struct {
	State  *state.State
	Engine *tierpool.Engine
	Base   *token.Token
	LP     *token.Token
}

// Default returns a config with five tiers on each track and no allocations.
func Default(owner, dev thor.Address) *Config {
	cfg := &Config{Owner: owner.String(), Dev: dev.String()}
	for _, farming := range []bool{true, false} {
		prefix := "staking"
		if farming {
			prefix = "farming"
		}
		for i, lock := range DefaultLocks {
			cfg.Pools = append(cfg.Pools, Pool{
				Name:        fmt.Sprintf("%s-%d", prefix, i+1),
				Farming:     farming,
				Lock:        lock,
				PenaltyRate: DefaultRates[i],
			})
		}
	}
	return cfg
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return Parse(data)
}

// Parse decodes and validates a YAML config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type allocation struct {
	addr     thor.Address
	base, lp *big.Int
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func (c *Config) parse() (owner, dev thor.Address, allocs []allocation, err error) {
	if owner, err = thor.ParseAddress(c.Owner); err != nil {
		return owner, dev, nil, errors.Wrap(err, "owner")
	}
	if dev, err = thor.ParseAddress(c.Dev); err != nil {
		return owner, dev, nil, errors.Wrap(err, "dev")
	}
	if owner.IsZero() || dev.IsZero() {
		return owner, dev, nil, errors.New("owner and dev must be set")
	}
	for i, a := range c.Accounts {
		var al allocation
		if al.addr, err = thor.ParseAddress(a.Address); err != nil {
			return owner, dev, nil, errors.Wrapf(err, "accounts[%d]", i)
		}
		if al.base, err = parseAmount(a.Base); err != nil {
			return owner, dev, nil, errors.Wrapf(err, "accounts[%d].base", i)
		}
		if al.lp, err = parseAmount(a.LP); err != nil {
			return owner, dev, nil, errors.Wrapf(err, "accounts[%d].lp", i)
		}
		allocs = append(allocs, al)
	}
	return owner, dev, allocs, nil
}

// Validate checks accounts, amounts and that each track's locks strictly increase.
func (c *Config) Validate() error {
	if _, _, _, err := c.parse(); err != nil {
		return err
	}
	last := map[bool]uint64{}
	for i, p := range c.Pools {
		if p.Lock == 0 || p.PenaltyRate > 10000 {
			return fmt.Errorf("pools[%d]: invalid lock or penalty rate", i)
		}
		if p.Lock <= last[p.Farming] {
			return fmt.Errorf("pools[%d]: lock %d must exceed %d", i, p.Lock, last[p.Farming])
		}
		last[p.Farming] = p.Lock
	}
	return nil
}

// Apply seeds t once. It reports false when the ledger was already seeded.
// Changes are left pending in t.State for the caller to commit.
func (c *Config) Apply(t Target) (bool, error) {
	marker, err := t.State.GetStorage(t.Engine.Address(), slotApplied)
	if err != nil {
		return false, err
	}
	if !marker.IsZero() {
		return false, nil
	}

	owner, dev, allocs, err := c.parse()
	if err != nil {
		return false, err
	}
	if err := t.Engine.Initialize(owner, dev); err != nil {
		return false, err
	}
	for _, al := range allocs {
		if err := t.Base.Mint(al.addr, al.base); err != nil {
			return false, errors.Wrapf(err, "mint %s to %s", t.Base.Symbol(), al.addr)
		}
		if err := t.LP.Mint(al.addr, al.lp); err != nil {
			return false, errors.Wrapf(err, "mint %s to %s", t.LP.Symbol(), al.addr)
		}
	}
	for _, p := range c.Pools {
		id, err := t.Engine.AddPool(owner, p.Farming, p.Name, p.Lock, p.PenaltyRate, 0)
		if err != nil {
			return false, errors.WithMessagef(err, "add pool %q", p.Name)
		}
		logger.Debug("genesis pool", "pid", id, "name", p.Name)
	}
	t.State.SetStorage(t.Engine.Address(), slotApplied, thor.BytesToBytes32([]byte{1}))

	logger.Info("genesis applied", "pools", len(c.Pools), "accounts", len(allocs))
	return true, nil
}
