package proofverifier

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultPooledLabel is the output key all stablecoin balances are summed under.
const DefaultPooledLabel = "STABLECOIN"

// DefaultStablecoins is the fixed set of pooled symbols.
var DefaultStablecoins = []string{
	"USDT", "USDC", "FDUSD", "TUSD", "USDE", "XUSD", "USD1", "BFUSD", "USDP", "DAI",
}

var ErrEmptyPooledLabel = errors.New("pooled label must not be empty")

// Policy decides how accumulated assets are categorised in the output.
type Policy struct {
	Stablecoins []string `yaml:"stablecoins"`
	PooledLabel string   `yaml:"pooled_label"`
}

func DefaultPolicy() Policy {
	return Policy{
		Stablecoins: slices.Clone(DefaultStablecoins),
		PooledLabel: DefaultPooledLabel,
	}
}

// LoadPolicy reads a YAML policy file. Omitted fields keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read policy file: %w", err)
	}
	var override Policy
	if err := yaml.Unmarshal(data, &override); err != nil {
		return p, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if override.Stablecoins != nil {
		p.Stablecoins = override.Stablecoins
	}
	if override.PooledLabel != "" {
		p.PooledLabel = override.PooledLabel
	}
	return p.normalize()
}

func (p Policy) normalize() (Policy, error) {
	if p.PooledLabel == "" {
		return p, ErrEmptyPooledLabel
	}
	coins := make([]string, len(p.Stablecoins))
	for i, c := range p.Stablecoins {
		coins[i] = asciiUpper(c)
	}
	p.Stablecoins = coins
	p.PooledLabel = asciiUpper(p.PooledLabel)
	return p, nil
}

// Categorize pools every stablecoin into one label and keeps other assets as
// they are. The pooled label is always present. Symbols are visited in sorted
// order so the pooled sum is reproducible.
func (p Policy) Categorize(acc AssetBalances) map[string]float64 {
	symbols := make([]string, 0, len(acc))
	for k := range acc {
		symbols = append(symbols, k)
	}
	sort.Strings(symbols)

	out := make(map[string]float64, len(acc)+1)
	pooled := 0.0
	for _, k := range symbols {
		if slices.Contains(p.Stablecoins, k) {
			pooled += acc[k]
		} else {
			out[k] = acc[k]
		}
	}
	out[p.PooledLabel] = pooled
	return out
}
