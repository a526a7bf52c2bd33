package tx

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	// TeraGas is 10^12 gas units.
	TeraGas uint64 = 1_000_000_000_000

	// DefaultGas is the gas attached to every function call.
	DefaultGas = 30 * TeraGas

	// MaxGas is the protocol's per-transaction prepaid gas limit.
	MaxGas = 300 * TeraGas

	gasDecimals  = 12
	nearDecimals = 24
)

// ValidateGas checks that gas is attachable to a single function call.
func ValidateGas(gas uint64) error {
	if gas == 0 {
		return fmt.Errorf("gas must be positive")
	}
	if gas > MaxGas {
		return fmt.Errorf("gas %s exceeds the %s limit", FormatGas(gas), FormatGas(MaxGas))
	}
	return nil
}

// ValidateDeposit checks that deposit fits the u128 wire type.
func ValidateDeposit(deposit *big.Int) error {
	if deposit == nil {
		return nil
	}
	if deposit.Sign() < 0 {
		return fmt.Errorf("deposit must not be negative")
	}
	if deposit.BitLen() > 128 {
		return fmt.Errorf("deposit exceeds u128")
	}
	return nil
}

// FormatGas renders gas in TGas, e.g. "30 TGas" or "2.5 TGas".
func FormatGas(gas uint64) string {
	return formatUnits(new(big.Int).SetUint64(gas), gasDecimals) + " TGas"
}

// ParseGas accepts "30 TGas", "30tgas", "2.5 TGas" or a raw gas count.
func ParseGas(s string) (uint64, error) {
	num, unit := splitUnit(s)
	var (
		v   *big.Int
		err error
	)
	switch strings.ToLower(unit) {
	case "tgas":
		v, err = parseUnits(num, gasDecimals)
	case "", "gas":
		v, err = parseUnits(num, 0)
	default:
		return 0, fmt.Errorf("gas %q: unknown unit %q", s, unit)
	}
	if err != nil {
		return 0, fmt.Errorf("gas %q: %w", s, err)
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("gas %q overflows u64", s)
	}
	return v.Uint64(), nil
}

// FormatDeposit renders a yoctoNEAR amount in NEAR, e.g. "0 NEAR" or "1.5 NEAR".
func FormatDeposit(deposit *big.Int) string {
	if deposit == nil {
		deposit = new(big.Int)
	}
	return formatUnits(deposit, nearDecimals) + " NEAR"
}

// ParseDeposit accepts "1.5 NEAR", "0 near" or a raw yoctoNEAR amount ("100 yocto" or "100").
func ParseDeposit(s string) (*big.Int, error) {
	num, unit := splitUnit(s)
	var (
		v   *big.Int
		err error
	)
	switch strings.ToLower(unit) {
	case "near":
		v, err = parseUnits(num, nearDecimals)
	case "", "yocto", "yoctonear":
		v, err = parseUnits(num, 0)
	default:
		return nil, fmt.Errorf("deposit %q: unknown unit %q", s, unit)
	}
	if err != nil {
		return nil, fmt.Errorf("deposit %q: %w", s, err)
	}
	if err := ValidateDeposit(v); err != nil {
		return nil, err
	}
	return v, nil
}

func splitUnit(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '_'
	})
	if i < 0 {
		return s, ""
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])
}

// formatUnits renders v / 10^decimals without trailing zeros.
func formatUnits(v *big.Int, decimals int) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(v, scale, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	digits := frac.String()
	digits = strings.Repeat("0", decimals-len(digits)) + digits
	return whole.String() + "." + strings.TrimRight(digits, "0")
}

// parseUnits parses a non-negative decimal into v * 10^decimals.
func parseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return nil, fmt.Errorf("missing amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > decimals {
		return nil, fmt.Errorf("more than %d decimal places", decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount")
	}
	return v, nil
}
