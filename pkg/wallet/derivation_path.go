package wallet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DerivationPath is a BIP32 path as a list of child indexes, hardened
// indexes already offset by hdkeychain.HardenedKeyStart.
type DerivationPath []uint32

// DefaultDerivationPath m/44'/60'/0'/0/0 is the first external account of the
// BIP44 ethereum coin type.
var DefaultDerivationPath = DerivationPath{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// ParseDerivationPath parses paths like m/44'/60'/0'/0/0. The leading m is
// optional, hardened steps are marked with ' or h and indexes may be written
// in decimal or 0x prefixed hex.
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	if strPath == "" {
		return nil, ErrNullDerivationPath
	}

	steps := strings.Split(strPath, "/")
	if len(steps) < 2 {
		return nil, ErrMalformedDerivationPath
	}
	for i, step := range steps {
		steps[i] = strings.TrimSpace(step)
		if steps[i] == "" {
			return nil, ErrMalformedDerivationPath
		}
	}
	if steps[0] == "m" {
		steps = steps[1:]
	}

	path := make(DerivationPath, 0, len(steps))
	for _, step := range steps {
		index, err := parseStep(step)
		if err != nil {
			return nil, err
		}
		path = append(path, index)
	}
	return path, nil
}

func parseStep(step string) (uint32, error) {
	var offset uint32
	if trimmed := strings.TrimRight(step, "'hH"); trimmed != step {
		offset = hdkeychain.HardenedKeyStart
		step = strings.TrimSpace(trimmed)
	}

	index, err := strconv.ParseUint(step, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid step '%s'", ErrInvalidDerivationPath, step)
	}
	if limit := uint64(math.MaxUint32 - offset); index > limit {
		return 0, fmt.Errorf(
			"%w: step %d must be in range [0, %d]", ErrInvalidDerivationPath, index, limit,
		)
	}
	return offset + uint32(index), nil
}

// DeriveFrom walks the path starting from the given master node.
func (path DerivationPath) DeriveFrom(
	master *hdkeychain.ExtendedKey,
) (*hdkeychain.ExtendedKey, error) {
	node := master
	for _, index := range path {
		child, err := node.Derive(index)
		if err != nil {
			return nil, err
		}
		node = child
	}
	return node, nil
}

// String returns the path in the m/44'/60'/0'/0/0 notation.
func (path DerivationPath) String() string {
	if len(path) <= 0 {
		return ""
	}

	steps := make([]string, 0, len(path)+1)
	steps = append(steps, "m")
	for _, index := range path {
		if index >= hdkeychain.HardenedKeyStart {
			steps = append(steps, fmt.Sprintf("%d'", index-hdkeychain.HardenedKeyStart))
			continue
		}
		steps = append(steps, strconv.FormatUint(uint64(index), 10))
	}
	return strings.Join(steps, "/")
}
