// Package dice rolls dice expressions deterministically.
//
// A roll is reproducible from its seed: the same expression and seed always
// produce the same result, which lets a recorded action's dice be verified
// after the fact.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lorekeep/lorekeep/internal/artifact"
	apperrors "github.com/lorekeep/lorekeep/internal/errors"
	"github.com/lorekeep/lorekeep/internal/platform/timeutil"
)

// expressionPattern matches NdS with an optional +M or -M modifier: "d20",
// "2d6", "3d8+4", "1d20-1".
var expressionPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Spec is a parsed dice expression.
type Spec struct {
	Count    int
	Sides    int
	Modifier int
}

// Parse reads a dice expression like "2d6+3".
func Parse(expression string) (Spec, error) {
	match := expressionPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(expression)))
	if match == nil {
		return Spec{}, apperrors.Validationf("invalid dice expression %q", expression)
	}
	spec := Spec{Count: 1}
	if match[1] != "" {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 {
			return Spec{}, apperrors.Validationf("invalid dice count in %q", expression)
		}
		spec.Count = n
	}
	sides, err := strconv.Atoi(match[2])
	if err != nil || sides < 2 {
		return Spec{}, apperrors.Validationf("invalid die size in %q", expression)
	}
	spec.Sides = sides
	if match[3] != "" {
		spec.Modifier, _ = strconv.Atoi(match[3])
	}
	if spec.Count > 100 {
		return Spec{}, apperrors.Validationf("too many dice in %q", expression)
	}
	return spec, nil
}

// NewSeed generates a high-entropy seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Roll evaluates a dice expression with the given seed. The result is
// deterministic with respect to the expression and seed.
func Roll(expression string, seed int64, now time.Time) (artifact.DiceResult, error) {
	spec, err := Parse(expression)
	if err != nil {
		return artifact.DiceResult{}, err
	}

	rng := rand.New(rand.NewSource(seed))
	rolls := make([]int, spec.Count)
	total := spec.Modifier
	parts := make([]string, spec.Count)
	for i := range rolls {
		value := rng.Intn(spec.Sides) + 1
		rolls[i] = value
		total += value
		parts[i] = strconv.Itoa(value)
	}

	breakdown := fmt.Sprintf("%dd%d(%s)", spec.Count, spec.Sides, strings.Join(parts, "+"))
	if spec.Modifier > 0 {
		breakdown += fmt.Sprintf("+%d", spec.Modifier)
	} else if spec.Modifier < 0 {
		breakdown += strconv.Itoa(spec.Modifier)
	}

	return artifact.DiceResult{
		Expression: expression,
		Total:      total,
		Rolls:      rolls,
		Modifier:   spec.Modifier,
		Breakdown:  breakdown,
		Timestamp:  timeutil.New(now),
		Seed:       strconv.FormatInt(seed, 10),
	}, nil
}
