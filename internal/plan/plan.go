// Package plan holds the subscription tier catalog and the record ceilings
// each tier fixes. Ceilings on an organization row are always derived from
// this table, never taken from client input.
package plan

import "errors"

const (
	Free       = "free"
	Pro        = "pro"
	Enterprise = "enterprise"
)

// Unlimited marks a ceiling that is never enforced.
const Unlimited = -1

var ErrUnknownPlan = errors.New("unknown plan")

type Limits struct {
	Animais      int `json:"limite_animais"`
	Funcionarios int `json:"limite_funcionarios"`
	Produtos     int `json:"limite_produtos"`
}

var catalog = map[string]Limits{
	Free:       {Animais: 10, Funcionarios: 2, Produtos: 5},
	Pro:        {Animais: 100, Funcionarios: 10, Produtos: 50},
	Enterprise: {Animais: Unlimited, Funcionarios: Unlimited, Produtos: Unlimited},
}

func IsValid(plan string) bool {
	_, ok := catalog[plan]
	return ok
}

// LimitsFor returns the ceilings fixed by the given plan.
func LimitsFor(plan string) (Limits, error) {
	l, ok := catalog[plan]
	if !ok {
		return Limits{}, ErrUnknownPlan
	}
	return l, nil
}

// Allows reports whether one more record fits under the given ceiling.
func Allows(limit int, current int64) bool {
	return limit == Unlimited || current < int64(limit)
}
