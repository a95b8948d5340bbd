// Package payroll holds the expense-split rules the back office enforces
// before a commission or expense distribution is saved.
package payroll

import "fmt"

// Split assigns a percentage share of an expense to one payee.
type Split struct {
	PayeeID int64   `json:"payee_id"`
	Percent float64 `json:"percent"`
}

// ValidateSplits checks a distribution: every share must be in (0, 100],
// payees must be unique, and the total must not exceed 100%. Violations are
// accumulated so the caller can show the full list at once.
func ValidateSplits(splits []Split) (bool, []string) {
	var violations []string
	seen := make(map[int64]struct{}, len(splits))
	var total float64
	for i, split := range splits {
		if split.PayeeID <= 0 {
			violations = append(violations, fmt.Sprintf("split %d: payee id required", i))
		} else if _, dup := seen[split.PayeeID]; dup {
			violations = append(violations, fmt.Sprintf("split %d: duplicate payee %d", i, split.PayeeID))
		} else {
			seen[split.PayeeID] = struct{}{}
		}
		if split.Percent <= 0 || split.Percent > 100 {
			violations = append(violations, fmt.Sprintf("split %d: percent %.2f outside (0, 100]", i, split.Percent))
		}
		total += split.Percent
	}
	if total > 100 {
		violations = append(violations, fmt.Sprintf("splits total %.2f%% exceeds 100%%", total))
	}
	return len(violations) == 0, violations
}
