package transaction

import "time"

const (
	// TypeIncome marks money coming in.
	TypeIncome = "income"
	// TypeExpense marks money going out.
	TypeExpense = "expense"
)

// Transaction is a single budget journal entry owned by a user.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Category    string    `json:"category,omitempty"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Options lists the accepted entry types and the suggested categories the
// client offers in its forms.
type Options struct {
	Types      []string `json:"types"`
	Categories []string `json:"categories"`
}

// DefaultOptions returns the canonical option lists.
func DefaultOptions() Options {
	return Options{
		Types: []string{TypeIncome, TypeExpense},
		Categories: []string{
			"Food",
			"Transport",
			"Salary",
			"Shopping",
			"Housing",
			"Bills",
			"Entertainment",
			"Other",
		},
	}
}
