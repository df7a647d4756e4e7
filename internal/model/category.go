package model

// Kind is the label universe a category belongs to.
type Kind string

const (
	// KindNone means no universe matched.
	KindNone Kind = ""
	// KindExpense covers everyday spending.
	KindExpense Kind = "Expense"
	// KindSavings covers savings and investment outflows.
	KindSavings Kind = "Savings/Investment"
	// KindIncome covers money received.
	KindIncome Kind = "Income"
)

// OtherCategory is the sentinel label a statistical head uses for samples
// outside its universe. It is never assigned to a transaction.
const OtherCategory = "Other"

// UncategorizedLabel is used when grouping transactions that have no category.
const UncategorizedLabel = "Uncategorized"

// ClassificationSource records which stage produced a category.
type ClassificationSource string

const (
	// SourceRule means a keyword rule matched.
	SourceRule ClassificationSource = "rule"
	// SourceModel means the statistical classifier was confident enough.
	SourceModel ClassificationSource = "model"
	// SourceUser means the category was chosen interactively.
	SourceUser ClassificationSource = "user"
	// SourceNone means the transaction is still uncategorized.
	SourceNone ClassificationSource = "none"
)
