package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at the end of a line that lost their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in bank-exported OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ReadOFX converts the bank and credit-card statements of an OFX/QFX file
// into statement rows. Negative amounts are debits, positive ones credits.
func ReadOFX(r io.Reader) ([]Row, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var rows []Row
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			for _, txn := range stmt.BankTranList.Transactions {
				rows = append(rows, convertOFXTransaction(txn))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			for _, txn := range stmt.BankTranList.Transactions {
				rows = append(rows, convertOFXTransaction(txn))
			}
		}
	}

	slog.Debug("Parsed OFX file",
		"rows", len(rows),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return rows, nil
}

func convertOFXTransaction(txn ofxgo.Transaction) Row {
	f, _ := txn.TrnAmt.Float64()
	amount := decimal.NewFromFloat(f).Round(2)

	row := Row{
		Date:      txn.DtPosted.Time.Format(time.DateOnly),
		Narration: ofxNarration(txn),
		Debit:     decimal.Zero,
		Credit:    decimal.Zero,
	}
	if amount.IsNegative() {
		row.Debit = amount.Neg()
	} else {
		row.Credit = amount
	}
	return row
}

// ofxNarration joins NAME and MEMO, falling back to the payee name.
func ofxNarration(txn ofxgo.Transaction) string {
	parts := make([]string, 0, 2)
	if name := strings.TrimSpace(string(txn.Name)); name != "" {
		parts = append(parts, name)
	} else if txn.Payee != nil {
		if payee := strings.TrimSpace(string(txn.Payee.Name)); payee != "" {
			parts = append(parts, payee)
		}
	}
	if memo := strings.TrimSpace(string(txn.Memo)); memo != "" {
		parts = append(parts, memo)
	}
	return strings.Join(parts, " ")
}
