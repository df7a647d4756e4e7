package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `
OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>INR
<BANKACCTFROM>
<BANKID>HDFC0001234
<ACCTID>50100012345678
<ACCTTYPE>SAVINGS
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-450.50
<FITID>2024011501
<NAME>ZOMATO ORDER
<MEMO>UPI 402912345678
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240101120000[0:GMT]
<TRNAMT>50000.00
<FITID>2024010101
<NAME>SALARY ACME CORP
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>49549.50
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>INR
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-649.00
<FITID>CC2024011001
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-649.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestReadOFX(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{name: "bank statement", ofxData: sampleBankOFX, expectedCount: 2},
		{name: "credit card statement", ofxData: sampleCreditCardOFX, expectedCount: 1},
		{name: "invalid OFX data", ofxData: "not valid OFX", expectedError: true},
		{name: "empty OFX", ofxData: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadOFX(strings.NewReader(tt.ofxData))
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.expectedCount)
		})
	}
}

func TestReadOFXConvertsRows(t *testing.T) {
	rows, err := ReadOFX(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-01-15", rows[0].Date)
	assert.Equal(t, "ZOMATO ORDER UPI 402912345678", rows[0].Narration)
	assert.True(t, rows[0].Debit.Equal(decimal.RequireFromString("450.50")))
	assert.True(t, rows[0].Credit.IsZero())

	assert.Equal(t, "SALARY ACME CORP", rows[1].Narration)
	assert.True(t, rows[1].Credit.Equal(decimal.NewFromInt(50000)))
	assert.True(t, rows[1].Debit.IsZero())
}

func TestPreprocessOFX(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "leading blank lines",
			input:    "\n\n  OFXHEADER:100",
			expected: "OFXHEADER:100",
		},
		{
			name:     "mixed case severity",
			input:    "<SEVERITY>Warn</SEVERITY>",
			expected: "<SEVERITY>WARN</SEVERITY>",
		},
		{
			name:     "unterminated tag",
			input:    "<OFX>\n<BANKTRANLIST\n</OFX>",
			expected: "<OFX>\n<BANKTRANLIST>\n</OFX>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, preprocessOFX(tt.input))
		})
	}
}

func TestIngestOFX(t *testing.T) {
	pipeline, db, _ := newTestPipeline(t, nil)
	ctx := context.Background()

	summary, err := pipeline.IngestOFX(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)

	ledger, err := db.Storage.ListLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, model.DirectionCredit, ledger[0].Direction)
	assert.Equal(t, "Salary", ledger[0].CategoryName())
	assert.Equal(t, "Food & Dining", ledger[1].CategoryName())

	again, err := pipeline.IngestOFX(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, 2, again.SkippedDuplicates)

	_, err = pipeline.IngestOFX(ctx, strings.NewReader("garbage"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
