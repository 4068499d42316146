package ofxparser

import (
	"context"
	"strings"
	"testing"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bankOFX = `OFXHEADER:100
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
<CURDEF>CAD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024012001
<MEMO>PAYROLL DEPOSIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestAdapter_Parse(t *testing.T) {
	stmt, err := NewAdapter(logging.NewMockLogger()).Parse(context.Background(), strings.NewReader(bankOFX))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 2)

	coffee := stmt.Transactions[0]
	assert.Equal(t, "2024-01-15", coffee.Date)
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.Description)
	assert.Equal(t, "-25.5", coffee.Amount.String())
	assert.Equal(t, models.TypeDebit, coffee.Type)

	payroll := stmt.Transactions[1]
	assert.Equal(t, "PAYROLL DEPOSIT", payroll.Description)
	assert.Equal(t, models.TypeCredit, payroll.Type)

	assert.Equal(t, StatementType, stmt.Metadata.StatementType)
}

func TestAdapter_Invalid(t *testing.T) {
	_, err := NewAdapter(nil).Parse(context.Background(), strings.NewReader("not an ofx file"))
	var inv *parsererror.InvalidFormatError
	assert.ErrorAs(t, err, &inv)
}

func TestPreprocess(t *testing.T) {
	in := "\n\n  <SEVERITY>Info</SEVERITY>\n<STMTTRN\n"
	out := preprocess(in)
	assert.True(t, strings.HasPrefix(out, "<SEVERITY>INFO</SEVERITY>"))
	assert.Contains(t, out, "<STMTTRN>")
}
