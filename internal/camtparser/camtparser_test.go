package camtparser

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

const camtDocument = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.02">
  <BkToCstmrStmt>
    <Stmt>
      <Acct>
        <Svcr><FinInstnId><BIC>ROYCCAT2</BIC></FinInstnId></Svcr>
      </Acct>
      <Ntry>
        <Amt Ccy="CAD">5.75</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <BookgDt><Dt>2024-01-15</Dt></BookgDt>
        <AddtlNtryInf>STARBUCKS   COFFEE</AddtlNtryInf>
      </Ntry>
      <Ntry>
        <Amt Ccy="CAD">2500.00</Amt>
        <CdtDbtInd>CRDT</CdtDbtInd>
        <BookgDt><DtTm>2024-01-16T08:30:00</DtTm></BookgDt>
        <NtryDtls><TxDtls>
          <RmtInf><Ustrd>PAYROLL DEPOSIT</Ustrd></RmtInf>
        </TxDtls></NtryDtls>
      </Ntry>
      <Ntry>
        <Amt Ccy="CAD">80.00</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <ValDt><Dt>2024-01-17</Dt></ValDt>
        <NtryDtls><TxDtls>
          <RltdPties>
            <Dbtr><Nm>ME</Nm></Dbtr>
            <Cdtr><Nm>HYDRO ONE</Nm></Cdtr>
          </RltdPties>
        </TxDtls></NtryDtls>
      </Ntry>
    </Stmt>
  </BkToCstmrStmt>
</Document>`

func TestAdapter_Parse(t *testing.T) {
	stmt, err := NewAdapter(logging.NewMockLogger()).Parse(context.Background(), strings.NewReader(camtDocument))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 3)

	coffee := stmt.Transactions[0]
	assert.Equal(t, "2024-01-15", coffee.Date)
	assert.Equal(t, "STARBUCKS COFFEE", coffee.Description)
	assert.Equal(t, "-5.75", coffee.Amount.String())
	assert.Equal(t, models.TypeDebit, coffee.Type)
	assert.NotEmpty(t, coffee.ID)

	payroll := stmt.Transactions[1]
	assert.Equal(t, "2024-01-16", payroll.Date)
	assert.Equal(t, "PAYROLL DEPOSIT", payroll.Description)
	assert.Equal(t, "2500", payroll.Amount.String())
	assert.Equal(t, models.TypeCredit, payroll.Type)

	hydro := stmt.Transactions[2]
	assert.Equal(t, "2024-01-17", hydro.Date)
	assert.Equal(t, "HYDRO ONE", hydro.Description)

	assert.Equal(t, "ROYCCAT2", stmt.Metadata.Bank)
	assert.Equal(t, StatementType, stmt.Metadata.StatementType)
	assert.Equal(t, 3, stmt.Metadata.TotalTransactions)
}

func TestAdapter_NotXML(t *testing.T) {
	_, err := NewAdapter(nil).Parse(context.Background(), strings.NewReader("Date,Description,Amount"))
	var inv *parsererror.InvalidFormatError
	assert.ErrorAs(t, err, &inv)
}

func TestAdapter_NotCAMT(t *testing.T) {
	_, err := NewAdapter(nil).Parse(context.Background(), strings.NewReader("<OFX><BANKMSGSRSV1/></OFX>"))
	var inv *parsererror.InvalidFormatError
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Msg, "BkToCstmrStmt")
}

func TestAdapter_NoEntries(t *testing.T) {
	doc := `<Document><BkToCstmrStmt><Stmt></Stmt></BkToCstmrStmt></Document>`
	_, err := NewAdapter(nil).Parse(context.Background(), strings.NewReader(doc))
	assert.ErrorIs(t, err, parsererror.ErrNoTransactions)
}

func TestAdapter_MissingAmount(t *testing.T) {
	doc := `<Document><BkToCstmrStmt><Stmt><Ntry><CdtDbtInd>DBIT</CdtDbtInd></Ntry></Stmt></BkToCstmrStmt></Document>`
	_, err := NewAdapter(nil).Parse(context.Background(), strings.NewReader(doc))
	var ext *parsererror.DataExtractionError
	assert.ErrorAs(t, err, &ext)
}

func TestAdapter_Format(t *testing.T) {
	assert.Equal(t, "camt", NewAdapter(nil).Format())
}
