package writer

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/transtractor/internal/models"
)

func sampleStatement() *models.StatementData {
	day := time.Date(2020, time.March, 24, 0, 0, 0, 0, time.UTC)
	return &models.StatementData{
		Key:           "gb__testbank__current__1",
		AccountNumber: "12345678",
		Filename:      "march.pdf",
		Transactions: []models.Transaction{
			models.NewTransaction(day, 0, "COFFEE", decimal.RequireFromString("-4.5"), decimal.RequireFromString("95.5")),
			models.NewTransaction(day, 1, "SALARY", decimal.RequireFromString("1000"), decimal.RequireFromString("1095.50")),
		},
	}
}

func TestWriteDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	require.NoError(t, w.Write(&buf, sampleStatement()))

	want := "date,description,amount,balance\n" +
		"2020-03-24,COFFEE,-4.50,95.50\n" +
		"2020-03-24,SALARY,1000.00,1095.50\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSelectedFields(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{
		Fields:        []string{models.FieldKey, models.FieldAccountNumber, models.FieldDateIndex, models.FieldFilename},
		IncludeHeader: false,
	}
	require.NoError(t, w.Write(&buf, sampleStatement()))

	want := "gb__testbank__current__1,12345678,0,march.pdf\n" +
		"gb__testbank__current__1,12345678,1,march.pdf\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteRejectsUnknownField(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{Fields: []string{"iban"}}
	err := w.Write(&buf, sampleStatement())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iban")
	assert.Zero(t, buf.Len())
}

func TestWriteEmptyStatement(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	require.NoError(t, w.Write(&buf, &models.StatementData{}))
	assert.Equal(t, "date,description,amount,balance\n", buf.String())
}
