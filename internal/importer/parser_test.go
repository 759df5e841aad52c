package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParse_Signed(t *testing.T) {
	csv := "date;note;amount\n" +
		"2024-03-01;Salary;15000000\n" +
		"2024-03-02;Coffee;-45000.50\n"

	rows, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2024, 3, 1), rows[0].Date)
	assert.Equal(t, "Salary", rows[0].Note)
	assert.True(t, dec("15000000").Equal(rows[0].Amount))

	assert.Equal(t, "Coffee", rows[1].Note)
	assert.True(t, dec("-45000.50").Equal(rows[1].Amount))
	assert.Nil(t, rows[1].CategoryID)
}

func TestParse_EuropeanStatementWithPreamble(t *testing.T) {
	csv := `Consultar saldos e movimentos - 31-01-2026
Conta;0000 - EUR
Saldo disponível;1.000,00 EUR

Data mov. ;Data-valor;Descrição ;Montante;Saldo
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
Saldo final;;;;41.393,66
`

	rows, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 1, 30), rows[0].Date)
	assert.True(t, dec("-588.74").Equal(rows[0].Amount))
	assert.Equal(t, date(2026, 1, 9), rows[1].Date)
	assert.True(t, dec("8608.52").Equal(rows[1].Amount))
}

func TestParse_DebitCredit(t *testing.T) {
	csv := "Date;Description;Debit;Credit\n" +
		"05/02/2024;Rent;1,200.00;\n" +
		"06/02/2024;Refund;;30.00\n" +
		"07/02/2024;Nothing;;\n"

	rows, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2024, 2, 5), rows[0].Date)
	assert.True(t, dec("-1200").Equal(rows[0].Amount))
	assert.True(t, dec("30").Equal(rows[1].Amount))
}

func TestParse_Charsets(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().
		String("date;note;amount\n2024-01-01;Café;-3,50\n")
	require.NoError(t, err)

	latin1, err := charmap.Windows1252.NewEncoder().
		String("Data mov.;Descrição;Montante\n01-01-2024;Café;-3,50\n")
	require.NoError(t, err)

	tests := map[string][]byte{
		"UTF8":    []byte("date;note;amount\n2024-01-01;Café;-3,50\n"),
		"UTF8BOM": append([]byte{0xEF, 0xBB, 0xBF}, "date;note;amount\n2024-01-01;Café;-3,50\n"...),
		"UTF16LE": []byte(utf16),
		"Latin1":  []byte(latin1),
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			rows, err := importer.Parse(bytes.NewReader(input))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Café", rows[0].Note)
			assert.True(t, dec("-3.5").Equal(rows[0].Amount))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "NoHeader",
			input:   "foo;bar\n1;2\n",
			wantMsg: "Unrecognised statement format: expected date;note;amount columns",
		},
		{
			name:    "BadAmount",
			input:   "date;note;amount\n2024-01-01;Coffee;abc\n",
			wantMsg: "row 2: invalid amount",
		},
		{
			name:    "MissingNote",
			input:   "date;note;amount\n2024-01-01;;-5\n",
			wantMsg: "row 2: missing note",
		},
		{
			name:    "Empty",
			input:   "date;note;amount\n",
			wantMsg: "Statement has no transactions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.Parse(strings.NewReader(tt.input))
			require.Error(t, err)

			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Equal(t, tt.wantMsg, e.Message)
		})
	}
}
