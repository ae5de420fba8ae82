package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycalc/internal/domain/payroll"
)

var sample = []payroll.PayrollResult{
	{EmployeeID: "E1", Name: "A", GrossPay: 30000, TotalDeductions: 0, Tax: 250, NetPay: 29750},
	{EmployeeID: "E2", Name: "Björn Ångström", GrossPay: 1234.5, TotalDeductions: 2000, Tax: 0, NetPay: -765.5},
}

func TestWriteJSONKeyOrderAndIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample[:1]))

	want := `[
  {
    "id": "E1",
    "name": "A",
    "gross_pay": 30000,
    "total_deductions": 0,
    "tax": 250,
    "net_pay": 29750
  }
]
`
	assert.Equal(t, want, buf.String())
}

func TestWriteJSONEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestSaveJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payroll_report.json")
	require.NoError(t, SaveJSON(path, sample))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []payroll.PayrollResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sample, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be cleaned up")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sample[:1]))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "", lines[0])
	assert.Equal(t, "PAYROLL REPORT", lines[1])
	assert.Equal(t, strings.Repeat("-", 72), lines[2])
	assert.Equal(t, "ID       Name                      Gross     Deduct      Tax        Net", lines[3])
	assert.Equal(t, "E1       A                      30000.00       0.00   250.00   29750.00", lines[5])
	assert.Equal(t, strings.Repeat("-", 72), lines[6])
}

func TestWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFailures(&buf, nil))
	assert.Empty(t, buf.String())

	failures := []payroll.RecordError{
		{Index: 3, ID: "E4", Err: &payroll.NegativeValueError{Field: "base_salary", Value: -100}},
		{Index: 5, Err: errors.New("boom")},
	}
	require.NoError(t, WriteFailures(&buf, failures))
	out := buf.String()
	assert.Contains(t, out, "FAILED RECORDS")
	assert.Contains(t, out, `#3    E4       negative value not allowed for "base_salary": -100`)
	assert.Contains(t, out, "#5    -        boom")
}

func TestWriteRegister(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, sample))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "employee_id,name,gross_pay,total_deductions,tax,net_pay", lines[0])
	assert.Equal(t, "E1,A,30000.00,0.00,250.00,29750.00", lines[1])
	assert.Equal(t, "TOTAL,2 employees,31234.50,2000.00,250.00,28984.50", lines[3])
}

func TestWritePayslips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "payslips")
	results := append([]payroll.PayrollResult{}, sample...)
	results = append(results, payroll.PayrollResult{EmployeeID: "E1", Name: "Dup"})
	results = append(results, payroll.PayrollResult{EmployeeID: "../etc/x", Name: "Evil"})

	paths, err := WritePayslips(dir, "2026-10", results)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, filepath.Join(dir, "0001-E1.pdf"), paths[0])
	assert.Equal(t, filepath.Join(dir, "0003-E1.pdf"), paths[2])
	assert.Equal(t, filepath.Join(dir, "0004-___etc_x.pdf"), paths[3])

	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), path)
	}
}
