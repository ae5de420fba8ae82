package reports

import (
	"fmt"
	"io"
	"strings"

	"paycalc/internal/domain/payroll"
)

var separator = strings.Repeat("-", 72)

// WriteTable prints the fixed-width payroll table.
func WriteTable(w io.Writer, results []payroll.PayrollResult) error {
	lines := []string{
		"",
		"PAYROLL REPORT",
		separator,
		fmt.Sprintf("%-8s %-20s %10s %10s %8s %10s", "ID", "Name", "Gross", "Deduct", "Tax", "Net"),
		separator,
	}
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%-8s %-20s %10.2f %10.2f %8.2f %10.2f",
			r.EmployeeID, r.Name, r.GrossPay, r.TotalDeductions, r.Tax, r.NetPay))
	}
	lines = append(lines, separator)
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// WriteFailures lists records skipped under the collect policy.
func WriteFailures(w io.Writer, failures []payroll.RecordError) error {
	if len(failures) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("\nFAILED RECORDS\n")
	b.WriteString(separator + "\n")
	for _, f := range failures {
		id := f.ID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(&b, "#%-4d %-8s %v\n", f.Index, id, f.Err)
	}
	b.WriteString(separator + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}
