package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"paycalc/internal/domain/payroll"
)

// WritePayslips renders one PDF payslip per result into dir and returns the
// file paths in result order.
func WritePayslips(dir, periodLabel string, results []payroll.PayrollResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(results))
	for i, r := range results {
		path := filepath.Join(dir, payslipFileName(i, r.EmployeeID))
		if err := writePayslip(path, periodLabel, r); err != nil {
			return paths, fmt.Errorf("payslip %s: %w", r.EmployeeID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePayslip(path, periodLabel string, r payroll.PayrollResult) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Employee: %s (%s)", r.Name, r.EmployeeID)))
	pdf.Ln(7)
	if periodLabel != "" {
		pdf.Cell(0, 8, tr(fmt.Sprintf("Period: %s", periodLabel)))
		pdf.Ln(7)
	}
	pdf.Ln(3)
	pdf.Cell(0, 8, fmt.Sprintf("Gross: %.2f", r.GrossPay))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Deductions: %.2f", r.TotalDeductions))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Tax: %.2f", r.Tax))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net: %.2f", r.NetPay))

	return pdf.OutputFileAndClose(path)
}

// payslipFileName prefixes the batch position so duplicate ids never share a
// file.
func payslipFileName(index int, employeeID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, employeeID)
	return fmt.Sprintf("%04d-%s.pdf", index+1, name)
}
