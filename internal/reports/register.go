package reports

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"paycalc/internal/domain/payroll"
)

type registerRow struct {
	EmployeeID      string `csv:"employee_id"`
	Name            string `csv:"name"`
	GrossPay        string `csv:"gross_pay"`
	TotalDeductions string `csv:"total_deductions"`
	Tax             string `csv:"tax"`
	NetPay          string `csv:"net_pay"`
}

// WriteRegister exports the payroll register as CSV, one row per employee
// plus a TOTAL row.
func WriteRegister(w io.Writer, results []payroll.PayrollResult) error {
	rows := make([]registerRow, 0, len(results)+1)
	for _, r := range results {
		rows = append(rows, registerRow{
			EmployeeID:      r.EmployeeID,
			Name:            r.Name,
			GrossPay:        money(r.GrossPay),
			TotalDeductions: money(r.TotalDeductions),
			Tax:             money(r.Tax),
			NetPay:          money(r.NetPay),
		})
	}
	totals := payroll.Report{Results: results}.Totals()
	rows = append(rows, registerRow{
		EmployeeID:      "TOTAL",
		Name:            fmt.Sprintf("%d employees", totals.EmployeeCount),
		GrossPay:        money(totals.GrossPay),
		TotalDeductions: money(totals.TotalDeductions),
		Tax:             money(totals.Tax),
		NetPay:          money(totals.NetPay),
	})
	return gocsv.Marshal(rows, w)
}

func SaveRegister(path string, results []payroll.PayrollResult) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteRegister(w, results)
	})
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
