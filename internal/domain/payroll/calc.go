package payroll

import (
	"encoding/json"
	"math"
	"strconv"
)

// ComputeEmployeePayroll derives the pay figures for an already validated
// record.
func ComputeEmployeePayroll(emp EmployeeInput, schedule TaxSchedule) PayrollResult {
	gross := Round2(emp.Pay.BaseSalary + emp.Pay.Allowances.Total() + emp.Pay.Overtime.Pay())
	deductions := Round2(emp.Pay.Deductions.Total())
	tax := schedule.Tax(gross)
	net := Round2(gross - deductions - tax)

	return PayrollResult{
		EmployeeID:      emp.ID,
		Name:            emp.Name,
		GrossPay:        gross,
		TotalDeductions: deductions,
		Tax:             tax,
		NetPay:          net,
	}
}

type Calculator struct {
	Schedule TaxSchedule
}

func NewCalculator(schedule TaxSchedule) Calculator {
	if len(schedule) == 0 {
		schedule = DefaultSchedule()
	}
	return Calculator{Schedule: schedule}
}

// Compute validates one raw employee record and computes its payroll.
func (c Calculator) Compute(raw json.RawMessage) (PayrollResult, error) {
	emp, err := DecodeEmployee(raw)
	if err != nil {
		return PayrollResult{}, err
	}
	schedule := c.Schedule
	if len(schedule) == 0 {
		schedule = DefaultSchedule()
	}
	result := ComputeEmployeePayroll(emp, schedule)
	if err := checkFinite(result); err != nil {
		return PayrollResult{}, err
	}
	return result, nil
}

// checkFinite rejects results whose sums overflowed even though every input
// was finite, e.g. hours * rate_per_hour beyond the float64 range.
func checkFinite(r PayrollResult) error {
	amounts := []struct {
		field string
		value float64
	}{
		{FieldGrossPay, r.GrossPay},
		{FieldTotalDeductions, r.TotalDeductions},
		{FieldTax, r.Tax},
		{FieldNetPay, r.NetPay},
	}
	for _, a := range amounts {
		if math.IsInf(a.value, 0) || math.IsNaN(a.value) {
			return &InvalidNumberError{Field: a.field, Value: strconv.FormatFloat(a.value, 'g', -1, 64)}
		}
	}
	return nil
}
