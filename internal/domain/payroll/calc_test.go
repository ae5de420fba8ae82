package payroll

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestComputeEmployeePayroll(t *testing.T) {
	emp := EmployeeInput{
		ID:   "E7",
		Name: "Priya",
		Pay: Pay{
			BaseSalary: 40000,
			Allowances: Allowances{HRA: 8000, DA: 2000, Bonus: 1500, Other: 500},
			Overtime:   Overtime{Hours: 10, RatePerHour: 250},
			Deductions: Deductions{PF: 1800, ProfessionalTax: 200, Insurance: 500, Other: 100},
		},
	}

	result := ComputeEmployeePayroll(emp, DefaultSchedule())
	if result.GrossPay != 54500 {
		t.Fatalf("expected gross 54500, got %v", result.GrossPay)
	}
	if result.TotalDeductions != 2600 {
		t.Fatalf("expected deductions 2600, got %v", result.TotalDeductions)
	}
	// 5% of 25,000 plus 10% of 4,500
	if result.Tax != 1700 {
		t.Fatalf("expected tax 1700, got %v", result.Tax)
	}
	if result.NetPay != 50200 {
		t.Fatalf("expected net 50200, got %v", result.NetPay)
	}
	if result.EmployeeID != "E7" || result.Name != "Priya" {
		t.Fatalf("unexpected identity: %+v", result)
	}
}

func TestComputeEmployeePayrollAllowsNegativeNet(t *testing.T) {
	emp := EmployeeInput{
		ID:   "E2",
		Name: "B",
		Pay: Pay{
			BaseSalary: 1000,
			Deductions: Deductions{Insurance: 1500.5},
		},
	}
	result := ComputeEmployeePayroll(emp, DefaultSchedule())
	if result.NetPay != -500.5 {
		t.Fatalf("expected net -500.5, got %v", result.NetPay)
	}
}

func TestCalculatorComputeExample(t *testing.T) {
	calc := NewCalculator(nil)
	result, err := calc.Compute(json.RawMessage(`{"id":"E1","name":"A","pay":{"base_salary":30000}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := PayrollResult{EmployeeID: "E1", Name: "A", GrossPay: 30000, TotalDeductions: 0, Tax: 250, NetPay: 29750}
	if result != want {
		t.Fatalf("expected %+v, got %+v", want, result)
	}
}

func TestCalculatorComputeRoundsGross(t *testing.T) {
	calc := NewCalculator(nil)
	result, err := calc.Compute(json.RawMessage(`{"id":"E3","name":"C","pay":{"base_salary":"1000.004","overtime":{"hours":1.5,"rate_per_hour":"33.333"}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.GrossPay != 1050 {
		t.Fatalf("expected gross 1050, got %v", result.GrossPay)
	}
}

func TestCalculatorComputePropagatesValidationErrors(t *testing.T) {
	calc := NewCalculator(nil)

	_, err := calc.Compute(json.RawMessage(`{"id":" ","name":"A"}`))
	var missing *MissingIdentityError
	if !errors.As(err, &missing) || missing.Field != FieldID {
		t.Fatalf("expected missing id error, got %v", err)
	}

	_, err = calc.Compute(json.RawMessage(`{"id":"E1","name":"A","pay":{"allowances":{"bonus":"abc"}}}`))
	var invalid *InvalidNumberError
	if !errors.As(err, &invalid) || invalid.Field != FieldAllowanceBonus {
		t.Fatalf("expected invalid bonus error, got %v", err)
	}

	_, err = calc.Compute(json.RawMessage(`{"id":"E1","name":"A","pay":{"base_salary":-100}}`))
	var negative *NegativeValueError
	if !errors.As(err, &negative) || negative.Field != FieldBaseSalary || negative.Value != -100 {
		t.Fatalf("expected negative base salary error, got %v", err)
	}
}

func TestNetEqualsGrossMinusDeductionsMinusTax(t *testing.T) {
	calc := NewCalculator(nil)
	records := []string{
		`{"id":"1","name":"a","pay":{"base_salary":25000.01}}`,
		`{"id":"2","name":"b","pay":{"base_salary":99999.99,"deductions":{"pf":1234.56}}}`,
		`{"id":"3","name":"c","pay":{"base_salary":0.1,"allowances":{"hra":0.2},"deductions":{"other":0.3}}}`,
		`{"id":"4","name":"d","pay":{"base_salary":180000,"overtime":{"hours":12.5,"rate_per_hour":410.4}}}`,
	}
	for _, rec := range records {
		result, err := calc.Compute(json.RawMessage(rec))
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", rec, err)
		}
		if result.NetPay != Round2(result.GrossPay-result.TotalDeductions-result.Tax) {
			t.Fatalf("net mismatch for %s: %+v", rec, result)
		}
	}
}

func TestCalculatorComputeRejectsOverflow(t *testing.T) {
	calc := NewCalculator(nil)
	records := map[string]string{
		`{"id":"E1","name":"A","pay":{"overtime":{"hours":1e200,"rate_per_hour":1e200}}}`:   FieldGrossPay,
		`{"id":"E2","name":"B","pay":{"base_salary":1.7e308,"allowances":{"hra":1.7e308}}}`: FieldGrossPay,
		`{"id":"E3","name":"C","pay":{"deductions":{"pf":1.7e308,"insurance":1.7e308}}}`:    FieldTotalDeductions,
	}
	for rec, field := range records {
		result, err := calc.Compute(json.RawMessage(rec))
		var invalid *InvalidNumberError
		if !errors.As(err, &invalid) || invalid.Field != field {
			t.Fatalf("expected overflow on %s for %s, got result %+v err %v", field, rec, result, err)
		}
		if result != (PayrollResult{}) {
			t.Fatalf("expected empty result for %s, got %+v", rec, result)
		}
	}
}
