package payroll

type Allowances struct {
	HRA   float64 `json:"hra"`
	DA    float64 `json:"da"`
	Bonus float64 `json:"bonus"`
	Other float64 `json:"other"`
}

func (a Allowances) Total() float64 {
	return a.HRA + a.DA + a.Bonus + a.Other
}

type Overtime struct {
	Hours       float64 `json:"hours"`
	RatePerHour float64 `json:"rate_per_hour"`
}

// Pay is flat hours times rate; no premium multiplier and no hour cap.
func (o Overtime) Pay() float64 {
	return o.Hours * o.RatePerHour
}

type Deductions struct {
	PF              float64 `json:"pf"`
	ProfessionalTax float64 `json:"professional_tax"`
	Insurance       float64 `json:"insurance"`
	Other           float64 `json:"other"`
}

func (d Deductions) Total() float64 {
	return d.PF + d.ProfessionalTax + d.Insurance + d.Other
}

type Pay struct {
	BaseSalary float64    `json:"base_salary"`
	Allowances Allowances `json:"allowances"`
	Overtime   Overtime   `json:"overtime"`
	Deductions Deductions `json:"deductions"`
}

// EmployeeInput is a validated employee record. Build it with DecodeEmployee;
// every monetary field is already known to be finite and non-negative.
type EmployeeInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Pay  Pay    `json:"pay"`
}

type PayrollResult struct {
	EmployeeID      string  `json:"id"`
	Name            string  `json:"name"`
	GrossPay        float64 `json:"gross_pay"`
	TotalDeductions float64 `json:"total_deductions"`
	Tax             float64 `json:"tax"`
	NetPay          float64 `json:"net_pay"`
}

type Totals struct {
	EmployeeCount   int     `json:"employeeCount"`
	GrossPay        float64 `json:"grossPay"`
	TotalDeductions float64 `json:"totalDeductions"`
	Tax             float64 `json:"tax"`
	NetPay          float64 `json:"netPay"`
}

type Report struct {
	Results  []PayrollResult
	Failures []RecordError
}

func (r Report) Totals() Totals {
	totals := Totals{EmployeeCount: len(r.Results)}
	for _, result := range r.Results {
		totals.GrossPay += result.GrossPay
		totals.TotalDeductions += result.TotalDeductions
		totals.Tax += result.Tax
		totals.NetPay += result.NetPay
	}
	totals.GrossPay = Round2(totals.GrossPay)
	totals.TotalDeductions = Round2(totals.TotalDeductions)
	totals.Tax = Round2(totals.Tax)
	totals.NetPay = Round2(totals.NetPay)
	return totals
}
