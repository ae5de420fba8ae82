package payroll

const (
	PolicyFailFast = "fail_fast"
	PolicyCollect  = "collect"

	FieldID                      = "id"
	FieldName                    = "name"
	FieldPay                     = "pay"
	FieldBaseSalary              = "base_salary"
	FieldAllowances              = "allowances"
	FieldAllowanceHRA            = "allowances.hra"
	FieldAllowanceDA             = "allowances.da"
	FieldAllowanceBonus          = "allowances.bonus"
	FieldAllowanceOther          = "allowances.other"
	FieldOvertime                = "overtime"
	FieldOvertimeHours           = "overtime.hours"
	FieldOvertimeRate            = "overtime.rate_per_hour"
	FieldDeductions              = "deductions"
	FieldDeductionPF             = "deductions.pf"
	FieldDeductionProfessionalTx = "deductions.professional_tax"
	FieldDeductionInsurance      = "deductions.insurance"
	FieldDeductionOther          = "deductions.other"

	// Computed amounts, reported when a figure overflows.
	FieldGrossPay        = "gross_pay"
	FieldTotalDeductions = "total_deductions"
	FieldTax             = "tax"
	FieldNetPay          = "net_pay"

	fieldRecord = "record"
	fieldInput  = "input"
)
