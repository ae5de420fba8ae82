package payroll

import (
	"bytes"
	"encoding/json"
	"strings"
)

type object map[string]json.RawMessage

// DecodeBatch splits a JSON array into its raw records. Anything other than a
// top-level array is fatal for the whole run.
func DecodeBatch(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &MalformedInputError{Field: fieldInput, Reason: "empty document"}
	}
	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, &MalformedInputError{Field: fieldInput, Reason: "invalid JSON"}
		}
		return nil, &MalformedInputError{Field: fieldInput, Reason: "must contain a JSON array of employees"}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &MalformedInputError{Field: fieldInput, Reason: "invalid JSON: " + err.Error()}
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// DecodeEmployee validates one raw record against the employee schema.
func DecodeEmployee(raw json.RawMessage) (EmployeeInput, error) {
	record, err := decodeObject(raw, fieldRecord, false)
	if err != nil {
		return EmployeeInput{}, err
	}

	id, err := identity(record, FieldID)
	if err != nil {
		return EmployeeInput{}, err
	}
	name, err := identity(record, FieldName)
	if err != nil {
		return EmployeeInput{}, err
	}

	// An absent pay means all zero; a present one, null included, must be an
	// object.
	pay := object{}
	if payRaw, ok := record[FieldPay]; ok {
		if pay, err = decodeObject(payRaw, FieldPay, false); err != nil {
			return EmployeeInput{}, err
		}
	}
	allowances, err := decodeObject(pay[FieldAllowances], FieldPay+"."+FieldAllowances, true)
	if err != nil {
		return EmployeeInput{}, err
	}
	overtime, err := decodeObject(pay[FieldOvertime], FieldPay+"."+FieldOvertime, true)
	if err != nil {
		return EmployeeInput{}, err
	}
	deductions, err := decodeObject(pay[FieldDeductions], FieldPay+"."+FieldDeductions, true)
	if err != nil {
		return EmployeeInput{}, err
	}

	emp := EmployeeInput{ID: id, Name: name}
	fields := []struct {
		source object
		key    string
		label  string
		dest   *float64
	}{
		{pay, "base_salary", FieldBaseSalary, &emp.Pay.BaseSalary},
		{allowances, "hra", FieldAllowanceHRA, &emp.Pay.Allowances.HRA},
		{allowances, "da", FieldAllowanceDA, &emp.Pay.Allowances.DA},
		{allowances, "bonus", FieldAllowanceBonus, &emp.Pay.Allowances.Bonus},
		{allowances, "other", FieldAllowanceOther, &emp.Pay.Allowances.Other},
		{overtime, "hours", FieldOvertimeHours, &emp.Pay.Overtime.Hours},
		{overtime, "rate_per_hour", FieldOvertimeRate, &emp.Pay.Overtime.RatePerHour},
		{deductions, "pf", FieldDeductionPF, &emp.Pay.Deductions.PF},
		{deductions, "professional_tax", FieldDeductionProfessionalTx, &emp.Pay.Deductions.ProfessionalTax},
		{deductions, "insurance", FieldDeductionInsurance, &emp.Pay.Deductions.Insurance},
		{deductions, "other", FieldDeductionOther, &emp.Pay.Deductions.Other},
	}
	for _, f := range fields {
		raw, ok := f.source[f.key]
		if !ok {
			continue
		}
		value, err := SafeNumber(raw, f.label)
		if err != nil {
			return EmployeeInput{}, err
		}
		*f.dest = value
	}
	return emp, nil
}

// decodeObject returns an empty object for absent input and, when optional,
// for JSON null.
func decodeObject(raw json.RawMessage, field string, optional bool) (object, error) {
	trimmed := bytes.TrimSpace(raw)
	if optional && (len(trimmed) == 0 || isNull(trimmed)) {
		return object{}, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &MalformedInputError{Field: field, Reason: "must be a JSON object"}
	}
	var out object
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, &MalformedInputError{Field: field, Reason: err.Error()}
	}
	return out, nil
}

func identity(record object, field string) (string, error) {
	raw := bytes.TrimSpace(record[field])
	var value string
	switch {
	case len(raw) == 0 || isNull(raw):
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &value); err != nil {
			return "", &MalformedInputError{Field: field, Reason: err.Error()}
		}
	case raw[0] == '-' || isDigit(raw[0]):
		value = string(raw)
	default:
		return "", &MalformedInputError{Field: field, Reason: "must be a string or number"}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &MissingIdentityError{Field: field}
	}
	return value, nil
}

func isNull(raw []byte) bool {
	return string(raw) == "null"
}
