package models

type Department string

const (
	DepartmentHR         Department = "HR"
	DepartmentIT         Department = "IT"
	DepartmentFinance    Department = "FINANCE"
	DepartmentMarketing  Department = "MARKETING"
	DepartmentSales      Department = "SALES"
	DepartmentOperations Department = "OPERATIONS"
)

// Departments lists the recognized codes in display order.
var Departments = []Department{
	DepartmentHR,
	DepartmentIT,
	DepartmentFinance,
	DepartmentMarketing,
	DepartmentSales,
	DepartmentOperations,
}

var departmentLabels = map[Department]string{
	DepartmentHR:         "Human Resources",
	DepartmentIT:         "Information Technology",
	DepartmentFinance:    "Finance",
	DepartmentMarketing:  "Marketing",
	DepartmentSales:      "Sales",
	DepartmentOperations: "Operations",
}

func (d Department) Valid() bool {
	_, ok := departmentLabels[d]
	return ok
}

// Label returns the display name, or the raw code for unknown values.
func (d Department) Label() string {
	if label, ok := departmentLabels[d]; ok {
		return label
	}
	return string(d)
}

// ParseDepartment accepts exact codes only, "it" is not "IT".
func ParseDepartment(raw string) (Department, bool) {
	d := Department(raw)
	return d, d.Valid()
}
