package models

import "fmt"

// Employee is a directory entry as returned by /auth/users and /attendance/users.
type Employee struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Employees []Employee

func (e Employees) Validate() error {
	for i, emp := range e {
		if emp.ID <= 0 {
			return fmt.Errorf("employee %d has no id", i)
		}
	}
	return nil
}

func (e Employees) Find(id int) (Employee, bool) {
	for _, emp := range e {
		if emp.ID == id {
			return emp, true
		}
	}
	return Employee{}, false
}
