package employee

import "errors"

// Employee domain errors
var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
	ErrManagerNotFound    = errors.New("manager not found")
	ErrNotAManager        = errors.New("referenced employee is not a manager")

	ErrManagerAccessRequired = errors.New("manager access required")
	ErrAdminAccessRequired   = errors.New("admin access required")
)
