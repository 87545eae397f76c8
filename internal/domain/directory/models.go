package directory

import "time"

const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// Employee is the read-only directory record consumed by the leave
// subsystem. Gender and HireDate may be unset for older records.
type Employee struct {
	ID        string     `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Gender    string     `json:"gender,omitempty"`
	HireDate  *time.Time `json:"hireDate,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
}
