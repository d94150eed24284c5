package domain

// UserType classifies portal users.
type UserType string

const (
	UserTypeCustomer   UserType = "CUSTOMER"
	UserTypeAgent      UserType = "AGENT"
	UserTypeTechnician UserType = "TECHNICIAN"
	UserTypeAdmin      UserType = "ADMIN"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeCustomer, UserTypeAgent, UserTypeTechnician, UserTypeAdmin:
		return true
	}
	return false
}

// IsStaff is true for agents and technicians, the users allowed to work tickets.
func (t UserType) IsStaff() bool {
	return t == UserTypeAgent || t == UserTypeTechnician
}

// AppUser wraps exactly one identity account.
type AppUser struct {
	ID             string
	IdentityUserID string
	DisplayName    string
	Username       string
	Email          string
	Phone          string
	UserType       UserType
	Active         bool
	AuditInfo
}
