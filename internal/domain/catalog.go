package domain

// Role is a role-group membership supplied by the identity provider
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleSpecialist Role = "specialist"
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
)

// User represents an authenticated platform user
type User struct {
	ID       int64
	Email    string
	FullName string
	Roles    []Role
}

// HasRole returns true if the user belongs to the role group
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Service represents a service offered by a position
type Service struct {
	ID              int64
	PositionID      int64
	Name            string
	Price           float64
	DurationMinutes int
}

// Position represents a role within a business with its own working hours
type Position struct {
	ID            int64
	BusinessID    int64
	Name          string
	WorkingTime   map[string][]string // "Mon" -> ["09:00", "18:00"] или [] (выходной)
	SpecialistIDs []int64
}

// HasSpecialist returns true if the specialist holds the position
func (p *Position) HasSpecialist(specialistID int64) bool {
	for _, id := range p.SpecialistIDs {
		if id == specialistID {
			return true
		}
	}
	return false
}

// Business owns positions; its working time is inherited by positions without their own
type Business struct {
	ID          int64
	OwnerID     int64
	Name        string
	WorkingTime map[string][]string
}
