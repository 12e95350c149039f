package userservice

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// User модель пользователя из UserService
type User struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Groups    []string `json:"groups"` // customer, specialist, owner, admin
}

// ToDomain конвертирует ответ в доменную модель
// Неизвестные группы отбрасываются
func (u *User) ToDomain() *domain.User {
	roles := make([]domain.Role, 0, len(u.Groups))
	for _, g := range u.Groups {
		switch role := domain.Role(g); role {
		case domain.RoleCustomer, domain.RoleSpecialist, domain.RoleOwner, domain.RoleAdmin:
			roles = append(roles, role)
		}
	}

	fullName := u.FirstName
	if u.LastName != "" {
		if fullName != "" {
			fullName += " "
		}
		fullName += u.LastName
	}

	return &domain.User{
		ID:       u.ID,
		Email:    u.Email,
		FullName: fullName,
		Roles:    roles,
	}
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
