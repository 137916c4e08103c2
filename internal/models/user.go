// Package models содержит доменные структуры консоли: пользователя сессии,
// ресурсы бэкенда (кассы, билеты, гиды, транзакции, сообщения) и аналитику.
// Структуры повторяют JSON-формат REST API.
package models

// Role роль учётной записи.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCounter Role = "counter"
)

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCounter:
		return true
	}
	return false
}

// User представляет вошедшего пользователя.
type User struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// Credentials тело запроса POST /api/auth/login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse ответ сервера на успешный вход.
type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// User выделяет профиль пользователя из ответа.
func (r LoginResponse) User() User {
	return User{
		Username:  r.Username,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
	}
}

// PasswordChange тело запросов смены пароля.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ErrorBody структура ошибки, которую возвращает API.
type ErrorBody struct {
	Message string `json:"message"`
}
