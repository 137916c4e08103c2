// Package password хеширует пароли bcrypt. Консоль пароли не хранит, пакет
// нужен фейковому API, который ведет учетные записи так же, как бэкенд.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash возвращает bcrypt-хеш пароля с указанной стоимостью.
// Стоимость ниже bcrypt.MinCost заменяется bcrypt.DefaultCost.
func Hash(password string, cost int) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сравнивает хеш с паролем. nil означает совпадение.
func Compare(hash, password string) error {
	const op = "password.Compare"
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
