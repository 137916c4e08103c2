// Package phone нормализует номера телефонов перед отправкой CRM-сообщений.
// Шлюз номера не проверяет, это обязанность вызывающего кода.
package phone

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator"
)

// DefaultCountryCode код страны, который подставляется, если номер без "+".
const DefaultCountryCode = "+91"

var (
	validate = newValidator()
	pattern  = regexp.MustCompile(`^\+\d{10,15}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	// "+" и от 10 до 15 цифр, ведущий ноль допустим
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	return v
}

// Normalize обрезает пробелы и добавляет countryCode, если номер не начинается с "+".
// Пустой countryCode заменяется на DefaultCountryCode.
func Normalize(raw, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "+") {
		trimmed = countryCode + trimmed
	}
	return trimmed
}

// Valid проверяет формат "+" и от 10 до 15 цифр.
func Valid(phone string) bool {
	return validate.Var(phone, "required,phone") == nil
}

// NormalizeList нормализует каждую непустую строку и оставляет только валидные номера.
// Возвращает принятые номера и отброшенные исходные строки.
func NormalizeList(lines []string, countryCode string) (accepted, rejected []string) {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p := Normalize(line, countryCode)
		if Valid(p) {
			accepted = append(accepted, p)
		} else {
			rejected = append(rejected, line)
		}
	}
	return accepted, rejected
}

// SplitLines разбивает многострочный ввод на строки.
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
