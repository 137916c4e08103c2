// Package jwt выпускает и разбирает JWT-токены консоли.
//
// Maker нужен стороне, которая подписывает токены (фейковый API в тестах).
// Клиенту секрет неизвестен, поэтому ExpiresAt и Expired читают exp
// без проверки подписи: это подсказка для отбрасывания заведомо
// просроченной сессии, решение о доступе всегда принимает сервер.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

// Claims данные пользователя в токене.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Maker подписывает токены секретом с заданным сроком жизни.
type Maker struct {
	secret []byte
	ttl    time.Duration
}

// NewMaker создает Maker.
func NewMaker(secret string, ttl time.Duration) *Maker {
	return &Maker{secret: []byte(secret), ttl: ttl}
}

// Issue выпускает токен для username с ролью role.
func (m *Maker) Issue(username string, role models.Role) (string, error) {
	const op = "jwt.Issue"
	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Parse проверяет подпись и срок действия токена.
func (m *Maker) Parse(token string) (*Claims, error) {
	const op = "jwt.Parse"
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// ExpiresAt возвращает exp токена без проверки подписи.
// ok=false, если токен не JWT или exp отсутствует.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// Expired сообщает, что токен является JWT с exp не позже now.
// Непрозрачные токены не считаются просроченными.
func Expired(token string, now time.Time) bool {
	exp, ok := ExpiresAt(token)
	return ok && !exp.After(now)
}
