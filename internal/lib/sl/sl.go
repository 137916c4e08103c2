// Package sl собирает общие атрибуты slog, чтобы ошибки и имена операций
// во всех пакетах консоли логировались под одними ключами.
package sl

import "log/slog"

// Err атрибут "error" с текстом err. nil дает пустую строку.
//
//	log.Error("failed to fetch counters", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут с именем операции.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
