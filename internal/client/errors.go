package client

import (
	"errors"
	"fmt"
)

// ErrAuthRequired операция требует токен, а сессии нет. Сетевой вызов не выполнялся.
var ErrAuthRequired = errors.New("authentication required")

// Тексты по умолчанию для сообщений об ошибках.
const (
	MsgAuthRequired  = "Please log in to perform this action"
	MsgNetworkError  = "Network error. Please try again."
	MsgUnknownError  = "Unknown error"
	MsgRequestFailed = "Request failed"
)

// RequestFailedError сервер ответил не-2xx статусом.
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

// NetworkError ответ не получен: ошибка соединения, отмена контекста и т.п.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Message возвращает текст ошибки для показа пользователю.
func Message(err error) string {
	var reqErr *RequestFailedError
	var netErr *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthRequired):
		return MsgAuthRequired
	case errors.As(err, &reqErr):
		return reqErr.Message
	case errors.As(err, &netErr):
		return MsgNetworkError
	default:
		return err.Error()
	}
}

// IsNetwork сообщает, является ли err сетевой ошибкой.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
