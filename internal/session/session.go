// Package session хранит состояние аутентификации консоли: bearer-токен и
// профиль вошедшего пользователя.
//
// Store переживает перезапуск процесса через cache.Storage, а до завершения
// Hydrate находится в состоянии StateUnknown: зависимый код должен дождаться
// Ready, а не считать пользователя вышедшим. Все операции сообщают результат
// через notify.Reporter и не возвращают ошибок.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/magabrotheeeer/venue-console/internal/cache"
	"github.com/magabrotheeeer/venue-console/internal/client"
	"github.com/magabrotheeeer/venue-console/internal/lib/jwt"
	"github.com/magabrotheeeer/venue-console/internal/lib/sl"
	"github.com/magabrotheeeer/venue-console/internal/models"
	"github.com/magabrotheeeer/venue-console/internal/notify"
)

// Ключи долговременного хранилища и cookies сессии.
const (
	KeyToken = "token"
	KeyUser  = "user"

	CookieAuthToken = "authToken"
	CookieSession   = "session"

	// RootPath неаутентифицированная точка входа.
	RootPath = "/"
)

// State состояние сессии.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// API транспорт, которым пользуется Store. Реализуется *client.Client.
type API interface {
	Do(ctx context.Context, method, path, token string, body, out any) error
	ExpireCookies(names ...string)
}

// Navigator выполняет переход после выхода.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc адаптер функции к Navigator.
type NavigatorFunc func(path string)

// Navigate вызывает f.
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Store источник истины о том, кто вошел в систему.
type Store struct {
	api       API
	storage   cache.Storage
	reporter  notify.Reporter
	navigator Navigator
	log       *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	state State
	token string
	user  *models.User

	ready     chan struct{}
	readyOnce sync.Once
}

// Option настраивает Store.
type Option func(*Store)

// WithNavigator задает обработчик перехода после выхода.
func WithNavigator(n Navigator) Option {
	return func(s *Store) { s.navigator = n }
}

// WithClock подменяет часы для проверки срока действия токена.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New создает Store в состоянии StateUnknown.
func New(api API, storage cache.Storage, reporter notify.Reporter, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		api:       api,
		storage:   storage,
		reporter:  reporter,
		navigator: NavigatorFunc(func(string) {}),
		log:       log,
		now:       time.Now,
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token возвращает текущий токен или пустую строку.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User возвращает профиль вошедшего пользователя.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// State возвращает текущее состояние.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready закрывается, когда состояние сессии становится известным.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Hydrate восстанавливает сессию из хранилища. Повторный вызов ничего не делает.
// Неполная запись или истекший JWT стираются, сессия становится анонимной.
func (s *Store) Hydrate(ctx context.Context) {
	const op = "session.Hydrate"
	log := s.log.With(sl.Op(op))
	defer s.markReady()

	if s.State() != StateUnknown {
		return
	}

	token, user, err := s.load(ctx)
	if err != nil {
		log.Warn("failed to read stored session", sl.Err(err))
	}

	valid := err == nil && token != "" && user != nil
	if valid && jwt.Expired(token, s.now()) {
		log.Info("stored token expired")
		valid = false
	}

	s.mu.Lock()
	if s.state != StateUnknown {
		s.mu.Unlock()
		return
	}
	if valid {
		s.token, s.user, s.state = token, user, StateAuthenticated
	} else {
		s.state = StateAnonymous
	}
	s.mu.Unlock()

	if valid {
		log.Info("session restored", slog.String("username", user.Username))
		return
	}
	if token != "" || user != nil || err != nil {
		s.clearStorage(ctx, log)
	}
}

func (s *Store) load(ctx context.Context) (string, *models.User, error) {
	var token string
	if _, err := s.storage.Get(ctx, KeyToken, &token); err != nil {
		return "", nil, err
	}
	var user models.User
	found, err := s.storage.Get(ctx, KeyUser, &user)
	if err != nil {
		return token, nil, err
	}
	if !found {
		return token, nil, nil
	}
	return token, &user, nil
}

// Login отправляет учетные данные и при успехе сохраняет сессию.
// Ожидаемые ошибки аутентификации и сети сообщаются уведомлением и дают false.
func (s *Store) Login(ctx context.Context, username, password string) bool {
	const op = "session.Login"
	log := s.log.With(sl.Op(op), slog.String("username", username))

	var resp models.LoginResponse
	err := s.api.Do(ctx, http.MethodPost, "/api/auth/login", "", models.Credentials{
		Username: username,
		Password: password,
	}, &resp)
	if err == nil && resp.Token == "" {
		err = &client.RequestFailedError{Status: http.StatusOK, Message: "Invalid credentials"}
	}
	if err != nil {
		log.Info("login failed", sl.Err(err))
		s.reportFailure(err, "Login failed", "Login error", "Invalid credentials")
		return false
	}

	user := resp.User()
	s.mu.Lock()
	s.token, s.user, s.state = resp.Token, &user, StateAuthenticated
	s.mu.Unlock()
	s.markReady()

	if err := s.persist(ctx, resp.Token, user); err != nil {
		log.Warn("failed to persist session", sl.Err(err))
	}

	log.Info("login success", slog.String("role", string(user.Role)))
	s.reporter.Notify(notify.KindSuccess, "Login successful", fmt.Sprintf("Welcome back, %s!", user.Username))
	return true
}

func (s *Store) persist(ctx context.Context, token string, user models.User) error {
	if err := s.storage.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	return s.storage.Set(ctx, KeyUser, user)
}

// Logout сбрасывает сессию, хранилище и cookies, затем переходит на RootPath.
// Безопасен без активной сессии.
func (s *Store) Logout(ctx context.Context) {
	const op = "session.Logout"
	log := s.log.With(sl.Op(op))

	s.mu.Lock()
	s.token, s.user, s.state = "", nil, StateAnonymous
	s.mu.Unlock()
	s.markReady()

	s.clearStorage(ctx, log)
	s.api.ExpireCookies(CookieAuthToken, CookieSession)

	log.Info("logged out")
	s.reporter.Notify(notify.KindSuccess, "Logged out", "You have been successfully logged out.")
	s.navigator.Navigate(RootPath)
}

func (s *Store) clearStorage(ctx context.Context, log *slog.Logger) {
	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.storage.Invalidate(ctx, key); err != nil {
			log.Warn("failed to clear stored session", slog.String("key", key), sl.Err(err))
		}
	}
}

// ChangePassword меняет пароль кассы через PUT /api/counters/change-password.
func (s *Store) ChangePassword(ctx context.Context, currentPassword, newPassword string) bool {
	return s.updatePassword(ctx, "session.ChangePassword", "/api/counters/change-password", currentPassword, newPassword, passwordTexts{
		success:     "Password changed",
		successText: "Your password has been changed successfully.",
		failed:      "Password change failed",
		fallback:    "Failed to change password",
		networkErr:  "Password change error",
	})
}

// UpdateProfile меняет пароль через PUT /api/auth/profile.
func (s *Store) UpdateProfile(ctx context.Context, currentPassword, newPassword string) bool {
	return s.updatePassword(ctx, "session.UpdateProfile", "/api/auth/profile", currentPassword, newPassword, passwordTexts{
		success:     "Profile updated",
		successText: "Your password has been updated successfully.",
		failed:      "Update failed",
		fallback:    "Failed to update profile",
		networkErr:  "Update error",
	})
}

type passwordTexts struct {
	success, successText string
	failed, fallback     string
	networkErr           string
}

func (s *Store) updatePassword(ctx context.Context, op, path, currentPassword, newPassword string, texts passwordTexts) bool {
	log := s.log.With(sl.Op(op))

	token := s.Token()
	if token == "" {
		log.Warn("no active session")
		s.reporter.Notify(notify.KindError, "Authentication required", client.MsgAuthRequired)
		return false
	}

	err := s.api.Do(ctx, http.MethodPut, path, token, models.PasswordChange{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, nil)
	if err != nil {
		log.Info("password update failed", sl.Err(err))
		s.reportFailure(err, texts.failed, texts.networkErr, texts.fallback)
		return false
	}

	log.Info("password updated")
	s.reporter.Notify(notify.KindSuccess, texts.success, texts.successText)
	return true
}

// reportFailure превращает ошибку в уведомление. Серверное сообщение
// показывается как есть, пустое или неразборчивое заменяется fallback.
func (s *Store) reportFailure(err error, title, networkTitle, fallback string) {
	var reqErr *client.RequestFailedError
	switch {
	case client.IsNetwork(err):
		s.reporter.Notify(notify.KindError, networkTitle, client.MsgNetworkError)
	case errors.As(err, &reqErr):
		msg := reqErr.Message
		if msg == "" || msg == client.MsgRequestFailed || msg == client.MsgUnknownError {
			msg = fallback
		}
		s.reporter.Notify(notify.KindError, title, msg)
	default:
		s.reporter.Notify(notify.KindError, networkTitle, client.Message(err))
	}
}
