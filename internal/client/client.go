// Package client реализует HTTP-транспорт к REST API консоли: базовый URL,
// общий cookie jar, JSON-кодирование, идентификатор запроса, ограничение
// частоты и разбор ошибок сервера в типизированные ошибки.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

const maxErrorBody = 1 << 20

// Client HTTP-клиент API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
	log        *slog.Logger
	newID      func() string
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient берет транспорт и настройки из h. Клиент работает с копией,
// поэтому h не меняется; без cookie jar у копии создается свой.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		cp := *h
		c.httpClient = &cp
	}
}

// WithTimeout задает таймаут запроса. Ноль оставляет поведение транспорта по умолчанию.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLimiter ограничивает частоту исходящих запросов.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithMetrics включает метрики запросов.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger задает логгер.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New создает клиент для baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	const op = "client.New"

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported scheme in %q", op, baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// BaseURL возвращает базовый адрес API.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Jar возвращает cookie jar клиента.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// ExpireCookies удаляет cookies с указанными именами для базового адреса.
func (c *Client) ExpireCookies(names ...string) {
	root := *c.baseURL
	root.Path = "/"
	cookies := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		cookies = append(cookies, &http.Cookie{
			Name:    name,
			Value:   "",
			Path:    "/",
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		})
	}
	c.httpClient.Jar.SetCookies(&root, cookies)
}

// Do выполняет запрос method к path. Непустой token отправляется в Authorization.
// body кодируется в JSON, если не nil; ответ 2xx декодируется в out, если out не nil.
func (c *Client) Do(ctx context.Context, method, path, token string, body, out any) error {
	const op = "client.Do"

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Err: fmt.Errorf("%s: rate limiter: %w", op, err)}
		}
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	requestID := c.newID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.With(
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, path, "error", time.Since(start))
		log.Debug("request failed", slog.String("error", err.Error()))
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	c.metrics.observe(method, path, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestFailedError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		log.Debug("request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("message", reqErr.Message),
		)
		return reqErr
	}

	log.Debug("request succeeded", slog.Int("status", resp.StatusCode))
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// errorMessage извлекает message из тела ошибки. Неразборчивое тело дает
// MsgUnknownError, пустое поле message дает MsgRequestFailed.
func errorMessage(body io.Reader) string {
	var e models.ErrorBody
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&e); err != nil {
		return MsgUnknownError
	}
	if e.Message == "" {
		return MsgRequestFailed
	}
	return e.Message
}
