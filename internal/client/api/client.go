package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/iudanet/banktech/pkg/api"
)

// DefaultTimeout таймаут HTTP запросов по умолчанию
const DefaultTimeout = 30 * time.Second

// HeaderRequestID заголовок для корреляции запросов в логах клиента и сервера
const HeaderRequestID = "X-Request-ID"

// Client представляет HTTP клиент для взаимодействия с банковским API.
// Клиент только читает токен из TokenSource и никогда не пишет в хранилище сессии.
type Client struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     *slog.Logger
	baseURL    string
}

// Option настраивает Client
type Option func(*Client)

// WithTokenSource задает источник access token для авторизованных запросов
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithHTTPClient заменяет HTTP клиент (используется в тестах)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout задает таймаут запросов
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.Default(),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Request описывает один вызов API
type Request struct {
	Body         any
	Query        url.Values
	Op           string // имя операции для сообщений об ошибках
	Method       string
	Path         string
	RequiresAuth bool
}

// Do выполняет запрос и декодирует успешный ответ в result (если result != nil).
// Ошибки: ErrUnauthenticated до отправки, *NetworkError при сбое транспорта,
// *APIError при статусе вне 2xx.
func (c *Client) Do(ctx context.Context, r Request, result any) error {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	requestID := req.Header.Get(HeaderRequestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Отмена контекста вызывающей стороной не является сбоем сети
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s request canceled: %w", r.Op, ctxErr)
		}
		c.logger.WarnContext(ctx, "api request failed",
			slog.String("op", r.Op),
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return &NetworkError{Op: r.Op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: r.Op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.DebugContext(ctx, "api request",
		slog.String("op", r.Op),
		slog.String("method", r.Method),
		slog.String("path", r.Path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(r.Op, resp.StatusCode, respBody)
	}

	// Декодируем успешный ответ
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", r.Op, err)
		}
	}

	return nil
}

// newRequest собирает HTTP запрос с телом, заголовками и bearer token
func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	// Токен проверяем до любой сетевой активности
	var token *oauth2.Token
	if r.RequiresAuth {
		if c.tokens == nil {
			return nil, fmt.Errorf("%s: %w", r.Op, ErrUnauthenticated)
		}
		tok, err := c.tokens.Token()
		if err != nil || tok == nil || tok.AccessToken == "" {
			return nil, fmt.Errorf("%s: %w", r.Op, ErrUnauthenticated)
		}
		token = tok
	}

	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var bodyReader io.Reader
	if r.Body != nil {
		jsonData, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, uuid.NewString())
	// Авторизованные вызовы всегда помечаются как JSON, даже без тела
	if r.Body != nil || r.RequiresAuth {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		// Для пустого TokenType oauth2 подставляет "Bearer"
		token.SetAuthHeader(req)
	}

	return req, nil
}

// newAPIError разбирает тело ошибки. Сообщение берется из поля message,
// а если тело не разбирается или поле пустое, используется "<op> failed".
func newAPIError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Op:      op,
		Status:  status,
		Message: op + " failed",
	}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Code = errResp.Error
		if errResp.Message != "" {
			apiErr.Message = errResp.Message
		}
	}

	return apiErr
}

// get выполняет авторизованный GET
func (c *Client) get(ctx context.Context, op, path string, query url.Values, result any) error {
	return c.Do(ctx, Request{Op: op, Method: http.MethodGet, Path: path, Query: query, RequiresAuth: true}, result)
}

// send выполняет авторизованный запрос с телом
func (c *Client) send(ctx context.Context, op, method, path string, body, result any) error {
	return c.Do(ctx, Request{Op: op, Method: method, Path: path, Body: body, RequiresAuth: true}, result)
}

// pathID экранирует идентификатор для подстановки в путь
func pathID(id string) string {
	return url.PathEscape(id)
}
