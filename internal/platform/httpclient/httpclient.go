package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader viaja en cada request para correlacionar con logs del servidor.
	RequestIDHeader = "X-Request-ID"

	// DefaultMaxBody es el límite de body si Client.MaxBody es 0.
	DefaultMaxBody = 1 << 20 // 1MB
)

// ErrBodyTooLarge indica que la respuesta superó Client.MaxBody. El body no se
// decodifica: un JSON cortado no debe pasar por una respuesta válida.
var ErrBodyTooLarge = errors.New("httpclient: response body too large")

// Client envuelve *http.Client con helpers comunes para adapters.
type Client struct {
	HTTP    *http.Client
	BaseURL string // opcional; si se define, DoJSON puede recibir paths relativos

	// MaxBody en bytes; 0 usa DefaultMaxBody.
	MaxBody int64
}

// New crea un Client. timeout <= 0 significa sin timeout: una llamada colgada
// queda pendiente hasta que el servidor responda o el ctx se cancele.
func New(timeout time.Duration) *Client {
	return NewWithTransport(timeout, nil)
}

// NewWithBaseURL crea un Client con BaseURL + timeout.
func NewWithBaseURL(baseURL string, timeout time.Duration) (*Client, error) {
	c := New(timeout)
	if err := c.SetBaseURL(baseURL); err != nil {
		return nil, err
	}
	return c, nil
}

// NewWithTransport permite inyectar un Transport (p.ej. para tests).
func NewWithTransport(timeout time.Duration, tr http.RoundTripper) *Client {
	if timeout < 0 {
		timeout = 0
	}
	if tr == nil {
		tr = http.DefaultTransport
	}
	return &Client{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

// SetBaseURL valida y normaliza la base URL (sin "/" final).
func (c *Client) SetBaseURL(baseURL string) error {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		c.BaseURL = ""
		return nil
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	c.BaseURL = strings.TrimRight(baseURL, "/")
	return nil
}

// HTTPError representa una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string

	// Message es el campo "message" del body JSON, si vino.
	Message string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Param es un par de query string. El orden de Request.Query se respeta.
type Param struct {
	Key   string
	Value string
}

// Request describe una llamada JSON.
type Request struct {
	Method  string
	Path    string  // URL absoluta o path relativo a BaseURL
	Query   []Param // opcional
	Headers map[string]string
	Body    any // nil => sin body
}

// DoJSON hace un request JSON.
// - out: donde decodificar JSON (opcional). Si nil => ignora body.
//   Si out es *json.RawMessage se copia el body tal cual.
// Retorna *HTTPError si status no es 2xx.
func (c *Client) DoJSON(ctx context.Context, r Request, out any) error {
	if c == nil || c.HTTP == nil {
		return errors.New("httpclient: nil client")
	}

	fullURL, err := c.resolveURL(r.Path, r.Query)
	if err != nil {
		return err
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("httpclient: marshal json: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("httpclient: new request: %w", err)
	}

	// Defaults
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	// Extra headers
	for k, v := range r.Headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readAtMost(resp.Body, c.MaxBody)
	if err != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Message:    serverMessage(raw),
		}
	}

	if out == nil {
		return nil
	}
	if rm, ok := out.(*json.RawMessage); ok {
		*rm = append((*rm)[:0], raw...)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal json: %w", err)
	}

	return nil
}

func (c *Client) resolveURL(pathOrURL string, q []Param) (string, error) {
	pathOrURL = strings.TrimSpace(pathOrURL)
	if pathOrURL == "" {
		return "", errors.New("httpclient: empty url")
	}

	full := pathOrURL
	if !strings.HasPrefix(pathOrURL, "http://") && !strings.HasPrefix(pathOrURL, "https://") {
		// Si no es absoluta, requiere BaseURL.
		if strings.TrimSpace(c.BaseURL) == "" {
			return "", errors.New("httpclient: relative path requires BaseURL")
		}
		if !strings.HasPrefix(pathOrURL, "/") {
			pathOrURL = "/" + pathOrURL
		}
		full = c.BaseURL + pathOrURL
	}

	if len(q) == 0 {
		return full, nil
	}
	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + encodeQuery(q), nil
}

func encodeQuery(q []Param) string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// serverMessage extrae {"message": "..."} de un body de error.
func serverMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	s, ok := body.Message.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// ServerMessage devuelve el mensaje del servidor si err es un *HTTPError.
func ServerMessage(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return ""
}

// StatusCode devuelve el status HTTP si err es un *HTTPError (0 si no).
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// readAtMost lee hasta max bytes. Si el body es más largo devuelve lo leído
// y ErrBodyTooLarge.
func readAtMost(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxBody
	}
	raw, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return raw, fmt.Errorf("httpclient: read body: %w", err)
	}
	if int64(len(raw)) > max {
		return raw[:max], fmt.Errorf("%w (limit %d bytes)", ErrBodyTooLarge, max)
	}
	return raw, nil
}
