package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vet-console/internal/domain/entity"
	"vet-console/internal/platform/httpclient"
	"vet-console/internal/platform/logger"
	"vet-console/internal/ports/resources"
)

var ErrNotConfigured = errors.New("remote client not configured")

// DefaultMaxResponseBytes alcanza para colecciones completas; una respuesta
// más grande falla como FetchFailed/SearchFailed y el cache no se toca.
const DefaultMaxResponseBytes = 32 << 20

// Config del cliente del servicio REST de la clínica.
type Config struct {
	BaseURL string

	// 0 = sin timeout.
	Timeout time.Duration

	// Límite del body de respuesta; 0 usa DefaultMaxResponseBytes.
	MaxResponseBytes int64

	// Opcional (tests).
	Transport http.RoundTripper
}

// Client implementa resources.Client contra el servicio REST.
type Client struct {
	http *httpclient.Client
	reg  *entity.Registry
	log  logger.Logger
}

var _ resources.Client = (*Client)(nil)

func NewClient(cfg Config, reg *entity.Registry, log logger.Logger) (*Client, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrNotConfigured)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: empty base url", ErrNotConfigured)
	}
	if log == nil {
		log = logger.Nop()
	}

	hc := httpclient.NewWithTransport(cfg.Timeout, cfg.Transport)
	hc.MaxBody = cfg.MaxResponseBytes
	if hc.MaxBody <= 0 {
		hc.MaxBody = DefaultMaxResponseBytes
	}
	if err := hc.SetBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}

	return &Client{
		http: hc,
		reg:  reg,
		log:  log.With(map[string]any{"component": "remote"}),
	}, nil
}

func (c *Client) List(ctx context.Context, kind entity.Kind) ([]entity.Record, error) {
	s, err := c.reg.Lookup(kind)
	if err != nil {
		return nil, resources.Fail(resources.OpFetch, entity.Schema{Kind: kind}, "", 0, err)
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, httpclient.Request{Method: http.MethodGet, Path: s.Path}, &raw); err != nil {
		return nil, c.fail(resources.OpFetch, s, err)
	}
	return DecodeEnvelope(raw), nil
}

func (c *Client) Search(ctx context.Context, kind entity.Kind, variant string, params map[string]string) ([]entity.Record, error) {
	s, err := c.reg.Lookup(kind)
	if err != nil {
		return nil, resources.Fail(resources.OpSearch, entity.Schema{Kind: kind}, "", 0, err)
	}
	v, ok := s.Search(variant)
	if !ok {
		return nil, resources.Fail(resources.OpSearch, s, fmt.Sprintf("unknown search %q for %s", variant, s.Plural), 0, entity.ErrInvalidInput)
	}

	// Solo los params declarados por la variante viajan, en su orden.
	q := make([]httpclient.Param, 0, len(v.Params))
	for _, p := range v.Params {
		q = append(q, httpclient.Param{Key: p, Value: params[p]})
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, httpclient.Request{Method: http.MethodGet, Path: s.Path + v.Path, Query: q}, &raw); err != nil {
		return nil, c.fail(resources.OpSearch, s, err)
	}
	return DecodeEnvelope(raw), nil
}

func (c *Client) Create(ctx context.Context, kind entity.Kind, draft entity.Draft) (entity.Record, error) {
	s, err := c.reg.Lookup(kind)
	if err != nil {
		return nil, resources.Fail(resources.OpCreate, entity.Schema{Kind: kind}, "", 0, err)
	}
	body, err := entity.Encode(s, draft)
	if err != nil {
		// Validación local: no se llama al servidor.
		return nil, resources.Fail(resources.OpCreate, s, err.Error(), 0, err)
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, httpclient.Request{Method: http.MethodPost, Path: s.Path, Body: body}, &raw); err != nil {
		return nil, c.fail(resources.OpCreate, s, err)
	}
	return DecodeRecord(raw), nil
}

func (c *Client) Update(ctx context.Context, kind entity.Kind, id string, draft entity.Draft) (entity.Record, error) {
	s, err := c.reg.Lookup(kind)
	if err != nil {
		return nil, resources.Fail(resources.OpUpdate, entity.Schema{Kind: kind}, "", 0, err)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, resources.Fail(resources.OpUpdate, s, "", 0, entity.ErrInvalidInput)
	}
	body, err := entity.Encode(s, draft)
	if err != nil {
		return nil, resources.Fail(resources.OpUpdate, s, err.Error(), 0, err)
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, httpclient.Request{Method: http.MethodPut, Path: itemPath(s, id), Body: body}, &raw); err != nil {
		return nil, c.fail(resources.OpUpdate, s, err)
	}
	return DecodeRecord(raw), nil
}

func (c *Client) Delete(ctx context.Context, kind entity.Kind, id string) error {
	s, err := c.reg.Lookup(kind)
	if err != nil {
		return resources.Fail(resources.OpDelete, entity.Schema{Kind: kind}, "", 0, err)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return resources.Fail(resources.OpDelete, s, "", 0, entity.ErrInvalidInput)
	}

	if err := c.http.DoJSON(ctx, httpclient.Request{Method: http.MethodDelete, Path: itemPath(s, id)}, nil); err != nil {
		return c.fail(resources.OpDelete, s, err)
	}
	return nil
}

// fail clasifica el error de transporte/status. No hay retries.
func (c *Client) fail(op resources.Op, s entity.Schema, err error) error {
	f := resources.Fail(op, s, httpclient.ServerMessage(err), httpclient.StatusCode(err), err)
	c.log.Warn("remote call failed", map[string]any{
		"op":     string(op),
		"kind":   string(s.Kind),
		"status": f.Status,
		"error":  err.Error(),
	})
	return f
}

func itemPath(s entity.Schema, id string) string {
	return s.Path + "/" + url.PathEscape(id)
}
