// Package api is the typed catalog of admin API operations. Every operation
// maps to exactly one dispatcher call. Responses are returned as the raw
// records the server sent; only the login result is decoded.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/DeliveryConsole/internal/dispatch"
	"github.com/utafrali/DeliveryConsole/internal/domain"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
	"github.com/utafrali/DeliveryConsole/pkg/query"
	"github.com/utafrali/DeliveryConsole/pkg/validator"
)

// Sessions is the part of the session store touched by login and logout.
type Sessions interface {
	Login(ctx context.Context, user domain.UserRecord, token string) error
	Logout(ctx context.Context) error
}

// Client exposes the admin API operations.
type Client struct {
	dispatcher *dispatch.Dispatcher
	sessions   Sessions
	logger     *slog.Logger
}

// New creates a facade over d.
func New(d *dispatch.Dispatcher, sessions Sessions, logger *slog.Logger) *Client {
	return &Client{dispatcher: d, sessions: sessions, logger: logger}
}

func get(ctx context.Context, c *Client, path string, params *query.Params) (domain.Record, error) {
	return c.dispatcher.Do(ctx, dispatch.Request{
		Method:   http.MethodGet,
		Endpoint: query.Append(path, params),
	})
}

func send(ctx context.Context, c *Client, method, path string, payload any) (domain.Record, error) {
	req, err := dispatch.NewJSONRequest(method, path, payload)
	if err != nil {
		return nil, err
	}
	return c.dispatcher.Do(ctx, req)
}

func upload(ctx context.Context, c *Client, path, filename string, r io.Reader) (domain.Record, error) {
	return c.dispatcher.Upload(ctx, path, "image", filename, r)
}

// resourcePath joins base and an escaped id. An empty id is rejected before
// anything is sent.
func resourcePath(base, id string, suffix ...string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", apperrors.InvalidInput("id is required")
	}
	p := base + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p, nil
}

// validate turns a ValidationError into an InvalidInput error that keeps the
// field detail in its message.
func validate(v any) error {
	err := validator.Validate(v)
	if err == nil {
		return nil
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return apperrors.InvalidInput(valErr.Error())
	}
	return fmt.Errorf("validate input: %w", err)
}
