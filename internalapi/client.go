package internalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/movelink/movekit/errors"
	"github.com/movelink/movekit/httpclient"
	"github.com/movelink/movekit/provider"
)

// Client issues the typed session calls of the internal API.
type Client struct {
	http   *httpclient.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient wraps the given HTTP client.
func NewClient(httpClient *httpclient.Client, opts ...Option) *Client {
	c := &Client{
		http:   httpClient,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsLoggedIn reports whether the server session is authenticated.
func (c *Client) IsLoggedIn(ctx context.Context) (bool, error) {
	resp, err := c.http.Do(ctx, http.MethodGet, "users/is_logged_in", nil, nil)
	if err != nil {
		return false, errors.WrapTransport(err, "internalapi", "IsLoggedIn", "login check")
	}

	var body struct {
		IsLoggedIn *bool `json:"isLoggedIn"`
	}
	if err := json.Unmarshal(resp.JSON, &body); err != nil || body.IsLoggedIn == nil {
		if err == nil {
			err = fmt.Errorf("response has no isLoggedIn field")
		}
		return false, errors.WrapContract(err, "internalapi", "IsLoggedIn", "response parsing")
	}
	return *body.IsLoggedIn, nil
}

// GetLoggedInUser fetches the full profile of the logged-in user.
func (c *Client) GetLoggedInUser(ctx context.Context) (provider.Record, error) {
	return c.getRecord(ctx, "users/logged_in", "GetLoggedInUser")
}

// GetIdentityProviderUser fetches the secondary identity-provider profile
// for the logged-in user.
func (c *Client) GetIdentityProviderUser(ctx context.Context) (provider.Record, error) {
	return c.getRecord(ctx, "okta_profile", "GetIdentityProviderUser")
}

// GetAdminUser fetches the administrative user for the current session.
// Only meaningful in the admin app variant.
func (c *Client) GetAdminUser(ctx context.Context) (provider.Record, error) {
	return c.getRecord(ctx, "admin_users/current", "GetAdminUser")
}

// UpdateActiveRole switches the active role on the server session.
func (c *Client) UpdateActiveRole(ctx context.Context, roleType string) error {
	body := map[string]any{"roleType": roleType}
	_, err := c.http.Do(ctx, http.MethodPatch, "users/active_role", body, nil)
	if err != nil {
		return errors.WrapTransport(err, "internalapi", "UpdateActiveRole", "role update")
	}
	return nil
}

// CreateServiceMember creates an empty service-member profile for the
// logged-in user.
func (c *Client) CreateServiceMember(ctx context.Context, payload provider.Record) (provider.Record, error) {
	resp, err := c.http.Do(ctx, http.MethodPost, "service_members", payload, nil)
	if err != nil {
		return nil, errors.WrapTransport(err, "internalapi", "CreateServiceMember", "profile creation")
	}

	var record provider.Record
	if err := json.Unmarshal(resp.JSON, &record); err != nil {
		return nil, errors.WrapContract(err, "internalapi", "CreateServiceMember", "response parsing")
	}
	return record, nil
}

// GetMTOShipmentsForMove fetches every MTO shipment attached to a move.
func (c *Client) GetMTOShipmentsForMove(ctx context.Context, moveID string) ([]provider.Record, error) {
	q := url.Values{}
	q.Set("moveTaskOrderID", moveID)
	path := "mto_shipments?" + q.Encode()

	resp, err := c.http.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, errors.WrapTransport(err, "internalapi", "GetMTOShipmentsForMove", "shipment fetch")
	}

	var records []provider.Record
	if err := json.Unmarshal(resp.JSON, &records); err != nil {
		return nil, errors.WrapContract(err, "internalapi", "GetMTOShipmentsForMove", "response parsing")
	}
	return records, nil
}

func (c *Client) getRecord(ctx context.Context, path, method string) (provider.Record, error) {
	resp, err := c.http.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, errors.WrapTransport(err, "internalapi", method, "fetch")
	}

	var record provider.Record
	if err := json.Unmarshal(resp.JSON, &record); err != nil {
		return nil, errors.WrapContract(err, "internalapi", method, "response parsing")
	}
	return record, nil
}
