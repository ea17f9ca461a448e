// Package bridge is a typed client for the Bridge learning-management
// HTTP API: user records, custom fields and role assignments, with
// pagination handling and authentication header injection.
package bridge

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/uwtools/go-bridge/pkg/config"
	"github.com/uwtools/go-bridge/pkg/utils/errs"
	"github.com/uwtools/go-bridge/pkg/utils/httpclient"
)

const (
	applicationJSON = "application/json"

	headerAuthorization = "Authorization"
)

var (
	ErrAuthNotImplemented       = errors.New("API auth not implemented")
	ErrAuthKey                  = errors.New("failed to load the auth key")
	ErrAuthSecret               = errors.New("failed to load the auth secret")
	ErrParsingClientCertificate = errors.New("failed to parse client certificate x509 pair")
)

// Client issues requests against one Bridge tenant. It injects the
// Accept/Content-Type headers and basic-auth credentials; retries,
// timeouts and cancellation are the caller's concern via ctx and the
// underlying http.Client.
type Client struct {
	logger      hclog.Logger
	httpClient  *http.Client
	host        string
	emailDomain string
	pageSize    int

	basicAuth *basicAuth
}

type basicAuth struct {
	key    string
	secret string
}

func NewClient(cfg *config.Config, logger hclog.Logger) (*Client, error) {
	client := &Client{
		logger:      logger,
		host:        cfg.Host,
		emailDomain: cfg.Params.EmailDomain,
		pageSize:    cfg.Params.PageSize,
	}

	if client.emailDomain == "" {
		client.emailDomain = config.DefaultEmailDomain
	}

	if client.pageSize <= 0 {
		client.pageSize = config.DefaultPageSize
	}

	switch cfg.Auth.Type {
	case commoncfg.BasicSecretType:
		key, err := commoncfg.LoadValueFromSourceRef(cfg.Auth.Basic.Username)
		if err != nil {
			return nil, ErrAuthKey
		}

		secret, err := commoncfg.LoadValueFromSourceRef(cfg.Auth.Basic.Password)
		if err != nil {
			return nil, ErrAuthSecret
		}

		client.httpClient = &http.Client{}
		client.basicAuth = &basicAuth{
			key:    string(key),
			secret: string(secret),
		}

		return client, nil
	case commoncfg.MTLSSecretType:
		mtls, err := commoncfg.LoadMTLSConfig(&cfg.Auth.MTLS)
		if err != nil {
			return nil, errs.Wrap(ErrParsingClientCertificate, err)
		}

		client.httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: mtls,
			},
		}

		return client, nil
	default:
		return nil, ErrAuthNotImplemented
	}
}

// EmailDomain is the domain combined with a netid to form Bridge uids.
func (c *Client) EmailDomain() string {
	return c.emailDomain
}

// GetResource issues a GET; 200 is the only success status.
func (c *Client) GetResource(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, http.StatusOK)
}

// PostResource issues a POST with a JSON body; 200 and 201 are success.
func (c *Client) PostResource(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body, http.StatusOK, http.StatusCreated)
}

// PatchResource issues a PATCH with a JSON body; 200 is success.
func (c *Client) PatchResource(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, url, body, http.StatusOK)
}

// PutResource issues a PUT with a JSON body; 200 is success.
// Bridge PUT currently has the same effect as PATCH.
func (c *Client) PutResource(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPut, url, body, http.StatusOK)
}

// DeleteResource issues a DELETE; success means 204.
func (c *Client) DeleteResource(ctx context.Context, url string) (bool, error) {
	_, err := c.do(ctx, http.MethodDelete, url, nil, http.StatusNoContent)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (c *Client) do(
	ctx context.Context,
	method string,
	url string,
	body []byte,
	expected ...int,
) ([]byte, error) {
	// meta.next links come back absolute; everything else is a path.
	if !strings.HasPrefix(url, "http") {
		url = c.host + url
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", applicationJSON)
	}

	req.Header.Set("Accept", applicationJSON)

	if c.basicAuth != nil {
		creds := []byte(c.basicAuth.key + ":" + c.basicAuth.secret)
		req.Header.Set(headerAuthorization, "Basic "+base64.StdEncoding.EncodeToString(creds))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			c.logger.Error("failed to close response body", "method", method, "url", url, "error", err)
		}
	}()

	data, err := httpclient.ReadBody(resp, method, url, expected...)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			c.logger.Warn("resource not found", "method", method, "url", url)
		} else {
			c.logger.Error("request failed", "method", method, "url", url, "error", err)
		}

		return nil, err
	}

	c.logger.Debug("request completed", "method", method, "url", url, "status", resp.StatusCode)

	return data, nil
}
