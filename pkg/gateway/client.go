package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apiv1 "github.com/anthonypate54/familynest/pkg/api/v1"
	"github.com/anthonypate54/familynest/pkg/sources/picker"
	"github.com/anthonypate54/familynest/pkg/types"
)

const (
	defaultRequestTimeout = 30 * time.Second
)

// GatewayClient talks to a running gateway over its HTTP API
type GatewayClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewGatewayClient creates a client for the gateway at addr (host:port or a full URL)
func NewGatewayClient(addr string, authToken string) *GatewayClient {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &GatewayClient{
		baseURL:    strings.TrimRight(addr, "/") + apiv1.HttpServerBaseRoute,
		authToken:  authToken,
		httpClient: &http.Client{},
	}
}

// withTimeout bounds short requests; picker browsing waits on a person and is
// left to the caller's context
func (c *GatewayClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultRequestTimeout)
}

// envelope mirrors apiv1.Response with the data left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

func (c *GatewayClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp.StatusCode, env, raw)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}

// responseError rebuilds a typed error so callers can match on its code
func responseError(status int, env envelope, raw []byte) error {
	message := env.Error
	if message == "" {
		var plain map[string]string
		if json.Unmarshal(raw, &plain) == nil && plain["message"] != "" {
			message = plain["message"]
		} else {
			message = http.StatusText(status)
		}
	}

	if env.Code != "" {
		return types.NewResourceError(types.ErrorCode(env.Code), message, nil)
	}
	return fmt.Errorf("gateway returned %d: %s", status, message)
}

// ListResources enumerates one source
func (c *GatewayClient) ListResources(ctx context.Context, kind types.Kind, source types.SourceName, maxSizeBytes *int64) ([]types.Resource, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	q := url.Values{}
	q.Set("kind", string(kind))
	q.Set("source", string(source))
	if maxSizeBytes != nil {
		q.Set("max_size_bytes", strconv.FormatInt(*maxSizeBytes, 10))
	}

	var resources []types.Resource
	if err := c.do(ctx, http.MethodGet, "/resources?"+q.Encode(), nil, &resources); err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []types.Resource{}
	}
	return resources, nil
}

// ResolvePath asks the gateway for a local path for identity
func (c *GatewayClient) ResolvePath(ctx context.Context, identity string, kind types.IdentityKind) (string, error) {
	var out apiv1.ResolveResponse
	err := c.do(ctx, http.MethodPost, "/resolve", apiv1.ResolveRequest{ID: identity, IdentityKind: string(kind)}, &out)
	if err != nil {
		return "", err
	}
	return out.Path, nil
}

// Browse opens a picker session and blocks until it is completed or cancelled
func (c *GatewayClient) Browse(ctx context.Context, single bool) ([]types.Resource, error) {
	path := "/browse"
	if single {
		path = "/browse/single"
	}

	var resources []types.Resource
	if err := c.do(ctx, http.MethodPost, path, nil, &resources); err != nil {
		return nil, err
	}
	if resources == nil {
		resources = []types.Resource{}
	}
	return resources, nil
}

// CurrentSession returns the pending picker session, if any
func (c *GatewayClient) CurrentSession(ctx context.Context) (*picker.Session, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var s picker.Session
	if err := c.do(ctx, http.MethodGet, "/picker/session", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *GatewayClient) CompleteSession(ctx context.Context, sessionID string, handles []string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if handles == nil {
		handles = []string{}
	}
	body := apiv1.CompleteSessionRequest{Handles: handles}
	return c.do(ctx, http.MethodPost, "/picker/session/"+url.PathEscape(sessionID)+"/complete", body, nil)
}

func (c *GatewayClient) CancelSession(ctx context.Context, sessionID string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.do(ctx, http.MethodPost, "/picker/session/"+url.PathEscape(sessionID)+"/cancel", nil, nil)
}

func (c *GatewayClient) Permissions(ctx context.Context) (map[types.Kind]types.PermissionStatus, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out := map[types.Kind]types.PermissionStatus{}
	if err := c.do(ctx, http.MethodGet, "/permissions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GatewayClient) SetPermission(ctx context.Context, kind types.Kind, status types.PermissionStatus) (map[types.Kind]types.PermissionStatus, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out := map[types.Kind]types.PermissionStatus{}
	body := apiv1.SetPermissionRequest{Status: string(status)}
	if err := c.do(ctx, http.MethodPut, "/permissions/"+url.PathEscape(string(kind)), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health returns nil when the gateway reports ok
func (c *GatewayClient) Health(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway unhealthy: %s", resp.Status)
	}
	return nil
}
