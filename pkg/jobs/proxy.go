package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/models"
)

// HostResolver maps a device to the host that physically drives it.
type HostResolver interface {
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)
	GetHost(ctx context.Context, hostName string) (*models.Host, error)
}

// Proxy is the stateless server-to-host routing layer: it holds no
// per-device state of its own, looking the host up fresh on every call
// and forwarding the request with a short-lived signed bearer token.
type Proxy struct {
	resolver   HostResolver
	httpClient *http.Client
	signingKey []byte
	tokenTTL   time.Duration
}

// NewProxy constructs a Proxy. signingKey authenticates the server's own
// calls to a host (not end-user auth, which is out of scope).
func NewProxy(resolver HostResolver, signingKey []byte, dialTimeout time.Duration) *Proxy {
	return &Proxy{
		resolver:   resolver,
		httpClient: &http.Client{Timeout: dialTimeout},
		signingKey: signingKey,
		tokenTTL:   time.Minute,
	}
}

func (p *Proxy) signToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenTTL)),
		Issuer:    "execution-core",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.signingKey)
}

// Forward sends body to path on the host that owns deviceID, returning
// the host's decoded JSON response.
func (p *Proxy) Forward(ctx context.Context, deviceID, path string, body map[string]interface{}) (map[string]interface{}, error) {
	device, err := p.resolver.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindNotFound, "device not found", err)
	}
	host, err := p.resolver.GetHost(ctx, device.HostName)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindNotFound, "host not found", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "failed to encode proxy payload", err)
	}

	url := fmt.Sprintf("%s%s", host.BaseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "failed to build proxy request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := p.signToken()
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "failed to sign proxy token", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindHostUnreachable, fmt.Sprintf("host %s did not respond", host.Name), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindHostUnreachable, "failed to read host response", err)
	}
	if resp.StatusCode >= 500 {
		return nil, apierr.New(apierr.KindHostUnreachable, fmt.Sprintf("host %s returned %d", host.Name, resp.StatusCode))
	}

	var decoded map[string]interface{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, apierr.Wrap(apierr.KindInternal, "failed to decode host response", err)
		}
	}
	return decoded, nil
}
