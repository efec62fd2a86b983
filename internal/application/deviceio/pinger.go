package deviceio

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/virtualpytest/core/pkg/models"
)

// HTTPHostPinger implements session.HostPinger by GETting a host's health
// endpoint, the same reachability check the teacher's own /health route
// exposes for itself.
type HTTPHostPinger struct {
	client *http.Client
}

// NewHTTPHostPinger constructs a pinger with the given per-call timeout.
func NewHTTPHostPinger(timeout time.Duration) *HTTPHostPinger {
	return &HTTPHostPinger{client: &http.Client{Timeout: timeout}}
}

func (p *HTTPHostPinger) Ping(ctx context.Context, host *models.Host) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("host %s health check returned %d", host.Name, resp.StatusCode)
	}
	return nil
}
