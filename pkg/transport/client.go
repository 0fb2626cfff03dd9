package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/faultlinechaos/faultline-go/pkg/cerrors"
	"github.com/faultlinechaos/faultline-go/pkg/scenario"
	"github.com/faultlinechaos/faultline-go/pkg/types"
)

const (
	// connectTimeout bounds TCP connection establishment
	connectTimeout = 5 * time.Second
	// readTimeout bounds the wait for the control plane's response headers
	readTimeout = 10 * time.Second

	startPath = "/experiments/start"
	stopPath  = "/experiments/stop"

	contentType = "application/json"
	userAgent   = "faultline-go/1.0.0"

	// maxErrorBodyBytes caps how much of an error response lands in the message
	maxErrorBodyBytes = 512
)

// Client speaks the chaos control plane's HTTP protocol. Every operation makes
// exactly one attempt; retry policy belongs to the caller.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New validates the endpoint and prepares the chaos control plane client
func New(endpoint string) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, cerrors.Config{
			Field:  "endpoint",
			Reason: "chaos endpoint must not be blank, set the CHAOS_ENDPOINT env or pass it explicitly",
		}
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, cerrors.Config{
			Field:  "endpoint",
			Reason: fmt.Sprintf("could not parse chaos endpoint %q, %v", endpoint, err),
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, cerrors.Config{
			Field:  "endpoint",
			Reason: fmt.Sprintf("chaos endpoint %q must use the http or https scheme", endpoint),
		}
	}
	if parsed.Host == "" {
		return nil, cerrors.Config{
			Field:  "endpoint",
			Reason: fmt.Sprintf("chaos endpoint %q is missing a host", endpoint),
		}
	}

	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: connectTimeout + readTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
				TLSHandshakeTimeout:   connectTimeout,
				ResponseHeaderTimeout: readTimeout,
			},
		},
	}, nil
}

// Endpoint returns the control plane base URL the client was built with
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Start asks the control plane to begin injecting the scenario's fault under
// the given experiment id
func (c *Client) Start(ctx context.Context, experimentID string, scn scenario.Scenario) error {
	payload := types.StartRequest{
		ExperimentID: experimentID,
		Scenario:     scn.ToWire(),
	}
	return c.post(ctx, types.PhaseStart, startPath, experimentID, payload)
}

// Stop asks the control plane to revert the fault injected under the given
// experiment id. Stopping an unknown or already-expired experiment is a
// success on the control plane side.
func (c *Client) Stop(ctx context.Context, experimentID string) error {
	payload := types.StopRequest{
		ExperimentID: experimentID,
	}
	return c.post(ctx, types.PhaseStop, stopPath, experimentID, payload)
}

func (c *Client) post(ctx context.Context, phase, path, experimentID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return cerrors.Transport{
			Phase:  phase,
			Target: experimentID,
			Reason: fmt.Sprintf("could not marshal the request payload, %v", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return cerrors.Transport{
			Phase:  phase,
			Target: experimentID,
			Reason: fmt.Sprintf("could not build the request, %v", err),
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cerrors.Transport{
			Phase:  phase,
			Target: experimentID,
			Reason: fmt.Sprintf("could not reach the chaos endpoint %s, %v", c.endpoint, err),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return cerrors.Transport{
			Phase:      phase,
			Target:     experimentID,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("could not read the response body, %v", err),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return cerrors.Transport{
			Phase:      phase,
			Target:     experimentID,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("chaos endpoint rejected the request, %s", strings.TrimSpace(string(respBody))),
		}
	}
	return nil
}
