package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/faultlinechaos/faultline-go/pkg/cerrors"
	"github.com/faultlinechaos/faultline-go/pkg/log"
	"github.com/faultlinechaos/faultline-go/pkg/utils/retry"
)

const (
	healthPath = "/health"

	// requestTimeout bounds each individual health poll
	requestTimeout = 5 * time.Second
)

// AwaitReady polls the chaos control plane's health endpoint until it answers
// with a 2xx or the timeout lapses. It is a preflight helper for suite setup;
// starting an experiment never calls it implicitly.
func AwaitReady(ctx context.Context, endpoint string, timeout, interval time.Duration) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return cerrors.Config{Field: "endpoint", Reason: "chaos endpoint must not be blank"}
	}
	if interval <= 0 {
		return cerrors.Config{Field: "interval", Reason: "poll interval must be positive"}
	}
	if timeout <= 0 {
		return cerrors.Config{Field: "timeout", Reason: "poll timeout must be positive"}
	}
	attempts := uint(timeout / interval)
	if attempts < 1 {
		attempts = 1
	}

	client := &http.Client{Timeout: requestTimeout}
	url := strings.TrimSuffix(endpoint, "/") + healthPath

	log.Infof("[Status]: Checking the chaos control plane at %v", url)
	return retry.Times(attempts).
		Wait(interval).
		Try(func(attempt uint) error {

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return errors.Errorf("failed to build the health request: %s", err.Error())
			}

			resp, err := client.Do(req)
			if err != nil {
				return errors.Errorf("the chaos control plane is not reachable yet: %s", err.Error())
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				log.Infof("control plane health status is %v", resp.StatusCode)
				return errors.Errorf("the chaos control plane is not healthy yet, status is %v", resp.StatusCode)
			}

			log.Infof("[Status]: The chaos control plane is ready")
			return nil
		})
}
