package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/faultlinechaos/faultline-go/pkg/cerrors"
	"github.com/faultlinechaos/faultline-go/pkg/scenario"
	"github.com/faultlinechaos/faultline-go/pkg/types"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{name: "blank endpoint", endpoint: "", wantErr: true},
		{name: "whitespace endpoint", endpoint: "   ", wantErr: true},
		{name: "unparseable endpoint", endpoint: "://chaos.internal", wantErr: true},
		{name: "unsupported scheme", endpoint: "ftp://chaos.internal", wantErr: true},
		{name: "missing host", endpoint: "http://", wantErr: true},
		{name: "http endpoint", endpoint: "http://chaos.internal:8080", wantErr: false},
		{name: "https endpoint", endpoint: "https://chaos.internal", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.endpoint)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a config error, got nil")
				}
				var cfgErr cerrors.Config
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected cerrors.Config, got %T: %v", err, err)
				}
				if cerrors.GetErrorType(err) != cerrors.ErrorTypeConfig {
					t.Errorf("GetErrorType() = %v, want %v", cerrors.GetErrorType(err), cerrors.ErrorTypeConfig)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) returned unexpected error: %v", tt.endpoint, err)
			}
			if client == nil {
				t.Fatal("New returned a nil client without an error")
			}
		})
	}
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	client, err := New("http://chaos.internal:8080/")
	if err != nil {
		t.Fatalf("New returned unexpected error: %v", err)
	}
	if client.Endpoint() != "http://chaos.internal:8080" {
		t.Errorf("Endpoint() = %q, want trailing slash removed", client.Endpoint())
	}
}

func TestStartSendsWireRequest(t *testing.T) {
	var gotMethod, gotPath, gotContentType, gotUserAgent string
	var gotBody types.StartRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("could not decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New returned unexpected error: %v", err)
	}
	scn, err := scenario.Latency("search-service", 250*time.Millisecond, 30*time.Second)
	if err != nil {
		t.Fatalf("Latency returned unexpected error: %v", err)
	}

	if err := client.Start(context.Background(), "exp-42", scn); err != nil {
		t.Fatalf("Start returned unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/experiments/start" {
		t.Errorf("path = %q, want /experiments/start", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if !strings.HasPrefix(gotUserAgent, "faultline-go/") {
		t.Errorf("User-Agent = %q, want faultline-go/<version>", gotUserAgent)
	}
	if gotBody.ExperimentID != "exp-42" {
		t.Errorf("experimentId = %q, want exp-42", gotBody.ExperimentID)
	}
	if gotBody.Scenario.Type != types.ChaosTypeLatency {
		t.Errorf("scenario.type = %q, want %q", gotBody.Scenario.Type, types.ChaosTypeLatency)
	}
	if gotBody.Scenario.TargetService != "search-service" {
		t.Errorf("scenario.targetService = %q, want search-service", gotBody.Scenario.TargetService)
	}
	if gotBody.Scenario.DurationMs != 30000 {
		t.Errorf("scenario.durationMs = %d, want 30000", gotBody.Scenario.DurationMs)
	}
	if got := gotBody.Scenario.Parameters[types.ParamLatencyMs]; got != float64(250) {
		t.Errorf("scenario.parameters.latencyMs = %v, want 250", got)
	}
}

func TestStopSendsWireRequest(t *testing.T) {
	var gotPath string
	var gotBody types.StopRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("could not decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New returned unexpected error: %v", err)
	}
	if err := client.Stop(context.Background(), "exp-42"); err != nil {
		t.Fatalf("Stop returned unexpected error: %v", err)
	}
	if gotPath != "/experiments/stop" {
		t.Errorf("path = %q, want /experiments/stop", gotPath)
	}
	if gotBody.ExperimentID != "exp-42" {
		t.Errorf("experimentId = %q, want exp-42", gotBody.ExperimentID)
	}
}

func TestNon2xxBecomesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("chaos runner overloaded"))
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New returned unexpected error: %v", err)
	}
	scn, err := scenario.Kill("payment-service", 10*time.Second)
	if err != nil {
		t.Fatalf("Kill returned unexpected error: %v", err)
	}

	err = client.Start(context.Background(), "exp-7", scn)
	if err == nil {
		t.Fatal("expected a transport error, got nil")
	}
	var terr cerrors.Transport
	if !errors.As(err, &terr) {
		t.Fatalf("expected cerrors.Transport, got %T: %v", err, err)
	}
	if terr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want %d", terr.StatusCode, http.StatusServiceUnavailable)
	}
	if !strings.Contains(err.Error(), "chaos runner overloaded") {
		t.Errorf("error message %q should carry the response body", err.Error())
	}
	if !strings.Contains(err.Error(), "exp-7") {
		t.Errorf("error message %q should carry the experiment id", err.Error())
	}
}

func TestAccepted2xxVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New returned unexpected error: %v", err)
	}
	if err := client.Stop(context.Background(), "exp-9"); err != nil {
		t.Errorf("a 202 response should count as success, got %v", err)
	}
}

func TestConnectionFailureBecomesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client, err := New(endpoint)
	if err != nil {
		t.Fatalf("New returned unexpected error: %v", err)
	}
	err = client.Stop(context.Background(), "exp-11")
	if err == nil {
		t.Fatal("expected a transport error against a closed server, got nil")
	}
	var terr cerrors.Transport
	if !errors.As(err, &terr) {
		t.Fatalf("expected cerrors.Transport, got %T: %v", err, err)
	}
	if terr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 when no response arrived", terr.StatusCode)
	}
}

func TestExactlyOneAttemptPerOperation(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New returned unexpected error: %v", err)
	}
	if err := client.Stop(context.Background(), "exp-13"); err == nil {
		t.Fatal("expected a transport error, got nil")
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want exactly 1", calls)
	}
}
