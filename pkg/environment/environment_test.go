package environment

import (
	"testing"
)

func TestGetenvDefault(t *testing.T) {
	if got := Getenv("FAULTLINE_TEST_UNSET_KEY", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for unset key, got %q", got)
	}
}

func TestGetenvSet(t *testing.T) {
	t.Setenv("FAULTLINE_TEST_SET_KEY", "value")
	if got := Getenv("FAULTLINE_TEST_SET_KEY", "fallback"); got != "value" {
		t.Errorf("expected set value, got %q", got)
	}
}

func TestOSReaderLiveReads(t *testing.T) {
	reader := OSReader{}

	t.Setenv(TargetEnvironmentEnv, "qa")
	if got := reader.EnvironmentName(); got != "qa" {
		t.Errorf("expected qa, got %q", got)
	}

	// the reader must reflect a change without re-construction
	t.Setenv(TargetEnvironmentEnv, "staging")
	if got := reader.EnvironmentName(); got != "staging" {
		t.Errorf("expected staging after env change, got %q", got)
	}
}

func TestOSReaderProdOverride(t *testing.T) {
	reader := OSReader{}

	t.Setenv(ProdOverrideEnv, "")
	if reader.ProdOverrideAllowed() {
		t.Error("override must default to false")
	}

	t.Setenv(ProdOverrideEnv, "true")
	if !reader.ProdOverrideAllowed() {
		t.Error("expected override=true after setting env")
	}

	t.Setenv(ProdOverrideEnv, "not-a-bool")
	if reader.ProdOverrideAllowed() {
		t.Error("unparseable override must stay false")
	}
}

func TestOSReaderChaosEndpoint(t *testing.T) {
	reader := OSReader{}

	t.Setenv(ChaosEndpointEnv, "http://chaos.qa.internal:8080")
	if got := reader.ChaosEndpoint(); got != "http://chaos.qa.internal:8080" {
		t.Errorf("unexpected endpoint %q", got)
	}
}
