package httpapi

import "testing"

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	SetMaxBodyBytes(1234)
	defer SetMaxBodyBytes(0)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetCallTimeoutSeconds_NormalizesNegativeToZero(t *testing.T) {
	SetCallTimeoutSeconds(-5)
	if callTimeout != 0 {
		t.Fatalf("expected 0, got %d", callTimeout)
	}
	SetCallTimeoutSeconds(3)
	defer SetCallTimeoutSeconds(0)
	if callTimeout != 3 {
		t.Fatalf("expected 3, got %d", callTimeout)
	}
}

func TestSetCORSOptions_CopiesSlices(t *testing.T) {
	origins := []string{"http://a"}
	SetCORSOptions(true, origins, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	origins[0] = "mutated"
	if !corsEnabled || corsAllowedOrigins[0] != "http://a" {
		t.Fatalf("cors options not copied: %v %v", corsEnabled, corsAllowedOrigins)
	}
}
