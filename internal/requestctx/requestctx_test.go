package requestctx

import (
	"context"
	"testing"

	"takehome/internal/domain/auth"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}

func TestPrincipalRoundTrip(t *testing.T) {
	ctx := WithPrincipal(context.Background(), auth.Principal{Subject: "ops", Role: auth.RoleAdmin})
	p, ok := GetPrincipal(ctx)
	if !ok || p.Subject != "ops" {
		t.Fatalf("unexpected principal %+v (ok=%v)", p, ok)
	}
	if _, ok := GetPrincipal(context.Background()); ok {
		t.Fatal("did not expect principal")
	}
}
