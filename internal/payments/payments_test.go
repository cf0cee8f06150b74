package payments

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hostelhub/hostelctl/internal/apiclient"
)

type sourceFunc func(ctx context.Context) ([]apiclient.PaymentMethod, error)

func (f sourceFunc) ListPaymentMethods(ctx context.Context) ([]apiclient.PaymentMethod, error) {
	return f(ctx)
}

func TestLookupFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"network error", apiclient.NewNetworkError("dial tcp: connection refused", errors.New("connection refused"))},
		{"http error", apiclient.NewHTTPError(500, "Internal Server Error")},
		{"parse error", apiclient.NewParseError("bad json", nil)},
	}

	want := []apiclient.PaymentMethod{
		{ID: "cash", Name: "Cash"},
		{ID: "bank_transfer", Name: "Bank Transfer"},
		{ID: "online", Name: "Online Payment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Lookup(context.Background(), sourceFunc(func(context.Context) ([]apiclient.PaymentMethod, error) {
				return nil, tt.err
			}))

			if !reflect.DeepEqual(res.Methods, want) {
				t.Errorf("Methods = %+v, want %+v", res.Methods, want)
			}
			if res.Origin != OriginFallback || !res.Degraded() {
				t.Errorf("Origin = %v, want fallback", res.Origin)
			}
			if !errors.Is(res.Err, tt.err) {
				t.Errorf("Err = %v, want %v", res.Err, tt.err)
			}
		})
	}
}

func TestLookupLive(t *testing.T) {
	live := []apiclient.PaymentMethod{{ID: "upi", Name: "UPI"}}
	res := Lookup(context.Background(), sourceFunc(func(context.Context) ([]apiclient.PaymentMethod, error) {
		return live, nil
	}))

	if res.Degraded() || res.Origin != OriginLive {
		t.Errorf("Origin = %v, want live", res.Origin)
	}
	if res.Err != nil {
		t.Errorf("Err = %v, want nil", res.Err)
	}
	if !reflect.DeepEqual(res.Methods, live) {
		t.Errorf("Methods = %+v, want %+v", res.Methods, live)
	}
}

func TestLookupLiveEmpty(t *testing.T) {
	res := Lookup(context.Background(), sourceFunc(func(context.Context) ([]apiclient.PaymentMethod, error) {
		return nil, nil
	}))
	if res.Degraded() {
		t.Error("an empty live list is not degraded")
	}
	if res.Methods == nil || len(res.Methods) != 0 {
		t.Errorf("Methods = %#v, want empty non-nil slice", res.Methods)
	}
}

func TestFallbackIsCopy(t *testing.T) {
	a := Fallback()
	a[0].Name = "changed"
	if Fallback()[0].Name != "Cash" {
		t.Error("Fallback() should return a fresh slice on every call")
	}
}

func TestMethods(t *testing.T) {
	got := Methods(context.Background(), sourceFunc(func(context.Context) ([]apiclient.PaymentMethod, error) {
		return nil, errors.New("offline")
	}))
	if len(got) != 3 || got[2].ID != "online" {
		t.Errorf("Methods() = %+v", got)
	}
}

func TestOriginString(t *testing.T) {
	if OriginLive.String() != "live" || OriginFallback.String() != "fallback" {
		t.Errorf("unexpected origin names: %s, %s", OriginLive, OriginFallback)
	}
}
