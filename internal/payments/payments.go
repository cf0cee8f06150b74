// Package payments resolves the list of payment methods offered when
// enrolling a student. The list is a non-critical lookup: when the API
// cannot be reached a fixed fallback list is used instead.
package payments

import (
	"context"

	"go.uber.org/zap"

	"github.com/hostelhub/hostelctl/internal/apiclient"
	"github.com/hostelhub/hostelctl/internal/logging"
)

// Origin tells where a list of payment methods came from
type Origin int

const (
	// OriginLive means the list was fetched from the API
	OriginLive Origin = iota
	// OriginFallback means the fetch failed and the fallback list was used
	OriginFallback
)

// String returns "live" or "fallback"
func (o Origin) String() string {
	if o == OriginFallback {
		return "fallback"
	}
	return "live"
}

// Source fetches payment methods. *apiclient.Client satisfies it.
type Source interface {
	ListPaymentMethods(ctx context.Context) ([]apiclient.PaymentMethod, error)
}

// Result is the outcome of a lookup
type Result struct {
	Methods []apiclient.PaymentMethod
	Origin  Origin

	// Err is the fetch failure that caused a fallback
	Err error
}

// Degraded reports whether the fallback list is in use
func (r Result) Degraded() bool {
	return r.Origin == OriginFallback
}

// Fallback returns a fresh copy of the built-in payment methods
func Fallback() []apiclient.PaymentMethod {
	return []apiclient.PaymentMethod{
		{ID: "cash", Name: "Cash"},
		{ID: "bank_transfer", Name: "Bank Transfer"},
		{ID: "online", Name: "Online Payment"},
	}
}

// Lookup fetches the payment methods, falling back to the built-in list on
// any error. It never fails.
func Lookup(ctx context.Context, src Source) Result {
	methods, err := src.ListPaymentMethods(ctx)
	if err != nil {
		logging.Warn("Payment methods unavailable, using fallback list",
			zap.Error(err),
		)
		return Result{Methods: Fallback(), Origin: OriginFallback, Err: err}
	}
	if methods == nil {
		methods = []apiclient.PaymentMethod{}
	}
	return Result{Methods: methods, Origin: OriginLive}
}

// Methods returns only the list of a Lookup
func Methods(ctx context.Context, src Source) []apiclient.PaymentMethod {
	return Lookup(ctx, src).Methods
}
