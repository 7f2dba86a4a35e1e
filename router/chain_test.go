package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// tagMiddleware records its tag when the request passes through.
func tagMiddleware(tag string, order *[]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChainMiddlewareOrder(t *testing.T) {
	var order []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	chain := NewChain(handler).WithMiddleware(
		tagMiddleware("mw1", &order),
		tagMiddleware("mw2", &order),
		tagMiddleware("mw3", &order),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	chain.Handler().ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"mw1", "mw2", "mw3", "handler"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], order[i])
		}
	}
}

func TestChainSuccessiveCalls(t *testing.T) {
	var order []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	chain := NewChain(handler).
		WithMiddleware(tagMiddleware("first", &order)).
		WithMiddleware(tagMiddleware("second", &order))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	chain.Handler().ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"first", "second", "handler"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestChainMiddlewareChain(t *testing.T) {
	var order []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	mws := []func(http.Handler) http.Handler{
		tagMiddleware("a", &order),
		tagMiddleware("b", &order),
	}

	chain := NewChain(handler).WithMiddlewareChain(mws)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	chain.Handler().ServeHTTP(httptest.NewRecorder(), req)

	want := []string{"a", "b", "handler"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestChainShortCircuit(t *testing.T) {
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}

	chain := NewChain(handler).WithMiddleware(deny)

	rr := httptest.NewRecorder()
	chain.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if handlerCalled {
		t.Error("handler must not run when middleware short-circuits")
	}
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
}

func TestNewChainNilHandlerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil handler")
		}
	}()
	NewChain(nil)
}
