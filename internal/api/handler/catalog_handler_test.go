package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/oblivions/storefront/internal/core/cart"
	"github.com/oblivions/storefront/internal/core/domain"
)

func TestCatalogHandler_Products(t *testing.T) {
	h := NewCatalogHandler()
	c, rec := newJSONContext(http.MethodGet, "/api/products", "", nil)

	if err := h.Products(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var products []cart.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(products) != 4 || products[0].Name != "Void Hoodie" || products[0].Price != 1299 {
		t.Fatalf("unexpected catalog: %+v", products)
	}
}

func TestCatalogHandler_Product(t *testing.T) {
	h := NewCatalogHandler()

	cases := []struct {
		id      string
		wantErr func(error) bool
	}{
		{"3", func(err error) bool { return err == nil }},
		{"99", func(err error) bool { return errors.Is(err, cart.ErrProductNotFound) }},
		{"abc", domain.IsValidation},
	}
	for _, tc := range cases {
		c, _ := newJSONContext(http.MethodGet, "/api/products/"+tc.id, "", nil)
		c.SetParamNames("id")
		c.SetParamValues(tc.id)
		if err := h.Product(c); !tc.wantErr(err) {
			t.Fatalf("id %s: unexpected error %v", tc.id, err)
		}
	}
}
