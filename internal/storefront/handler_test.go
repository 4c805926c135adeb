package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/barberflow/booking-storefront/internal/upstream"
)

type fakeAPI struct {
	shops    map[string]*upstream.Barbershop
	services []upstream.Service
	products map[int]*upstream.ProductPage
	lastPage int
}

func (f *fakeAPI) GetShopBySlug(ctx context.Context, slug string) (*upstream.Barbershop, error) {
	if shop, ok := f.shops[slug]; ok {
		return shop, nil
	}
	return nil, &upstream.APIError{StatusCode: 404, Message: "Barbearia não encontrada"}
}

func (f *fakeAPI) GetServices(ctx context.Context, shopID string) ([]upstream.Service, error) {
	return f.services, nil
}

func (f *fakeAPI) GetBarbers(ctx context.Context, shopID string) ([]upstream.Barber, error) {
	return nil, nil
}

func (f *fakeAPI) GetPlans(ctx context.Context, shopID string) ([]upstream.Plan, error) {
	return nil, nil
}

func (f *fakeAPI) GetReviews(ctx context.Context, shopID string) ([]upstream.Review, error) {
	return nil, nil
}

func (f *fakeAPI) GetStoreProducts(ctx context.Context, shopID string, page int) (*upstream.ProductPage, error) {
	f.lastPage = page
	if p, ok := f.products[page]; ok {
		return p, nil
	}
	return &upstream.ProductPage{}, nil
}

func newStorefrontRouter(fake *fakeAPI) http.Handler {
	h := NewHandler(fake, nil)
	r := chi.NewRouter()
	r.Route("/shops/{slug}", func(r chi.Router) {
		r.Get("/", h.HandleShop)
		r.Get("/services", h.HandleServices)
		r.Get("/barbers", h.HandleBarbers)
		r.Get("/plans", h.HandlePlans)
		r.Get("/reviews", h.HandleReviews)
		r.Get("/products", h.HandleProducts)
	})
	return r
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestShopProfile(t *testing.T) {
	fake := &fakeAPI{shops: map[string]*upstream.Barbershop{
		"corleone-cuts": {ID: "shop-1", Slug: "corleone-cuts", Name: "Corleone Cuts"},
	}}
	router := newStorefrontRouter(fake)

	rec := get(t, router, "/shops/corleone-cuts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var shop upstream.Barbershop
	if err := json.Unmarshal(rec.Body.Bytes(), &shop); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if shop.Name != "Corleone Cuts" {
		t.Errorf("name = %q", shop.Name)
	}
}

func TestUnknownShopIs404Everywhere(t *testing.T) {
	router := newStorefrontRouter(&fakeAPI{shops: map[string]*upstream.Barbershop{}})

	for _, path := range []string{
		"/shops/ghost",
		"/shops/ghost/services",
		"/shops/ghost/products",
	} {
		if rec := get(t, router, path); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestServicesListing(t *testing.T) {
	fake := &fakeAPI{
		shops:    map[string]*upstream.Barbershop{"corleone-cuts": {ID: "shop-1"}},
		services: []upstream.Service{{ID: "svc-1", Name: "Fade", Price: 60}},
	}
	router := newStorefrontRouter(fake)

	rec := get(t, router, "/shops/corleone-cuts/services")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var services []upstream.Service
	if err := json.Unmarshal(rec.Body.Bytes(), &services); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(services) != 1 || services[0].Name != "Fade" {
		t.Errorf("services = %+v", services)
	}
}

func TestProductsPaging(t *testing.T) {
	fake := &fakeAPI{
		shops:    map[string]*upstream.Barbershop{"corleone-cuts": {ID: "shop-1"}},
		products: map[int]*upstream.ProductPage{},
	}
	router := newStorefrontRouter(fake)

	get(t, router, "/shops/corleone-cuts/products?page=3")
	if fake.lastPage != 3 {
		t.Errorf("page = %d, want 3", fake.lastPage)
	}

	get(t, router, "/shops/corleone-cuts/products?page=0")
	if fake.lastPage != 1 {
		t.Errorf("page = %d, want clamp to 1", fake.lastPage)
	}
}
