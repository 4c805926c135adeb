package wizard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/barberflow/booking-storefront/internal/upstream"
)

func newTestRouter(t *testing.T, fake *fakeUpstream) http.Handler {
	t.Helper()
	h := NewHandler(newTestService(t, fake), nil)
	r := chi.NewRouter()
	r.Post("/wizard/sessions", h.HandleStart)
	r.Route("/wizard/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.HandleView)
		r.Post("/service", h.HandleSelectService)
		r.Post("/barber", h.HandleSelectBarber)
		r.Post("/month", h.HandleNavigateMonth)
		r.Post("/date", h.HandleSelectDate)
		r.Post("/time", h.HandleSelectTime)
		r.Post("/booking", h.HandleSubmit)
	})
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlerStartAndView(t *testing.T) {
	router := newTestRouter(t, newFakeUpstream())

	rec := doJSON(t, router, http.MethodPost, "/wizard/sessions", `{"slug":"corleone-cuts"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	var view View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.SessionID == "" || view.Shop.Slug != "corleone-cuts" {
		t.Fatalf("view = %+v", view)
	}

	rec = doJSON(t, router, http.MethodGet, "/wizard/sessions/"+view.SessionID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("view status = %d", rec.Code)
	}
}

func TestHandlerStartRequiresSlug(t *testing.T) {
	router := newTestRouter(t, newFakeUpstream())

	rec := doJSON(t, router, http.MethodPost, "/wizard/sessions", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerUnknownSessionIs404(t *testing.T) {
	router := newTestRouter(t, newFakeUpstream())

	rec := doJSON(t, router, http.MethodGet, "/wizard/sessions/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerDateConflict(t *testing.T) {
	fake := newFakeUpstream()
	fake.unavailable["2026-06"] = []string{"2026-06-20"}
	router := newTestRouter(t, fake)

	rec := doJSON(t, router, http.MethodPost, "/wizard/sessions", `{"slug":"corleone-cuts"}`)
	var view View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	base := "/wizard/sessions/" + view.SessionID
	doJSON(t, router, http.MethodPost, base+"/service", `{"service_id":"svc-1"}`)
	doJSON(t, router, http.MethodPost, base+"/barber", `{"barber_id":"barber-1"}`)

	rec = doJSON(t, router, http.MethodPost, base+"/date", `{"date":"2026-06-20"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerSubmitMapsErrors(t *testing.T) {
	fake := newFakeUpstream()
	fake.slots["2026-06-15"] = &upstream.FreeSlotsResponse{Slots: []upstream.TimeSlot{{Time: "11:00"}}}
	fake.bookingErr = &upstream.APIError{StatusCode: 403, Message: "Você já possui um agendamento ativo"}
	router := newTestRouter(t, fake)

	rec := doJSON(t, router, http.MethodPost, "/wizard/sessions", `{"slug":"corleone-cuts"}`)
	var view View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	base := "/wizard/sessions/" + view.SessionID
	doJSON(t, router, http.MethodPost, base+"/service", `{"service_id":"svc-1"}`)
	doJSON(t, router, http.MethodPost, base+"/barber", `{"barber_id":"barber-1"}`)
	doJSON(t, router, http.MethodPost, base+"/time", `{"time":"11:00"}`)

	// Incomplete form first.
	rec = doJSON(t, router, http.MethodPost, base+"/booking", `{"name":"V","phone":"1"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("validation status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}

	// Then the upstream rejection, passed through verbatim.
	rec = doJSON(t, router, http.MethodPost, base+"/booking", `{"name":"Vito","phone":"11987654321"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("upstream status = %d, want 403, body %s", rec.Code, rec.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload["error"] != "Você já possui um agendamento ativo" {
		t.Errorf("error = %q, want upstream message verbatim", payload["error"])
	}
}
