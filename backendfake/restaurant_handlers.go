package backendfake

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-admin-console/apimodel"
)

func (b *Backend) ListRestaurantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		list := append([]apimodel.Restaurant{}, b.restaurants...)
		b.mu.Unlock()

		writeData(w, http.StatusOK, list)
	}
}

func (b *Backend) CreateRestaurantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.CreateRestaurantRequest
		if !decodeBody(w, r, &req) {
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "Restaurant name is required")
			return
		}
		writeData(w, http.StatusCreated, b.AddRestaurant(name, apimodel.RestaurantInactive))
	}
}
