package web

import (
	"net/http"
)

// Page serves a page without dynamic content.
func (p *Pages) Page(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.render(w, r, http.StatusOK, name, &pageData{Title: title, Flash: p.popFlash(w, r)})
	}
}

// Pricing shows the plans.
func (p *Pages) Pricing(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "pricing", &pageData{Title: "Pricing", Content: pricingPlans})
}
