// CORS negotiation for browser clients.
//
// Two policies, selected by configuration:
//   - wildcard: empty allow-list or a "*" entry -> every response gets "*"
//   - allow-list: the request's Origin is echoed back only when it is a
//     member of the list; anything else gets the list's first (default)
//     entry, so an unknown origin is never granted itself.
//
// Headers are attached to every response, including errors and the OPTIONS
// pre-flight short-circuit.
package gateway

import "net/http"

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "POST, OPTIONS"
)

// negotiateOrigin computes the Access-Control-Allow-Origin value for a request.
func (g *Gateway) negotiateOrigin(r *http.Request) string {
	origins := g.cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		return "*"
	}
	for _, o := range origins {
		if o == "*" {
			return "*"
		}
	}

	requested := r.Header.Get("Origin")
	for _, o := range origins {
		if o == requested {
			return requested
		}
	}
	return origins[0]
}

// applyCORS attaches the negotiated headers to the response.
func (g *Gateway) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := g.negotiateOrigin(r)
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	if origin != "*" {
		// The response depends on the request origin; caches must not mix them.
		h.Add("Vary", "Origin")
	}
}
