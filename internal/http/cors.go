package httpx

import "net/http"

// corsHeaders applies the permissive cross-origin policy the SPA relies on
// and short-circuits preflight requests.
func corsHeaders(w http.ResponseWriter, req *http.Request) (done bool) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if req.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}
