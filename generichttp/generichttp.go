// Package generichttp defines the route tables HTTP adapters are built from
// and small helpers for answering requests
package generichttp

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi"
)

// MethodPath is a struct containing an HTTP method and path
type MethodPath struct {
	Method, Path string
}

// RouteTable maps method/path pairs to handlers
type RouteTable map[MethodPath]http.HandlerFunc

// HTTPer is something that can be served over HTTP
type HTTPer interface {
	RT() RouteTable
}

// Endpoints lists the routes of the table as "METHOD /path", sorted by path
func (rt RouteTable) Endpoints() []string {
	keys := make([]MethodPath, 0, len(rt))
	for k := range rt {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Method < keys[j].Method
	})
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Method + " " + k.Path
	}
	return out
}

// Bind binds every route of the table on r, plus GET /route-list which
// returns the endpoints as a JSON array
func (rt RouteTable) Bind(r chi.Router) {
	for k, f := range rt {
		r.MethodFunc(k.Method, k.Path, f)
	}
	r.Get("/route-list", func(w http.ResponseWriter, req *http.Request) {
		WriteJSON(w, rt.Endpoints())
	})
}

// WriteJSON encodes v as the response body with status 200
func WriteJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		// the header is gone, all that is left is to tell the log
		log.Printf("error encoding %T to json %q", v, err)
	}
}

// BadRequest replies with status 400 and the error text
func BadRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// NotFound replies with status 404 and the error text
func NotFound(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusNotFound)
}

// InternalError replies with status 500 and the error text
func InternalError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// QueryInt parses the query parameter key as an int, returning def if it is absent
func QueryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s=%q is not an integer", key, s)
	}
	return i, nil
}
