// Package debugserver exposes a small HTTP introspection surface over a
// running interpreter's store and thunk memo, routed with
// github.com/gorilla/mux (the teacher's own stack has no HTTP server; this
// follows the pack's elasticproxy routing style).
package debugserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/weavelang/weave/lang/store"
)

// Server serves /healthz, /handles/{id}, and /memo/stats against a single
// Store and ThunkMemo.
type Server struct {
	Store *store.Store
	Memo  *store.ThunkMemo
}

// Handler builds the mux.Router serving this Server's routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/handles/{id}", s.handleHandle).Methods(http.MethodGet)
	r.HandleFunc("/memo/stats", s.handleMemoStats).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleHandle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, fmt.Sprintf("bad handle id: %s", err), http.StatusBadRequest)
		return
	}

	if id == 0 || id > uint64(s.Store.NumCells()) {
		http.Error(w, "handle id out of range", http.StatusNotFound)
		return
	}
	h := store.HandleFromID(s.Store, uint32(id))
	rd, err := s.Store.Reader(h)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(describeValue(rd))
}

func (s *Server) handleMemoStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"entries": s.Memo.Len()})
}

// valueView is the JSON shape /handles/{id} renders; it describes a cell's
// kind plus a short preview of scalar payloads, stopping short of walking
// compound sub-handles (that's what a second request is for).
type valueView struct {
	Kind    string `json:"kind"`
	Preview string `json:"preview,omitempty"`
}

func describeValue(r *store.Reader) valueView {
	v := valueView{Kind: r.Kind().String()}
	switch r.Kind() {
	case store.Bool:
		b, _ := r.AsBool()
		v.Preview = strconv.FormatBool(b)
	case store.Int, store.Float:
		n, _ := r.AsNumeric()
		if n.IsFloat {
			v.Preview = strconv.FormatFloat(n.F, 'g', -1, 64)
		} else {
			v.Preview = strconv.FormatInt(n.I, 10)
		}
	case store.String:
		str, _ := r.AsString()
		v.Preview = str
	case store.Buffer:
		buf, _ := r.AsBuffer()
		v.Preview = fmt.Sprintf("%d bytes", len(buf))
	}
	return v
}
