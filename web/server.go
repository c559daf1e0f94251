// Package web is the optional preview server: it exposes an exported
// registry over HTTP so converted materials, layers and bitmaps can be
// inspected before the pages ship.
package web

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/report"
)

type server struct {
	reg *plasma.Registry
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/pages", s.handlePages)
	r.HandleFunc("/json/pages/{page}", s.handlePageObjects)
	r.HandleFunc("/json/pages/{page}/{type}/{name}", s.handleObject)
	r.HandleFunc("/dump/pages/{page}/{type}/{name}", s.handleObjectDump)
	r.HandleFunc("/preview/{page}/{name}", s.handleBitmapPreview)
	return r
}

// StartServer serves the registry on addr until the process dies.
func StartServer(addr string, reg *plasma.Registry, rep *report.Reporter) error {
	s := &server{reg: reg}

	h := handlers.RecoveryHandler()(s.router())
	h = handlers.LoggingHandler(os.Stdout, h)

	rep.Infof("preview server listening on %s", addr)
	return http.ListenAndServe(addr, h)
}
