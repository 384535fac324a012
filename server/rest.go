package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/devstack-tools/localconf/metaconfig"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// ConfigRestful serves the held configuration over HTTP
type ConfigRestful struct {
	router   *mux.Router
	holder   *Holder
	registry *prometheus.Registry
}

// NewConfigRestful creates the REST handler set for h
func NewConfigRestful(h *Holder) *ConfigRestful {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewConfigCollector(h))
	return &ConfigRestful{router: mux.NewRouter(), holder: h, registry: registry}
}

// CreateHandler registers every route and returns the router
func (cr *ConfigRestful) CreateHandler() http.Handler {
	cr.router.HandleFunc("/config", cr.ListConfig).Methods("GET")
	cr.router.HandleFunc("/config/{key}", cr.GetConfig).Methods("GET")
	cr.router.HandleFunc("/services", cr.ListServices).Methods("GET")
	cr.router.HandleFunc("/plugins", cr.ListPlugins).Methods("GET")
	cr.router.HandleFunc("/sections", cr.ListSections).Methods("GET")
	cr.router.HandleFunc("/check", cr.Check).Methods("GET")
	cr.router.HandleFunc("/reload", cr.Reload).Methods("POST", "PUT")
	cr.router.Handle("/metrics", promhttp.HandlerFor(cr.registry, promhttp.HandlerOpts{})).Methods("GET")
	return cr.router
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to encode response: ", err)
	}
}

// ListConfig returns the resolved variables. With ?format=shell they are
// rendered as export statements.
func (cr *ConfigRestful) ListConfig(w http.ResponseWriter, req *http.Request) {
	s := cr.holder.Get()
	if req.URL.Query().Get("format") == "shell" {
		buf := bytes.NewBuffer(make([]byte, 0))
		if err := metaconfig.WriteEnv(buf, s.Config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
		return
	}
	writeJSON(w, http.StatusOK, s.Config.Map())
}

// GetConfig returns one variable with its assignments
func (cr *ConfigRestful) GetConfig(w http.ResponseWriter, req *http.Request) {
	key := mux.Vars(req)["key"]
	s := cr.holder.Get()
	value, ok := s.Config.Get(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": key + " is not set"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Key         string      `json:"key"`
		Value       string      `json:"value"`
		Assignments interface{} `json:"assignments"`
	}{key, value, s.Config.AssignmentsOf(key)})
}

// ListServices returns the enabled and disabled services
func (cr *ConfigRestful) ListServices(w http.ResponseWriter, req *http.Request) {
	s := cr.holder.Get()
	writeJSON(w, http.StatusOK, map[string][]string{
		"enabled":  s.Config.Services().Names(),
		"disabled": s.Config.Disabled().Names(),
	})
}

// ListPlugins returns the enabled plugins
func (cr *ConfigRestful) ListPlugins(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, cr.holder.Get().Config.Plugins())
}

type sectionInfo struct {
	Phase string `json:"phase"`
	File  string `json:"file"`
	// Target is the expanded file name, empty if it cannot be expanded
	Target string `json:"target,omitempty"`
	Line   int    `json:"line"`
}

// ListSections returns the meta-sections
func (cr *ConfigRestful) ListSections(w http.ResponseWriter, req *http.Request) {
	c := cr.holder.Get().Config
	result := make([]sectionInfo, 0)
	for _, sec := range c.Sections() {
		info := sectionInfo{Phase: sec.Phase, File: sec.File, Line: sec.Line}
		if !sec.IsLocalrc() {
			info.Target, _ = c.Expand(sec.File)
		}
		result = append(result, info)
	}
	writeJSON(w, http.StatusOK, result)
}

// Check returns the check report of the current snapshot
func (cr *ConfigRestful) Check(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, cr.holder.Get().Report)
}

// Reload loads the file again. On failure the previous snapshot is kept.
func (cr *ConfigRestful) Reload(w http.ResponseWriter, req *http.Request) {
	if err := cr.holder.Reload(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
