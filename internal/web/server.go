package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/On-Jun9/NamePipe/internal/config"
)

type Server struct {
	router  *mux.Router
	hub     *Hub
	version string
	dataDir string
}

func NewServer() *Server {
	s := &Server{
		router:  mux.NewRouter(),
		hub:     NewHub(),
		version: "unknown",
		dataDir: config.DefaultDataDir(),
	}

	go s.hub.Run()

	s.setupRoutes()
	return s
}

func (s *Server) SetVersion(v string) {
	s.version = v
}

// SetDataDir moves presets, history and logs away from ~/.namepipe.
func (s *Server) SetDataDir(dir string) {
	s.dataDir = dir
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", s.handleVersion).Methods("GET")
	api.HandleFunc("/browse", s.handleBrowse).Methods("GET")
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/plan", s.handlePlan).Methods("POST")
	api.HandleFunc("/run", s.handleRun).Methods("POST")
	api.HandleFunc("/export", s.handleExport).Methods("POST")
	api.HandleFunc("/ws", s.handleWebSocket)

	// Preset routes
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets", s.handleSavePreset).Methods("POST")
	api.HandleFunc("/presets/load", s.handleLoadPreset).Methods("GET")
	api.HandleFunc("/presets/delete", s.handleDeletePreset).Methods("DELETE")

	api.HandleFunc("/history", s.handleGetHistory).Methods("GET")

	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("web/static")))
}

func (s *Server) Start(addr string) error {
	fmt.Printf("Starting NamePipe Web UI at http://%s\n", addr)
	return http.ListenAndServe(addr, s.router)
}
