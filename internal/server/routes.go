package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/phrase", s.handlePhrase)
	s.router.HandleFunc("GET /api/locales", s.handleListLocales)

	s.router.HandleFunc("GET /api/entries", s.handleListEntries)
	s.router.HandleFunc("POST /api/entries", s.handleCreateEntry)
	s.router.HandleFunc("GET /api/entries/{key}", s.handleGetEntry)
	s.router.HandleFunc("POST /api/entries/{key}/{action}", s.handleEntryAction)
	s.router.HandleFunc("DELETE /api/entries/{key}", s.handleDeleteEntry)

	// Health check
	s.router.HandleFunc("GET /api/health", s.handleHealth)

	// Embedded status page
	s.router.HandleFunc("GET /{path...}", s.handleStatic)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"attached": len(s.board.Attached()),
	})
}
