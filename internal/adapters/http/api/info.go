package api

import (
	"fmt"
	"net/http"
)

// InfoHandler serves the service banner and the owner identity.
type InfoHandler struct {
	serviceName string
	identity    Identity
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(serviceName string, identity Identity) *InfoHandler {
	return &InfoHandler{serviceName: serviceName, identity: identity}
}

// HandleRoot handles GET / requests.
func (h *InfoHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, fmt.Sprintf("%s API service successfully", h.serviceName), nil)
}

// HandleMe handles GET /me requests.
func (h *InfoHandler) HandleMe(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, "Student Information", h.identity)
}
