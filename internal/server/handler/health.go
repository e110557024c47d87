package handler

import (
	"net/http"

	"github.com/garrettladley/ebaynotify/internal/version"
	"github.com/garrettladley/ebaynotify/internal/xhttp"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HandleHealth handles GET /health requests.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	xhttp.WriteOK(w, healthResponse{Status: "ok", Version: version.Get()})
}
