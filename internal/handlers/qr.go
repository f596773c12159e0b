// internal/handlers/qr.go
package handlers

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"
)

// RoomQRHandler serves a PNG QR code encoding the join link for an
// existing room, for sharing across the table.
func RoomQRHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["roomID"]
		if _, ok := s.Manager.Registry().Get(roomID); !ok {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}

		joinURL := s.publicURL + "/?room=" + url.QueryEscape(roomID)
		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			s.log.Warnf("failed to encode QR for room %s: %v", roomID, err)
			http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}
