package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/twilightcoders/cardgames/internal/gametype"
)

const qrSize = 256

type shareHandler struct {
	store   *gametype.Store
	baseURL string
	log     *logrus.Logger
}

// shareResponse is what a client needs to open a shared game type.
type shareResponse struct {
	ShortID  string `json:"shortId"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	ShareURL string `json:"shareUrl"`
	QRCode   string `json:"qrCode"`
}

func (h *shareHandler) link(shortID string) string {
	return strings.TrimRight(h.baseURL, "/") + "/share/" + shortID
}

// describe resolves a shortId to the game type's public handles.
func (h *shareHandler) describe(w http.ResponseWriter, r *http.Request) {
	shortID := chi.URLParam(r, "shortId")
	g, err := h.store.GetByShortID(r.Context(), shortID)
	if err != nil {
		h.writeLookupError(w, shortID, err)
		return
	}

	link := h.link(g.ShortID)
	writeJSON(w, http.StatusOK, shareResponse{
		ShortID:  g.ShortID,
		Name:     g.Name,
		URL:      g.URL,
		ShareURL: link,
		QRCode:   link + "/qr.png",
	})
}

// qrCode renders the share link of an existing game type as a PNG.
func (h *shareHandler) qrCode(w http.ResponseWriter, r *http.Request) {
	shortID := chi.URLParam(r, "shortId")
	g, err := h.store.GetByShortID(r.Context(), shortID)
	if err != nil {
		h.writeLookupError(w, shortID, err)
		return
	}

	png, err := qrcode.Encode(h.link(g.ShortID), qrcode.Medium, qrSize)
	if err != nil {
		h.log.WithError(err).WithField("shortId", shortID).Error("qr encode failed")
		http.Error(w, "failed to render qr code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *shareHandler) writeLookupError(w http.ResponseWriter, shortID string, err error) {
	if errors.Is(err, gametype.ErrNotFound) {
		http.Error(w, "game type not found", http.StatusNotFound)
		return
	}
	h.log.WithError(err).WithField("shortId", shortID).Error("share lookup failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
