package apitest

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

// SeedMessages добавляет сообщения в историю, назначая id.
func (s *Server) SeedMessages(items ...models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range items {
		m.ID = s.newID()
		s.messages = append(s.messages, m)
	}
}

// Messages текущая история сообщений на сервере.
func (s *Server) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message{}, s.messages...)
}

// validPhone грубая проверка, которую делает провайдер рассылки.
func validPhone(p string) bool {
	if !strings.HasPrefix(p, "+") || len(p) < 11 || len(p) > 16 {
		return false
	}
	for _, r := range p[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := decode(r, &req); err != nil || req.Message == "" {
		writeError(w, r, http.StatusBadRequest, "phone and message are required")
		return
	}
	if !validPhone(req.Phone) {
		writeError(w, r, http.StatusBadRequest, "Invalid phone number: "+req.Phone)
		return
	}

	s.mu.Lock()
	m := models.Message{ID: s.newID(), Phone: req.Phone, Message: req.Message, Status: models.MessageSent, CreatedAt: s.timestamp()}
	s.messages = append(s.messages, m)
	s.mu.Unlock()

	render.JSON(w, r, m)
}

func (s *Server) sendBulk(w http.ResponseWriter, r *http.Request) {
	var req models.BulkMessageRequest
	if err := decode(r, &req); err != nil || req.Message == "" || len(req.Phones) == 0 {
		writeError(w, r, http.StatusBadRequest, "phones and message are required")
		return
	}
	for _, p := range req.Phones {
		if !validPhone(p) {
			writeError(w, r, http.StatusBadRequest, "Invalid phone number: "+p)
			return
		}
	}

	s.mu.Lock()
	now := s.timestamp()
	for _, p := range req.Phones {
		s.messages = append(s.messages, models.Message{ID: s.newID(), Phone: p, Message: req.Message, Status: models.MessageSent, CreatedAt: now})
	}
	s.mu.Unlock()

	render.JSON(w, r, map[string]int{"sent": len(req.Phones)})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, status := q.Get("start"), q.Get("end"), q.Get("status")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Message{}
	for _, m := range s.messages {
		day := datePart(m.CreatedAt)
		if start != "" && day < start {
			continue
		}
		if end != "" && day > end {
			continue
		}
		if status != "" && string(m.Status) != status {
			continue
		}
		out = append(out, m)
	}
	render.JSON(w, r, out)
}
