package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/venue-console/internal/models"
)

// SeedCounters добавляет кассы, назначая id.
func (s *Server) SeedCounters(items ...models.Counter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range items {
		c.ID = s.newID()
		s.counters = append(s.counters, c)
	}
}

// SeedTickets добавляет билеты, назначая id.
func (s *Server) SeedTickets(items ...models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range items {
		t.ID = s.newID()
		s.tickets = append(s.tickets, t)
	}
}

// SeedGuides добавляет гидов, назначая id.
func (s *Server) SeedGuides(items ...models.Guide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range items {
		g.ID = s.newID()
		s.guides = append(s.guides, g)
	}
}

// Counters текущее состояние касс на сервере.
func (s *Server) Counters() []models.Counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Counter{}, s.counters...)
}

// Tickets текущее состояние билетов на сервере.
func (s *Server) Tickets() []models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Ticket{}, s.tickets...)
}

// Guides текущее состояние гидов на сервере.
func (s *Server) Guides() []models.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Guide{}, s.guides...)
}

func (s *Server) listCounters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Counters())
}

func (s *Server) registerCounter(w http.ResponseWriter, r *http.Request) {
	var req models.CounterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleCounter
	}

	s.mu.Lock()
	for _, c := range s.counters {
		if c.Username == req.Username {
			s.mu.Unlock()
			writeError(w, r, http.StatusConflict, "Username already exists")
			return
		}
	}
	now := s.timestamp()
	c := models.Counter{ID: s.newID(), Username: req.Username, Role: req.Role, CreatedAt: now, UpdatedAt: now}
	s.counters = append(s.counters, c)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}

func (s *Server) updateCounter(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updateItem(w, r, s.counters, func(c models.Counter) int64 { return c.ID }, func(c *models.Counter) { c.UpdatedAt = s.timestamp() })
}

func (s *Server) deleteCounter(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = deleteItem(w, r, s.counters, func(c models.Counter) int64 { return c.ID }, "Counter not found")
}

func (s *Server) listTickets(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Tickets())
}

func (s *Server) createTicket(w http.ResponseWriter, r *http.Request) {
	var req models.TicketInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ShowName == "" {
		writeError(w, r, http.StatusBadRequest, "show_name is required")
		return
	}

	s.mu.Lock()
	now := s.timestamp()
	t := models.Ticket{
		ID:         s.newID(),
		Price:      req.Price,
		TicketType: req.TicketType,
		ShowName:   req.ShowName,
		Category:   req.Category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.tickets = append(s.tickets, t)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, t)
}

func (s *Server) updateTicket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updateItem(w, r, s.tickets, func(t models.Ticket) int64 { return t.ID }, func(t *models.Ticket) { t.UpdatedAt = s.timestamp() })
}

func (s *Server) deleteTicket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = deleteItem(w, r, s.tickets, func(t models.Ticket) int64 { return t.ID }, "Ticket not found")
}

func (s *Server) listGuides(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Guides())
}

func (s *Server) createGuide(w http.ResponseWriter, r *http.Request) {
	var req models.GuideInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if req.Score < 0 || req.Score > 1000 {
		writeError(w, r, http.StatusBadRequest, "score must be between 0 and 1000")
		return
	}

	s.mu.Lock()
	now := s.timestamp()
	g := models.Guide{
		ID:          s.newID(),
		Name:        req.Name,
		Number:      req.Number,
		VehicleType: req.VehicleType,
		Score:       req.Score,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.guides = append(s.guides, g)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, g)
}

func (s *Server) updateGuide(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updateItem(w, r, s.guides, func(g models.Guide) int64 { return g.ID }, func(g *models.Guide) { g.UpdatedAt = s.timestamp() })
}

func (s *Server) deleteGuide(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guides = deleteItem(w, r, s.guides, func(g models.Guide) int64 { return g.ID }, "Guide not found")
}

func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// updateItem накладывает JSON-тело запроса поверх найденного элемента.
// Вызывается под s.mu.
func updateItem[T any](w http.ResponseWriter, r *http.Request, items []T, idOf func(T) int64, touch func(*T)) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	for i := range items {
		if idOf(items[i]) != id {
			continue
		}
		patched, err := mergeJSON(items[i], r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
		if idOf(patched) != id {
			writeError(w, r, http.StatusBadRequest, "id cannot be changed")
			return
		}
		touch(&patched)
		items[i] = patched
		render.JSON(w, r, patched)
		return
	}
	writeError(w, r, http.StatusNotFound, "not found")
}

// deleteItem удаляет элемент по id из URL. Вызывается под s.mu.
func deleteItem[T any](w http.ResponseWriter, r *http.Request, items []T, idOf func(T) int64, notFound string) []T {
	id, ok := urlID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return items
	}
	for i := range items {
		if idOf(items[i]) == id {
			render.JSON(w, r, map[string]string{"message": "deleted"})
			return append(items[:i:i], items[i+1:]...)
		}
	}
	writeError(w, r, http.StatusNotFound, notFound)
	return items
}

func mergeJSON[T any](item T, r *http.Request) (T, error) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		return item, err
	}
	current, err := json.Marshal(item)
	if err != nil {
		return item, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(current, &merged); err != nil {
		return item, err
	}
	for k, v := range patch {
		merged[k] = v
	}
	buf, err := json.Marshal(merged)
	if err != nil {
		return item, err
	}
	var out T
	if err := json.Unmarshal(buf, &out); err != nil {
		return item, err
	}
	return out, nil
}
