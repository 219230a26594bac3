package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"agregados/pkg/orders"
	"agregados/pkg/rowstore"
)

// Handler serves the order book. Every mutation is one read-resolve-write
// cycle against the store; the client refetches afterwards, nothing is
// cached here.
type Handler struct {
	store   rowstore.Store
	mutator *orders.Mutator

	mu sync.Mutex
	// At most one delete can be armed at a time. Arming a different order
	// replaces it; any other successful mutation disarms it.
	pendingDelete string
}

func NewHandler(store rowstore.Store) *Handler {
	return &Handler{
		store:   store,
		mutator: orders.NewMutator(store),
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.loadFresh(r)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"pedidos": list,
		"resumo":  orders.Summarize(list),
	})
}

func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	list, err := h.loadFresh(r)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, orders.BuildReports(list))
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var f orders.Fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	id, err := h.mutator.Create(r.Context(), f)
	if err != nil {
		sendError(w, err)
		return
	}
	h.disarm()
	sendJSON(w, http.StatusCreated, map[string]string{"id_pedido": id})
}

func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	flag := flagParam(chi.URLParam(r, "flag"))
	if !orders.IsFlagColumn(flag) {
		sendJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown flag: " + flag})
		return
	}
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	value := orders.FlagValue(strings.ToLower(strings.TrimSpace(body.Value)))
	if value != orders.Yes && value != orders.No {
		sendJSON(w, http.StatusBadRequest, map[string]string{"error": `value must be "sim" or "não"`})
		return
	}
	if err := h.mutator.SetFlag(r.Context(), id, flag, value); err != nil {
		sendError(w, err)
		return
	}
	h.disarm()
	sendJSON(w, http.StatusOK, map[string]string{"id_pedido": id, "flag": flag, "value": string(value)})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.mu.Lock()
	if h.pendingDelete != id {
		h.pendingDelete = id
		h.mu.Unlock()
		sendJSON(w, http.StatusAccepted, map[string]string{
			"id_pedido": id,
			"status":    "confirmation required, repeat the request to delete",
		})
		return
	}
	h.pendingDelete = ""
	h.mu.Unlock()

	if err := h.mutator.Delete(r.Context(), id); err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"id_pedido": id, "status": "deleted"})
}

func (h *Handler) cancelDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mu.Lock()
	if h.pendingDelete == id {
		h.pendingDelete = ""
	}
	h.mu.Unlock()
	sendJSON(w, http.StatusOK, map[string]string{"id_pedido": id, "status": "delete cancelled"})
}

func (h *Handler) resetAll(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.Header.Get("X-Confirm-Reset"), "sim") {
		sendJSON(w, http.StatusBadRequest, map[string]string{
			"error": `destructive: set header X-Confirm-Reset: sim`,
		})
		return
	}
	if err := h.mutator.ResetAll(r.Context()); err != nil {
		sendError(w, err)
		return
	}
	h.disarm()
	sendJSON(w, http.StatusOK, map[string]string{"status": "all orders cleared"})
}

func (h *Handler) loadFresh(r *http.Request) ([]orders.Order, error) {
	table, err := h.store.ReadAll(r.Context())
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return []orders.Order{}, nil
	}
	list, err := orders.Load(table)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []orders.Order{}
	}
	return list, nil
}

func (h *Handler) disarm() {
	h.mu.Lock()
	h.pendingDelete = ""
	h.mu.Unlock()
}

// flagParam turns a URL segment into a normalized flag column name, so both
// /flags/entregue and /flags/pagamento-material work.
func flagParam(s string) string {
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.ToLower(strings.TrimSpace(s))
}

func sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var transport *rowstore.TransportError
	var schema *orders.SchemaError
	switch {
	case errors.Is(err, orders.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orders.ErrNoIDColumn):
		status = http.StatusConflict
	case errors.As(err, &transport):
		status = http.StatusBadGateway
	case errors.As(err, &schema):
		status = http.StatusInternalServerError
	}
	log.WithError(err).Error("Request failed")
	sendJSON(w, status, map[string]string{"error": err.Error()})
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("Failed to encode response")
		sendResponse(w, http.StatusInternalServerError, []byte(`{"error":"encoding failed"}`))
		return
	}
	sendResponse(w, status, body)
}

func sendResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
