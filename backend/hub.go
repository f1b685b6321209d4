package main

import (
	"encoding/json"
	"sync"
)

type Hub struct {
	mu              sync.Mutex
	clients         map[*Client]struct{}
	broadcastState  chan Snapshot
	broadcastMove   chan HistoryEntry
	broadcastSearch chan searchPayload
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type searchPayload struct {
	BestMove  [2]int `json:"best_move"`
	Score     int    `json:"score"`
	Depth     int    `json:"depth"`
	Nodes     uint64 `json:"nodes"`
	IsMate    bool   `json:"is_mate"`
	IsTimeout bool   `json:"is_timeout"`
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[*Client]struct{}),
		broadcastState:  make(chan Snapshot, 16),
		broadcastMove:   make(chan HistoryEntry, 32),
		broadcastSearch: make(chan searchPayload, 16),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcastState:
			h.sendAll(wsMessage{Type: "state", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastMove:
			h.sendAll(wsMessage{Type: "move", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastSearch:
			h.sendAll(wsMessage{Type: "search", Payload: mustMarshal(payload)})
		}
	}
}

func (h *Hub) sendAll(msg wsMessage) {
	h.mu.Lock()
	for client := range h.clients {
		client.sendJSON(msg)
	}
	h.mu.Unlock()
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
