package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by channel
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	// Inbound messages from clients
	broadcast chan []byte

	// Register/unregister requests
	register   chan *Client
	unregister chan *Client

	// Channel subscription requests
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	// Latest share price per fund, flushed on an interval
	priceBuffer map[string]*SharePriceMessage

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Configuration
	config *HubConfig
}

// HubConfig contains hub configuration
type HubConfig struct {
	// Share prices are coalesced and flushed on this interval
	PriceInterval time.Duration // Default: 500ms

	// Connection limits
	MaxClientsPerIP  int
	MaxSubscriptions int

	// Rate limiting
	MessageRateLimit int // Messages per second per client
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		PriceInterval:    500 * time.Millisecond,
		MaxClientsPerIP:  10,
		MaxSubscriptions: 50,
		MessageRateLimit: 100,
	}
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	Client  *Client
	Channel string
	Action  string // "subscribe" or "unsubscribe"
}

// NewHub creates a new Hub
func NewHub(config *HubConfig) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}

	return &Hub{
		clients:     make(map[*Client]bool),
		channels:    make(map[string]map[*Client]bool),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *SubscriptionRequest, 256),
		unsubscribe: make(chan *SubscriptionRequest, 256),
		priceBuffer: make(map[string]*SharePriceMessage),
		config:      config,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	priceTicker := time.NewTicker(h.config.PriceInterval)
	defer priceTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.subscribe:
			h.handleSubscription(req)

		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-priceTicker.C:
			h.broadcastSharePrices()
		}
	}
}

// registerClient adds a new client
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		// Remove from all channels
		for channel, clients := range h.channels {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}

		close(client.send)
	}
}

// handleSubscription handles a subscription request
func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true

	// Send subscription confirmation
	confirmation := &WSMessage{
		Type:    "subscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// handleUnsubscription handles an unsubscription request
func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	// Send unsubscription confirmation
	confirmation := &WSMessage{
		Type:    "unsubscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// broadcastMessage sends a message to all clients
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client buffer is full, skip
		}
	}
}

// BroadcastToChannel sends a message to all clients subscribed to a channel
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	h.mu.RLock()
	clients, ok := h.channels[channel]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Make a copy of clients to avoid holding lock during send
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	for _, client := range clientList {
		select {
		case client.send <- data:
		default:
			// Client buffer is full, skip
		}
	}
}

// ============ Channel-specific broadcasts ============

// UpdateSharePrice updates the share price buffer for a fund
func (h *Hub) UpdateSharePrice(fundID string, price *SharePriceMessage) {
	h.mu.Lock()
	h.priceBuffer[fundID] = price
	h.mu.Unlock()
}

// broadcastSharePrices flushes the buffered share prices to subscribers
func (h *Hub) broadcastSharePrices() {
	h.mu.RLock()
	prices := make(map[string]*SharePriceMessage)
	for k, v := range h.priceBuffer {
		prices[k] = v
	}
	h.mu.RUnlock()

	for fundID, price := range prices {
		channel := "shareprice:" + fundID
		msg := &WSMessage{
			Type:    "shareprice",
			Channel: channel,
			Data:    price,
		}
		h.BroadcastToChannel(channel, msg)
	}
}

// BroadcastFundEvent broadcasts a lifecycle or trading event for a fund
func (h *Hub) BroadcastFundEvent(fundID string, event *FundEventMessage) {
	channel := "fund:" + fundID
	msg := &WSMessage{
		Type:    "fund_event",
		Channel: channel,
		Data:    event,
	}
	h.BroadcastToChannel(channel, msg)
}

// BroadcastPosition broadcasts a position update to a specific investor
func (h *Hub) BroadcastPosition(investor string, position *PositionMessage) {
	channel := "position:" + investor
	msg := &WSMessage{
		Type:    "position",
		Channel: channel,
		Data:    position,
	}
	h.BroadcastToChannel(channel, msg)
}

// BroadcastClaim broadcasts a pending claim update to a specific investor
func (h *Hub) BroadcastClaim(investor string, claim *ClaimMessage) {
	channel := "claims:" + investor
	msg := &WSMessage{
		Type:    "claim",
		Channel: channel,
		Data:    claim,
	}
	h.BroadcastToChannel(channel, msg)
}

// ============ Message Types ============

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
	Data    interface{} `json:"data,omitempty"`
}

// SharePriceMessage represents a share price update
type SharePriceMessage struct {
	FundID         string `json:"fund_id"`
	Denomination   string `json:"denomination"`
	SharePrice     string `json:"share_price"`
	GrossValue     string `json:"gross_value"`
	TotalShare     string `json:"total_share"`
	LiquidReserve  string `json:"liquid_reserve"`
	State          string `json:"state"`
	Timestamp      int64  `json:"timestamp"`
}

// FundEventMessage represents a fund lifecycle or trading event
type FundEventMessage struct {
	FundID    string `json:"fund_id"`
	Event     string `json:"event"` // e.g. "purchased", "redeemed", "pending_resolved"
	Investor  string `json:"investor,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Share     string `json:"share,omitempty"`
	Round     uint64 `json:"round,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// PositionMessage represents an investor position update
type PositionMessage struct {
	Investor   string `json:"investor"`
	FundID     string `json:"fund_id"`
	Share      string `json:"share"`
	Value      string `json:"value"`
	SharePrice string `json:"share_price"`
	Timestamp  int64  `json:"timestamp"`
}

// ClaimMessage represents a pending redemption claim update
type ClaimMessage struct {
	Investor     string `json:"investor"`
	FundID       string `json:"fund_id"`
	Round        uint64 `json:"round"`
	PendingShare string `json:"pending_share"`
	Claimable    string `json:"claimable"`
	Resolved     bool   `json:"resolved"`
	Timestamp    int64  `json:"timestamp"`
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelCount returns the number of active channels
func (h *Hub) GetChannelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.channels[channel]; ok {
		return len(clients)
	}
	return 0
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = generateID()
	}

	investor := r.URL.Query().Get("address")
	ip := getClientIPFromRequest(r)

	client := NewClient(h, conn, clientID, investor, ip)

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Helper function to get client IP
func getClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

// Generate a simple ID
func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
