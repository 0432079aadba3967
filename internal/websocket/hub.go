package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients and routes group activity
// messages to the clients subscribed to each group.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of group IDs to the set of clients subscribed to each.
	subscriptions map[string]map[*Client]bool

	// Targeted messages from services.
	broadcast chan targetedMessage
}

type targetedMessage struct {
	groupID string
	payload []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		broadcast:     make(chan targetedMessage, 64),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if client.GroupID != "" {
				h.addSubscription(client, client.GroupID)
			}
			log.Info().Int("total_clients", len(h.clients)).Str("group_id", client.GroupID).Msg("Feed client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Feed client disconnected")
			}
		case msg := <-h.broadcast:
			for client := range h.subscriptions[msg.groupID] {
				select {
				case client.Send <- msg.payload:
				default:
					close(client.Send)
					delete(h.clients, client)
					delete(h.subscriptions[msg.groupID], client)
				}
			}
		}
	}
}

// BroadcastTo sends a message to all clients subscribed to a group.
// It never blocks the caller.
func (h *Hub) BroadcastTo(groupID string, message []byte) {
	select {
	case h.broadcast <- targetedMessage{groupID: groupID, payload: message}:
	default:
		log.Warn().Str("group_id", groupID).Msg("Activity broadcast dropped, hub backlog full")
	}
}

func (h *Hub) addSubscription(client *Client, groupID string) {
	if h.subscriptions[groupID] == nil {
		h.subscriptions[groupID] = make(map[*Client]bool)
	}
	h.subscriptions[groupID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for groupID, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, groupID)
			}
		}
	}
}
