// Package feed consumes the ordering subsystem's WebSocket feed: order
// lifecycle messages and catalog updates, one JSON frame per message.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types on the feed
const (
	TypeOrderPlaced   = "order_placed"
	TypeOrderComplete = "order_completed"
	TypeCatalogItem   = "catalog_item"
)

// Message is one frame from the feed. Payload stays raw until a handler
// decodes it by type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OrderPayload is the body of order_placed and order_completed frames
type OrderPayload struct {
	TenantID    string      `json:"tenant_id"`
	OrderID     string      `json:"order_id"`
	Status      string      `json:"status"`
	PlacedAt    time.Time   `json:"placed_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Total       float64     `json:"total"`
	Items       []OrderLine `json:"items"`
}

// OrderLine is one line of an order payload
type OrderLine struct {
	ItemID    int64   `json:"item_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CatalogPayload is the body of catalog_item frames
type CatalogPayload struct {
	TenantID        string  `json:"tenant_id"`
	ItemID          int64   `json:"item_id"`
	Name            string  `json:"name"`
	Available       bool    `json:"available"`
	Price           float64 `json:"price"`
	CategoryID      string  `json:"category_id"`
	PopularityScore int     `json:"popularity_score"`
}

// Client represents a WebSocket client for the order feed
type Client struct {
	url        string
	conn       *websocket.Conn
	header     http.Header
	writeMu    sync.Mutex
	pingCancel context.CancelFunc
}

// NewClient creates a new feed client
func NewClient(url string) *Client {
	header := make(http.Header)
	header.Set("User-Agent", "qrmenu-reco/1.0")

	return &Client{
		url:    url,
		header: header,
	}
}

// Connect establishes the WebSocket connection
func (c *Client) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, c.header)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.conn = conn
	log.Printf("✅ Connected to %s", c.url)
	return nil
}

// StartPing starts periodic pings to keep the connection alive
func (c *Client) StartPing(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	c.pingCancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.writeMu.Lock()
				err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				c.writeMu.Unlock()
				if err != nil {
					log.Println("Failed to send ping:", err)
					return
				}
			}
		}
	}()
}

// ReadMessage reads and decodes one JSON frame
func (c *Client) ReadMessage() (*Message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	msg := &Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("message without type")
	}

	return msg, nil
}

// Close closes the WebSocket connection
func (c *Client) Close() error {
	if c.pingCancel != nil {
		c.pingCancel()
	}

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
