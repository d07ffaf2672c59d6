package feed

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ConnectionManager handles the feed connection lifecycle, health
// monitoring and reconnection.
type ConnectionManager struct {
	client      *Client
	wsURL       string
	lastMsgTime time.Time
}

// NewConnectionManager creates a new ConnectionManager.
func NewConnectionManager(wsURL string) *ConnectionManager {
	return &ConnectionManager{
		wsURL:       wsURL,
		lastMsgTime: time.Now(),
	}
}

// Connect establishes the initial feed connection.
func (cm *ConnectionManager) Connect() error {
	fmt.Println("🔌 Connecting to order feed...")
	cm.client = NewClient(cm.wsURL)

	if err := cm.client.Connect(); err != nil {
		return fmt.Errorf("order feed connection failed: %w", err)
	}
	fmt.Println("✅ Order feed connected!")
	return nil
}

// StartPing starts the keep-alive pinger.
func (cm *ConnectionManager) StartPing(interval time.Duration) {
	if cm.client != nil {
		cm.client.StartPing(interval)
	}
}

// ReadMessage reads a message from the feed.
func (cm *ConnectionManager) ReadMessage() (*Message, error) {
	if cm.client == nil {
		return nil, fmt.Errorf("client not connected")
	}
	msg, err := cm.client.ReadMessage()
	if err == nil {
		cm.lastMsgTime = time.Now()
	}
	return msg, err
}

// Close closes the connection.
func (cm *ConnectionManager) Close() error {
	if cm.client != nil {
		return cm.client.Close()
	}
	return nil
}

// Reconnect attempts to reconnect the feed.
func (cm *ConnectionManager) Reconnect() error {
	_ = cm.Close()

	cm.client = NewClient(cm.wsURL)
	if err := cm.client.Connect(); err != nil {
		return fmt.Errorf("feed connection failed: %w", err)
	}

	cm.StartPing(25 * time.Second)
	log.Println("✅ Order feed reconnection successful")
	return nil
}

// RunHealthMonitor starts a background loop to check connection health.
func (cm *ConnectionManager) RunHealthMonitor(ctx context.Context) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	log.Println("💓 Order feed health monitoring started")

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Order feed health monitoring stopped")
			return
		case <-ticker.C:
			timeSinceLastMessage := time.Since(cm.lastMsgTime)

			// A quiet restaurant is normal; only reconnect after a long gap
			if timeSinceLastMessage > 10*time.Minute {
				log.Printf("⚠️  No feed message received for %v, reconnecting...", timeSinceLastMessage.Round(time.Second))

				if err := cm.Reconnect(); err != nil {
					log.Printf("❌ Feed reconnection failed: %v", err)
				} else {
					log.Println("✅ Feed reconnected successfully")
					cm.lastMsgTime = time.Now()
				}
			} else {
				log.Printf("💓 Order feed healthy, last message %v ago", timeSinceLastMessage.Round(time.Second))
			}
		}
	}
}
