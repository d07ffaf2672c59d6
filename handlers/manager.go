package handlers

import (
	"fmt"
	"sync"

	"qrmenu-reco/feed"
)

// HandlerManager mengelola multiple message handlers
type HandlerManager struct {
	handlers map[string]MessageHandler
	mu       sync.RWMutex
}

// NewHandlerManager membuat instance HandlerManager baru
func NewHandlerManager() *HandlerManager {
	return &HandlerManager{
		handlers: make(map[string]MessageHandler),
	}
}

// RegisterHandler mendaftarkan handler untuk satu tipe pesan feed
func (hm *HandlerManager) RegisterHandler(messageType string, handler MessageHandler) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	hm.handlers[messageType] = handler
	fmt.Printf("📦 Registered handler: %s (type: %s)\n", messageType, handler.GetMessageType())
}

// UnregisterHandler menghapus handler dengan tipe tertentu
func (hm *HandlerManager) UnregisterHandler(messageType string) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	delete(hm.handlers, messageType)
}

// GetHandler mendapatkan handler berdasarkan tipe pesan
func (hm *HandlerManager) GetHandler(messageType string) (MessageHandler, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	handler, exists := hm.handlers[messageType]
	return handler, exists
}

// HandleMessage memproses pesan feed menggunakan handler yang sesuai
func (hm *HandlerManager) HandleMessage(msg *feed.Message) error {
	handler, exists := hm.GetHandler(msg.Type)
	if !exists {
		return fmt.Errorf("handler '%s' not found", msg.Type)
	}

	return handler.Handle(msg)
}

// ListHandlers mengembalikan daftar tipe pesan yang terdaftar
func (hm *HandlerManager) ListHandlers() []string {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	names := make([]string, 0, len(hm.handlers))
	for name := range hm.handlers {
		names = append(names, name)
	}
	return names
}
