package handlers

import "qrmenu-reco/feed"

// MessageHandler adalah interface dasar untuk semua feed message handlers
type MessageHandler interface {
	// Handle memproses satu pesan feed
	Handle(msg *feed.Message) error

	// GetMessageType mengembalikan tipe message yang di-handle
	GetMessageType() string
}
