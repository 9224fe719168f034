package handler

import (
	"chatrelay/backend/internal/relay"
	"chatrelay/backend/internal/storage"
)

// Handler holds the relay components the HTTP surface needs.
type Handler struct {
	Registry  *relay.Registry
	Router    *relay.Router
	Storage   storage.Storage
	jwtSecret []byte
}

func NewHandler(registry *relay.Registry, router *relay.Router, s storage.Storage, jwtSecret string) *Handler {
	return &Handler{
		Registry:  registry,
		Router:    router,
		Storage:   s,
		jwtSecret: []byte(jwtSecret),
	}
}
