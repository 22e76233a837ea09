package handlers

import (
	"net/http"

	"github.com/ferreirogomes/rtoken/event_listener"
	"github.com/ferreirogomes/rtoken/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter monta as rotas HTTP do serviço.
func NewRouter(token *services.Token, events event_listener.EventStore) http.Handler {
	tokenHandler := NewTokenHandler(token, events)
	restrictionHandler := NewRestrictionHandler(token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/token", tokenHandler.GetInfo)
	r.Get("/balances/{address}", tokenHandler.GetBalance)
	r.Get("/allowances/{owner}/{spender}", tokenHandler.GetAllowance)
	r.Get("/events", tokenHandler.ListEvents)

	r.Route("/transfers", func(r chi.Router) {
		r.Post("/", tokenHandler.Transfer)
		r.Post("/from", tokenHandler.TransferFrom)
	})
	r.Post("/approvals", tokenHandler.Approve)

	r.Route("/restrictions", func(r chi.Router) {
		r.Get("/", restrictionHandler.ListRules)
		r.Get("/detect", restrictionHandler.Detect)
		r.Get("/{code}/message", restrictionHandler.Message)
	})

	return r
}
