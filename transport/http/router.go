// Package http exposes the REST surface of the relay: submissions, history,
// group lifecycle, contacts and auth. Real-time delivery lives in the ws
// transport; everything here is plain request/response.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Deps struct {
	Messages *MessageHandlers
	Groups   *GroupHandlers
	Auth     *AuthHandlers
	WS       http.HandlerFunc
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		ok(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", d.Auth.Register)
		r.Post("/auth/login", d.Auth.Login)

		r.Get("/contacts", d.Auth.Contacts)

		r.Post("/send", d.Messages.SendDirect)
		r.Get("/messages", d.Messages.DirectHistory)

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", d.Groups.Create)
			r.Get("/", d.Groups.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", d.Groups.Delete)
				r.Post("/message", d.Messages.SendGroup)
				r.Get("/messages", d.Messages.GroupHistory)
				r.Post("/members", d.Groups.AddMember)
				r.Delete("/members/{user}", d.Groups.RemoveMember)
			})
		})
	})

	if d.WS != nil {
		r.Get("/ws", d.WS)
	}

	return r
}
