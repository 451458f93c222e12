// Package apitest provides an in-memory double of the gig job board REST API
// for package tests.
//
// The double follows the server contract the client relies on: the same
// routes under /api, the same JSON envelopes, HS256 bearer tokens carrying
// user_id and user_type, role checks that answer 403, and {error} bodies on
// failure. Every request is recorded so tests can assert on headers, bodies,
// and the absence of calls.
//
//	srv := apitest.NewServer(t)
//	worker := srv.SeedUser("a@b.com", "secret1", "Asha", model.UserTypeWorker)
//	client := api.New(srv.URL(), storage.NewMemoryStore())
package apitest
