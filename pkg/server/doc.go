// Package server hosts live form pages over HTTP and WebSocket.
//
// Each page visit gets its own session: a form instance built from the
// served definition, with every field bound to a remote element that
// proxies the browser input. Client events ({type, field, value} JSON
// messages) feed the field bindings; the form's reactions (error
// writes, value seeding, refocus on error) travel back as sequenced
// frames of ops the thin client applies to the DOM.
//
//	def, _ := formdef.Load("signup.yaml")
//	srv, err := server.New(def, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv.SetStore(store.NewMemoryStore(), "memory")
//	log.Fatal(srv.Run())
//
// The server exposes GET / (the rendered form page), GET /ws (the live
// socket), GET /client.js, GET /healthz and GET /metrics. In dev mode
// the definition file is watched and connected pages reload when it
// changes.
package server
