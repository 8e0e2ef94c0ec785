// Package websocket streams bot activity to browser and tooling clients.
//
// The websocket package implements:
//   - A hub that fans every broadcast out to all subscribers
//   - Per-client send queues with slow-reader disconnection
//   - Ping/pong keepalive and read limits on every connection
//   - A JSON envelope naming each event
//
// Architecture:
//
// The package uses a hub-and-spoke model. One goroutine running Hub.Run
// owns the client set; clients register and unregister through channels,
// and each connection gets a read pump and a write pump goroutine. There
// is a single stream: every subscriber sees every event.
//
// Message Protocol:
//
// Messages are JSON-encoded envelopes. Event names what happened (a driver
// event type such as "move" or "stopped", or "status" for snapshots) and
// Data carries the payload:
//
//	{"event": "move", "data": {"runId": "run-3f2a", "direction": "left", ...}}
//
// The stream is one-way. Inbound frames beyond the keepalive protocol are
// read and dropped.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//
//	drv.Subscribe(func(ev driver.Event) {
//		hub.BroadcastEvent(string(ev.Type), ev)
//	})
//
//	router.HandleFunc("/ws", hub.ServeWS)
//
// Backpressure:
//
// BroadcastEvent never blocks the caller. The hub queue absorbs bursts;
// when it is full the event is dropped, and a subscriber whose own queue
// is full is disconnected. Slow readers cannot stall the driver loop.
package websocket
