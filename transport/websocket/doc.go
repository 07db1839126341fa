// Package websocket provides real-time turn notifications for the Quest
// Engine backend.
//
// The hub keeps a set of observer connections per game and pushes every
// committed turn to them. Observers are read-only: actions are submitted
// over the REST API, and the hub only ever broadcasts fully committed
// snapshots, so a WebSocket client can never see a partial state.
package websocket
