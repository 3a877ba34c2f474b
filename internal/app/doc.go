// Package app provides the application service layer.
//
// Orchestrates the analysis use cases: single texts, ordered batches and
// their metrics. Sits between the transports (HTTP, WebSocket, CLI) and the
// sentiment analyzer.
package app
