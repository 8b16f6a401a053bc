// Package ws serves the interactive shell over WebSocket.
//
// Each connection owns one shell session with its own working directory.
// Every text frame from the client is executed as one shell line and
// answered with a single JSON reply.
//
// Message Types (Server → Client):
//   - system: greeting sent once after the upgrade
//   - result: output of one line, with the cwd after it ran
//   - exit: the client ran exit or quit; the server closes the connection
//
// Example Usage:
//
//	handler := ws.NewHandler(newSession, metrics, logger)
//	router.GET("/v1/shell", handler.HandleConnection)
package ws
