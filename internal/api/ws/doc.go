// Package ws streams desktop events to browsers over WebSocket.
//
// A connection belongs to one session. The server writes a "hello" message
// with the current windows, then one message per desktop event:
//
//   - window.opened, window.closed, window.minimized, window.focused,
//     window.moved, window.viewport
//   - fs.created, fs.updated, fs.folder_created, fs.renamed, fs.recycled,
//     fs.restored, fs.bin_emptied
//
// Clients may send {"type":"ping"} and get {"type":"pong"} back. The
// stream closes with CloseGoingAway when the session is evicted.
//
// Example Usage:
//
//	handler := ws.NewHandler(origins, metrics, logger)
//	api.GET("/stream", sessionMiddleware, handler.HandleConnection)
package ws
