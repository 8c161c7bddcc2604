package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs joins the connection to the room of repositoryID and blocks until
// it closes.
func ServeWs(hub *Hub, c *websocket.Conn, userID, repositoryID int64) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, RepositoryID: repositoryID, Send: make(chan []byte, 256)}
	if !hub.join(client) {
		return
	}

	go client.writePump()
	client.readPump()
}
