package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelop-1602/rec-review-api/schema"
	"github.com/angelop-1602/rec-review-api/watch"
)

// streamEvent is one websocket frame. Type is "snapshot", "not_found" or
// "error"; snapshots always carry the complete protocol.
type streamEvent struct {
	Type     string           `json:"type"`
	Protocol *schema.Protocol `json:"protocol,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// streamProtocol pushes one snapshot per confirmed write of a protocol over
// a websocket. Every connected client renders from the same canonical
// snapshot path, the originator of a write included.
func (s *Server) streamProtocol(c *gin.Context) {
	protocolID, err := primitive.ObjectIDFromHex(c.Param("protocolID"))
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	notes := make(chan watch.Notification, 16)
	errs := make(chan error, 4)

	unsubscribe := s.hub.Subscribe(protocolID,
		func(n watch.Notification) {
			select {
			case notes <- n:
			default:
				// a slow consumer drops intermediate snapshots; the next one
				// still carries the complete current state
			}
		},
		func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	)
	defer unsubscribe()

	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case <-readErr:
			conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case n := <-notes:
			event := streamEvent{Type: "snapshot", Protocol: n.Protocol}
			if n.NotFound {
				event = streamEvent{Type: "not_found"}
			}
			if err := s.writeEvent(ctx, conn, event); err != nil {
				return
			}
		case err := <-errs:
			// transport hiccup upstream: report and keep the subscription
			if werr := s.writeEvent(ctx, conn, streamEvent{Type: "error", Message: err.Error()}); werr != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(ctx context.Context, conn *websocket.Conn, event streamEvent) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := wsjson.Write(writeCtx, conn, event); err != nil {
		conn.Close(websocket.StatusNormalClosure, "write_failed")
		return err
	}
	return nil
}
