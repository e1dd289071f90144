// Package realtime pushes drawing change notifications to socket.io clients.
// A client connects with its bearer token in the handshake auth payload
// ({"token": "..."}) or the Authorization header, emits "join-drawing" with a
// drawing id it owns, and then receives "drawing-changed" whenever that
// drawing is saved or deleted. Joins for drawings the caller does not own are
// refused the same way as joins for drawings that do not exist.
package realtime

import (
	"context"
	"excaliapp/core"
	"excaliapp/handlers/auth"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const (
	JoinEvent    = "join-drawing"
	LeaveEvent   = "leave-drawing"
	ChangedEvent = "drawing-changed"
)

const lookupTimeout = 10 * time.Second

type Change struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type Hub struct {
	io           *socketio.Server
	introspector auth.Introspector
	repo         core.DrawingRepository
	handler      http.Handler
}

// room is scoped to the owner so a reused id never reaches a previous owner.
func room(owner, id string) socketio.Room {
	return socketio.Room("drawing:" + owner + ":" + id)
}

func NewHub(introspector auth.Introspector, repo core.DrawingRepository) *Hub {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(1000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})
	h := &Hub{
		io:           socketio.NewServer(nil, opts),
		introspector: introspector,
		repo:         repo,
	}

	h.handler = h.io.ServeHandler(nil)
	h.io.Use(h.authenticate)
	h.io.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		identity, ok := socket.Data().(*core.Identity)
		if !ok {
			socket.Disconnect(true)
			return
		}
		log := logrus.WithFields(logrus.Fields{"socket": socket.Id(), "user_id": identity.Email})

		socket.On(JoinEvent, func(datas ...any) {
			args, ack := splitAck(datas)
			id, ok := firstString(args)
			if !ok || !h.owns(identity.Email, id) {
				log.WithField("drawing_id", id).Debug("Refused join")
				ack(false)
				return
			}
			socket.Join(room(identity.Email, id))
			log.WithField("drawing_id", id).Debug("Socket joined drawing")
			ack(true)
		})
		socket.On(LeaveEvent, func(datas ...any) {
			args, ack := splitAck(datas)
			if id, ok := firstString(args); ok {
				socket.Leave(room(identity.Email, id))
			}
			ack(true)
		})
		socket.On("disconnect", func(...any) {
			socket.RemoveAllListeners("")
		})
	})
	return h
}

// authenticate resolves the handshake token; connections without a valid
// identity are rejected before "connection" fires.
func (h *Hub) authenticate(socket *socketio.Socket, next func(*socketio.ExtendedError)) {
	token := handshakeToken(socket.Handshake())
	if token == "" {
		next(socketio.NewExtendedError("Unauthorized", nil))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	identity, err := h.introspector.Identify(ctx, token)
	if err != nil {
		logrus.WithError(err).Debug("Socket introspection failed")
		next(socketio.NewExtendedError("Unauthorized", nil))
		return
	}
	socket.SetData(identity)
	next(nil)
}

func (h *Hub) owns(email, id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	_, err := h.repo.Get(ctx, email, id)
	return err == nil
}

func handshakeToken(hs *socketio.Handshake) string {
	if hs == nil {
		return ""
	}
	if a, ok := hs.Auth.(map[string]any); ok {
		if token, ok := a["token"].(string); ok && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}
	for _, header := range hs.Headers[http.CanonicalHeaderKey("Authorization")] {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// splitAck separates a trailing acknowledgement callback from event args.
// The returned ack is never nil.
func splitAck(datas []any) ([]any, func(ok bool)) {
	if n := len(datas); n > 0 {
		if fn, isAck := datas[n-1].(func([]any, error)); isAck {
			return datas[:n-1], func(ok bool) { fn([]any{ok}, nil) }
		}
	}
	return datas, func(bool) {}
}

func firstString(datas []any) (string, bool) {
	if len(datas) == 0 {
		return "", false
	}
	s, ok := datas[0].(string)
	return s, ok && s != ""
}

// DrawingChanged notifies every socket watching owner's drawing id. After a
// delete the room is emptied; watchers have to join again.
func (h *Hub) DrawingChanged(owner, id string, deleted bool) {
	r := room(owner, id)
	if err := h.io.To(r).Emit(ChangedEvent, Change{ID: id, Deleted: deleted}); err != nil {
		logrus.WithError(err).WithField("drawing_id", id).Warn("Failed to emit change")
	}
	if deleted {
		h.io.In(r).SocketsLeave(r)
	}
}

func (h *Hub) Handler() http.Handler {
	return h.handler
}

func (h *Hub) Close() {
	h.io.Close(nil)
}
