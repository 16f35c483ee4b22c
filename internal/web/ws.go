package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/pkg/apps"
	"github.com/actionsum/recentapps/pkg/recentapps"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the API binds to localhost by default
	},
}

// WatchMessage is one frame of the /api/watch stream
type WatchMessage struct {
	Type         string        `json:"type"` // subscribed, recent_apps, current_app, error
	Subscription string        `json:"subscription"`
	Strategy     string        `json:"strategy,omitempty"`
	Apps         *apps.AppList `json:"apps,omitempty"` // set on every recent_apps frame, even when empty
	App          apps.AppID    `json:"app,omitempty"`
	Error        string        `json:"error,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

type watchParams struct {
	current bool
	limit   int
	period  time.Duration
	def     apps.AppID
}

func (h *Handler) parseWatch(r *http.Request) (watchParams, error) {
	q := r.URL.Query()
	p := watchParams{
		limit:  h.config.Observer.Limit,
		period: h.config.Observer.Period,
		def:    apps.AppID(q.Get("default")),
	}

	switch kind := q.Get("kind"); kind {
	case "", "recent":
	case "current":
		p.current = true
	default:
		return p, apps.InvalidArgument("unknown watch kind %q", kind)
	}

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, apps.InvalidArgument("limit must be an integer")
		}
		p.limit = n
	}
	if s := q.Get("period"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return p, apps.InvalidArgument("period must be a duration such as 500ms")
		}
		p.period = d
	}
	return p, nil
}

func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}

	params, err := h.parseWatch(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// observers are built before the upgrade so bad arguments still get a 400
	var (
		recent  *recentapps.Observer[apps.AppList]
		current *recentapps.Observer[apps.AppID]
	)
	if params.current {
		current, err = h.client.ObserveCurrentApp(params.period, params.def)
	} else {
		recent, err = h.client.ObserveRecentApps(params.limit, params.period)
	}
	if err != nil {
		h.respondQueryError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	logger := h.logger.With().Str("subscription", id).Logger()

	h.metrics.WSConnections.Inc()
	defer h.metrics.WSConnections.Dec()

	// the request context is not cancelled when a hijacked client leaves
	ctx, cancel := context.WithCancel(h.streams)
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s := &subscription{id: id, strategy: h.client.Strategy(), conn: conn, logger: logger}
	if err := s.send(WatchMessage{Type: "subscribed", Strategy: s.strategy}); err != nil {
		return
	}
	logger.Info().Bool("current", params.current).Dur("period", params.period).Msg("Watch stream opened")

	if params.current {
		stream(ctx, s, current, func(app apps.AppID) WatchMessage {
			return WatchMessage{Type: "current_app", App: app}
		})
	} else {
		stream(ctx, s, recent, func(list apps.AppList) WatchMessage {
			if list == nil {
				list = apps.AppList{}
			}
			return WatchMessage{Type: "recent_apps", Apps: &list}
		})
	}

	logger.Info().Msg("Watch stream closed")
}

type subscription struct {
	id       string
	strategy string
	conn     *websocket.Conn
	logger   zerolog.Logger
}

func (s *subscription) send(msg WatchMessage) error {
	msg.Subscription = s.id
	msg.Timestamp = time.Now()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug().Err(err).Msg("WebSocket write failed")
		return err
	}
	return nil
}

// stream forwards observer updates until the client leaves or the observer
// stops
func stream[T any](ctx context.Context, s *subscription, o *recentapps.Observer[T], frame func(T) WatchMessage) {
	if err := o.Start(ctx); err != nil {
		_ = s.send(WatchMessage{Type: "error", Error: err.Error()})
		return
	}
	defer o.Stop()

	for value := range o.Updates() {
		if err := s.send(frame(value)); err != nil {
			return
		}
	}

	if err := o.Err(); err != nil {
		_ = s.send(WatchMessage{Type: "error", Error: err.Error()})
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
