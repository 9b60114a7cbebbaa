package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/DeliveryConsole/internal/domain"
	"github.com/utafrali/DeliveryConsole/internal/session"
	"github.com/utafrali/DeliveryConsole/pkg/httputil"
)

// SessionView is the read side of the session store.
type SessionView interface {
	State() session.State
	User() *domain.UserRecord
	TokenExpiry() (time.Time, bool)
}

// StatsSource fetches dashboard counters from the admin API.
type StatsSource interface {
	GetDashboardStats(ctx context.Context) (domain.Record, error)
}

// ConsoleHandler exposes what the running console knows.
type ConsoleHandler struct {
	sessions SessionView
	stats    StatsSource
	logger   *slog.Logger
}

// NewConsoleHandler creates a ConsoleHandler.
func NewConsoleHandler(sessions SessionView, stats StatsSource, logger *slog.Logger) *ConsoleHandler {
	return &ConsoleHandler{sessions: sessions, stats: stats, logger: logger}
}

// SessionResponse describes the current operator session. The token itself
// is never served.
type SessionResponse struct {
	State          string             `json:"state"`
	User           *domain.UserRecord `json:"user,omitempty"`
	TokenExpiresAt *time.Time         `json:"token_expires_at,omitempty"`
}

// Session handles GET /session.
func (h *ConsoleHandler) Session(w http.ResponseWriter, _ *http.Request) {
	resp := SessionResponse{
		State: h.sessions.State().String(),
		User:  h.sessions.User(),
	}
	if exp, ok := h.sessions.TokenExpiry(); ok {
		resp.TokenExpiresAt = &exp
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// Stats handles GET /stats by fetching fresh dashboard counters. The
// counters are served as the admin API sent them.
func (h *ConsoleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetDashboardStats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
