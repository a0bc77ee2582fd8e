package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

type StatsService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

type AdminHandler struct {
	stats   StatsService
	timeout time.Duration
	log     *zap.Logger
}

func NewAdminHandler(stats StatsService, timeout time.Duration, log *zap.Logger) *AdminHandler {
	return &AdminHandler{stats: stats, timeout: timeout, log: log}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, stats)
}
