// Package webhook is the HTTP transport for webhook-based deployments.
// It exposes the Telegram update endpoint plus management and health
// endpoints. Only /webhook touches file data, and it does so through the
// same bot dispatcher (and hence the same facade) as polling mode.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tgstore/internal/filestore"
)

// Dispatcher is the part of the bot the server drives: update handling
// and webhook registration against the Telegram API.
type Dispatcher interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
	SetWebhook(url string) error
	WebhookInfo() (tgbotapi.WebhookInfo, error)
	DeleteWebhook() error
}

// Server is the webhook HTTP server.
type Server struct {
	bot    Dispatcher
	logger filestore.Logger
	srv    *http.Server
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, bot Dispatcher, logger filestore.Logger) *Server {
	s := &Server{
		bot:    bot,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Metrics)

	r.Get("/health", s.handleHealth)
	r.Post("/webhook", s.handleWebhook)
	r.Post("/set_webhook", s.handleSetWebhook)
	r.Get("/webhook_info", s.handleWebhookInfo)
	r.Post("/delete_webhook", s.handleDeleteWebhook)
	r.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook server started", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "bot": "tgstore"})
}

// handleWebhook receives a Telegram update and dispatches it to the bot.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Warn("malformed webhook payload", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.bot.HandleUpdate(r.Context(), update)
	s.logger.Debug("update processed", "update_id", update.UpdateID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleSetWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no webhook URL provided"})
		return
	}

	if err := s.bot.SetWebhook(req.URL); err != nil {
		s.logger.Error("setting webhook", "url", req.URL, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set webhook"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "webhook_url": req.URL})
}

func (s *Server) handleWebhookInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.bot.WebhookInfo()
	if err != nil {
		s.logger.Error("getting webhook info", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get webhook info"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":                    info.URL,
		"has_custom_certificate": info.HasCustomCertificate,
		"pending_update_count":   info.PendingUpdateCount,
		"last_error_date":        info.LastErrorDate,
		"last_error_message":     info.LastErrorMessage,
		"max_connections":        info.MaxConnections,
	})
}

func (s *Server) handleDeleteWebhook(w http.ResponseWriter, r *http.Request) {
	if err := s.bot.DeleteWebhook(); err != nil {
		s.logger.Error("deleting webhook", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete webhook"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "webhook deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
