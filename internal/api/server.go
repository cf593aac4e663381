// Package api exposes the gene model, ORF discovery and read
// classification over a JSON REST interface.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/HerwigLab/IsoTools2/internal/classify"
	"github.com/HerwigLab/IsoTools2/internal/gene"
	"github.com/HerwigLab/IsoTools2/internal/orf"
)

// Server serves a loaded gene model over HTTP.
type Server struct {
	model      *gene.Model
	classifier *classify.Classifier
	pwm        *orf.PWM
	logger     *zap.Logger
}

// NewServer creates a server around a loaded and indexed gene model.
// The classifier decides how POST /classify compares structures against
// the model. A nil logger disables request logging.
func NewServer(model *gene.Model, classifier *classify.Classifier, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		model:      model,
		classifier: classifier,
		pwm:        orf.NewKozakPWM(),
		logger:     logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/genes/{id}", func(r chi.Router) {
		r.Get("/", s.handleGene)
		r.Get("/transcripts", s.handleTranscripts)
	})
	r.Post("/orfs", s.handleORFs)
	r.Post("/classify", s.handleClassify)

	return r
}

// ListenAndServe runs the server until SIGINT or SIGTERM, then drains
// in-flight requests for up to 30 seconds.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		s.logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		done <- srv.Shutdown(ctx)
	}()

	s.logger.Info("listening",
		zap.String("addr", addr),
		zap.Int("genes", s.model.GeneCount()),
		zap.Int("transcripts", s.model.TranscriptCount()))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return <-done
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
