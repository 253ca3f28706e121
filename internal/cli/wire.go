package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"quiz-portal/internal/app"
	"quiz-portal/internal/config"
	"quiz-portal/internal/infra/memory"
	infraredis "quiz-portal/internal/infra/redis"
	"quiz-portal/internal/infra/sqldb"
	"quiz-portal/internal/metrics"
	transport "quiz-portal/internal/transport/http"
)

// Runtime is the fully wired service: storage handles, use cases and the
// HTTP handler serving them.
type Runtime struct {
	DB      *bun.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Auth    *app.AuthService
	Quizzes *app.QuizService
	Reports *app.ReportService
	Handler http.Handler
}

// Build opens the database (migrating it), connects Redis when configured
// and assembles the router. Call Close when done.
func Build(ctx context.Context, cfg config.Config, log *logrus.Entry) (*Runtime, error) {
	db, err := sqldb.Open(cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{DB: db}
	if err := rt.wire(ctx, cfg, log); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) wire(ctx context.Context, cfg config.Config, log *logrus.Entry) error {
	group, err := sqldb.Migrate(ctx, rt.DB)
	if err != nil {
		return err
	}
	if !group.IsZero() {
		log.WithField("group", group.String()).Info("migrations applied")
	}

	if cfg.Redis.Addr != "" {
		rt.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rt.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
	}

	store := sqldb.NewStore(rt.DB)
	sessionTTL := config.TTLDuration(cfg.Session.TTL, app.DefaultSessionTTL)
	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)

	var sessions app.SessionStore
	var cache app.QuizCache
	if rt.Redis != nil {
		sessions = infraredis.NewSessionStore(rt.Redis)
		cache = infraredis.NewQuizCache(rt.Redis, store, quizTTL)
	} else {
		sessions = memory.NewSessionStore()
		cache = memory.NewQuizCache(store, quizTTL)
	}

	feed := app.NewLeaderboardFeed()
	rt.Metrics = metrics.New("quiz_portal")
	rt.Auth = app.NewAuthService(store, sessions, cfg.Server.SecretKey, sessionTTL)
	rt.Quizzes = app.NewQuizService(store, store, cache, feed)
	rt.Quizzes.ObserveSubmissions(rt.Metrics)
	rt.Reports = app.NewReportService(store, feed)

	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	rt.Handler = transport.NewRouter(transport.Options{
		Auth:          rt.Auth,
		Quizzes:       rt.Quizzes,
		Reports:       rt.Reports,
		Logger:        log,
		Metrics:       rt.Metrics,
		SessionTTL:    sessionTTL,
		SecureCookies: cfg.Server.SecureCookies,
	})
	return nil
}

// ReportPoolStats copies DB pool statistics into the metrics until ctx ends.
func (rt *Runtime) ReportPoolStats(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		rt.Metrics.RecordDBPoolStats(rt.DB.Stats())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (rt *Runtime) Close() error {
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
	return rt.DB.Close()
}
