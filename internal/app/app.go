// Package app assembles the service from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"Social_Hub/internal/config"
	"Social_Hub/internal/media"
	"Social_Hub/internal/middleware"
	"Social_Hub/internal/pkg"
	mongorepo "Social_Hub/internal/repository/mongo"
	mysqlrepo "Social_Hub/internal/repository/mysql"
	redisrepo "Social_Hub/internal/repository/redis"
	"Social_Hub/internal/router"
	"Social_Hub/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	mongoConnectAttempts = 5
	relayLeaseTTL        = 30 * time.Second
)

// App owns every long lived client. The caller must defer Close.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	handler http.Handler
	relayer *service.OutboxRelayer
	closers []func() error
}

// repositories is the backend neutral view of a primary store.
type repositories struct {
	users       service.UserRepository
	communities service.CommunityRepository
	posts       service.PostRepository
	comments    service.CommentRepository
	follows     service.FollowRepository
	outbox      service.OutboxRepository
	ping        func(ctx context.Context) error
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	repos, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	rdb, err := redisrepo.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rdb.Close)

	store, err := media.New(ctx, cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}
	var mediaDir string
	if local, ok := store.(*media.LocalStore); ok {
		mediaDir = local.Dir()
	}

	sender, err := a.sender()
	if err != nil {
		return nil, err
	}

	sessions := redisrepo.NewSessionStore(rdb)
	tokens := pkg.NewTokenManager(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, nil)
	identity := service.NewIdentityService(repos.users)
	feed := service.NewFeedService(repos.users, repos.communities, repos.posts, repos.comments)
	email := service.NewEmailService(redisrepo.NewCodeStore(rdb), a.mailer(), cfg.Auth.ResetCodeTTL)

	users := service.NewUserService(service.UserDeps{
		Users:      repos.users,
		Follows:    repos.follows,
		Sessions:   sessions,
		Tokens:     tokens,
		Google:     pkg.NewGoogleVerifier(cfg.Auth.GoogleClientID),
		Email:      email,
		Feed:       feed,
		Media:      store,
		MaxUpload:  cfg.Media.MaxBytes,
		SessionTTL: cfg.Auth.SessionTTL,
	})

	gin.SetMode(cfg.Server.Mode)
	a.handler = router.New(router.Deps{
		Log:    log,
		Server: cfg.Server,
		Auth: &middleware.Authenticator{
			Tokens:     tokens,
			Sessions:   sessions,
			Identity:   identity,
			SessionTTL: cfg.Auth.SessionTTL,
		},
		Users:       users,
		Posts:       service.NewPostService(repos.posts, repos.communities, store, cfg.Media.MaxBytes, log),
		Feed:        feed,
		Interaction: service.NewInteractionService(repos.users, repos.communities, repos.posts, repos.comments, repos.follows),
		Communities: service.NewCommunityService(repos.communities, repos.users, feed),
		Search:      service.NewSearchService(repos.users, repos.communities),
		Health: func(ctx context.Context) error {
			if err := repos.ping(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		},
		MediaDir: mediaDir,
	})

	a.relayer = service.NewOutboxRelayer(
		repos.outbox,
		sender,
		redisrepo.NewDistLock(rdb, "outbox-relay", relayLeaseTTL),
		service.RelayerConfig{
			Interval: cfg.Outbox.Interval,
			Batch:    cfg.Outbox.Batch,
			MaxRetry: cfg.Outbox.MaxRetry,
		},
		log.With("component", "outbox"),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (*repositories, error) {
	switch a.cfg.Storage.Driver {
	case "mongo":
		client, err := mongorepo.Connect(ctx, a.cfg.Mongo.URI, mongoConnectAttempts)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		db := client.Database(a.cfg.Mongo.Database)
		s := mongorepo.NewStore(db, a.log.With("store", "mongo"))
		return &repositories{
			users:       s.Users,
			communities: s.Communities,
			posts:       s.Posts,
			comments:    s.Comments,
			follows:     s.Follows,
			outbox:      s.Outbox,
			ping:        func(ctx context.Context) error { return client.Ping(ctx, nil) },
		}, nil
	default:
		db, err := mysqlrepo.Open(a.cfg.MySQL.DSN, mysqlrepo.Options{
			MaxOpenConns: a.cfg.MySQL.MaxOpenConns,
			MaxIdleConns: a.cfg.MySQL.MaxIdleConns,
		})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)
		s := mysqlrepo.NewStore(db)
		return &repositories{
			users:       s.Users,
			communities: s.Communities,
			posts:       s.Posts,
			comments:    s.Comments,
			follows:     s.Follows,
			outbox:      s.Outbox,
			ping:        sqlDB.PingContext,
		}, nil
	}
}

func (a *App) mailer() pkg.Mailer {
	m := a.cfg.Mail
	switch m.Driver {
	case "smtp":
		return pkg.NewSMTPMailer(pkg.SMTPConfig{
			Host:     m.SMTP.Host,
			Port:     m.SMTP.Port,
			Username: m.SMTP.Username,
			Password: m.SMTP.Password,
			From:     m.From,
		})
	case "sendgrid":
		return pkg.NewSendGridMailer(m.SendGrid.APIKey, m.SendGrid.FromName, m.From)
	default:
		return pkg.LogMailer{Log: a.log}
	}
}

func (a *App) sender() (service.Sender, error) {
	switch a.cfg.Outbox.Sender {
	case "kafka":
		p := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: a.cfg.Outbox.Brokers, Topic: a.cfg.Outbox.Topic})
		a.closers = append(a.closers, p.Close)
		return service.KafkaSender(p), nil
	case "log":
		return service.LogSender(a.log.With("component", "outbox")), nil
	default:
		return nil, fmt.Errorf("unknown outbox sender %q", a.cfg.Outbox.Sender)
	}
}

// Handler exposes the HTTP routes.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves HTTP and relays the outbox until ctx is cancelled, then shuts
// the server down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.handler,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}

	relayCtx, stopRelay := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.relayer.Run(relayCtx)
	}()
	defer func() {
		stopRelay()
		wg.Wait()
	}()

	errc := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Migrate creates the relational schema or the document indexes.
func Migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.Storage.Driver {
	case "mongo":
		client, err := mongorepo.Connect(ctx, cfg.Mongo.URI, mongoConnectAttempts)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		if err := mongorepo.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database)); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		return nil
	default:
		db, err := mysqlrepo.Open(cfg.MySQL.DSN, mysqlrepo.Options{})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return mysqlrepo.AutoMigrate(db)
	}
}
