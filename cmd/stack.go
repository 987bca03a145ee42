package cmd

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tasky/config"
	"tasky/events"
	"tasky/middleware"
	"tasky/repository"
	"tasky/repository/memory"
	"tasky/services"
	"tasky/utils"
)

// stack is the storage and delivery layer every command builds on
type stack struct {
	tx            services.TxManager
	users         services.UserRepository
	teams         services.TeamRepository
	members       services.MemberRepository
	tasks         services.TaskRepository
	comments      services.CommentRepository
	notifications services.NotificationRepository
	pinger        repository.Pinger

	bus          events.Bus
	limitStorage fiber.Storage
	closers      []func() error
}

func (s *stack) Close(log logrus.FieldLogger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.WithError(err).Warn("Failed to close resource")
		}
	}
}

// openStack connects to postgres, or keeps everything in memory when inMemory is set
func openStack(cfg *config.Config, log *logrus.Logger, inMemory bool) (*stack, error) {
	s := &stack{}

	if inMemory {
		store := memory.New()
		s.tx = store
		s.users, s.teams, s.members = store.Users(), store.Teams(), store.Members()
		s.tasks, s.comments, s.notifications = store.Tasks(), store.Comments(), store.Notifications()
		s.pinger = store
		log.Warn("Using in-memory store, data is lost on exit")
	} else {
		db, err := config.ConnectDB(cfg, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, sqlDB.Close)

		if err := config.Migrate(db); err != nil {
			s.Close(log)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		tm, err := repository.NewTransactionManager(db)
		if err != nil {
			s.Close(log)
			return nil, err
		}

		conn := repository.NewDB(db)
		s.tx = tm
		s.users = repository.NewUserRepository(conn)
		s.teams = repository.NewTeamRepository(conn)
		s.members = repository.NewMemberRepository(conn)
		s.tasks = repository.NewTaskRepository(conn)
		s.comments = repository.NewCommentRepository(conn)
		s.notifications = repository.NewNotificationRepository(conn)
		s.pinger = conn
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			s.Close(log)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.closers = append(s.closers, client.Close)
		s.bus = events.NewRedisBus(client, log)
		s.limitStorage = middleware.NewRedisStorage(client)
		log.WithField("address", cfg.Redis.Address).Info("Connected to redis")
	} else {
		s.bus = events.NewLocalBus()
	}

	return s, nil
}

func newMailer(cfg *config.Config) utils.Mailer {
	if !cfg.SMTP.Enabled() {
		return utils.NopMailer{}
	}
	return utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.FromEmail)
}

// loadConfig reads configuration and builds the process logger
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := utils.NewLogger(cfg.Environment, cfg.LogLevel)

	enabled, err := utils.InitSentry(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize sentry")
	} else if enabled {
		log.Info("Sentry error reporting enabled")
	}
	return cfg, log, nil
}
