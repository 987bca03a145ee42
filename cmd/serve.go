package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"tasky/middleware"
	"tasky/routes"
	"tasky/services"
	"tasky/utils"
	"tasky/worker"
)

var serveInMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the deadline worker",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveInMemory, "memory", false, "Keep all data in process memory instead of postgres")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer sentry.Flush(2 * time.Second)
	cfg.Log(log)

	st, err := openStack(cfg, log, serveInMemory)
	if err != nil {
		return err
	}
	defer st.Close(log)

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration)
	notifier := services.NewNotificationService(st.notifications, st.users, st.bus, newMailer(cfg), log)

	deps := routes.Deps{
		Auth:          services.NewAuthService(st.users, tokens, log),
		Users:         services.NewUserService(st.users, utils.NewDiskAvatarStore(cfg.UploadDir, cfg.MaxAvatarSize), log),
		Teams:         services.NewTeamService(st.tx, st.teams, st.members, st.users, st.tasks, log),
		Tasks:         services.NewTaskService(st.tasks, st.users, st.members, st.comments, notifier, log),
		Comments:      services.NewCommentService(st.comments, st.tasks, st.users),
		Notifications: notifier,
		Tokens:        tokens,
		Bus:           st.bus,
		Store:         st.pinger,
		Log:           log,
		UploadDir:     cfg.UploadDir,
		AuthLimiter:   middleware.AuthRateLimiter(cfg.RateLimitAuth, st.limitStorage, log),
		RequestLog:    true,
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	app := routes.NewApp(deps, cors, int(cfg.MaxAvatarSize)+1<<20)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deadlines := worker.NewDeadlineWorker(st.tasks, st.notifications, notifier, cfg.ReminderInterval, cfg.ReminderWindow, log)
	go deadlines.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s", cfg.ServerPort)
		errCh <- app.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}
