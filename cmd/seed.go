package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tasky/services"
	"tasky/utils"
)

var (
	seedCount    int
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register a batch of test accounts",
	Long: `Registers accounts named "Test User <n>" with e-mail user<n>@test.com.
Accounts that already exist are skipped.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 5, "Number of test accounts")
	seedCmd.Flags().StringVar(&seedPassword, "password", "test123", "Password of every test account")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if seedCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	st, err := openStack(cfg, log, false)
	if err != nil {
		return err
	}
	defer st.Close(log)

	auth := services.NewAuthService(st.users, utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration), log)
	created, err := seedUsers(cmd.Context(), auth, seedCount, seedPassword, cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d test accounts created\n", created, seedCount)
	return nil
}

func seedUsers(ctx context.Context, auth *services.AuthService, count int, password string, out io.Writer, log logrus.FieldLogger) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	created := 0
	for i := 1; i <= count; i++ {
		in := services.RegisterInput{
			Name:     fmt.Sprintf("Test User %d", i),
			Email:    fmt.Sprintf("user%d@test.com", i),
			Password: password,
		}
		user, _, err := auth.Register(ctx, in)
		switch {
		case services.KindOf(err) == services.KindConflict:
			fmt.Fprintf(out, "skip %s: already registered\n", in.Email)
			continue
		case err != nil:
			return created, fmt.Errorf("failed to register %s: %w", in.Email, err)
		}
		created++
		log.WithFields(logrus.Fields{"email": user.Email, "handle": user.Handle}).Info("Registered test account")
	}
	return created, nil
}
