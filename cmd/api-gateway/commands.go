package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/school-assistant-api/internal/repository"
	"github.com/noah-isme/school-assistant-api/internal/service"
	"github.com/noah-isme/school-assistant-api/migrations"
	"github.com/noah-isme/school-assistant-api/pkg/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db, migrations.FS, a.log); err != nil {
				return err
			}
			version, err := database.MigrationVersion(ctx, db, migrations.FS)
			if err != nil {
				return err
			}
			a.log.Info("migrations applied", zap.Int64("version", version))
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var admin service.SeedAdmin
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load subjects, exams and the default admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			seeder := service.NewSeedService(
				repository.NewCatalogRepository(db),
				repository.NewUserRepository(db),
				a.log,
			)
			return seeder.Run(ctx, admin)
		},
	}
	cmd.Flags().StringVar(&admin.LoginID, "admin-login", "admin", "login id of the seeded admin")
	cmd.Flags().StringVar(&admin.Password, "admin-password", "", "password of the seeded admin (skipped when empty)")
	cmd.Flags().StringVar(&admin.Name, "admin-name", "관리자", "display name of the seeded admin")
	cmd.Flags().StringVar(&admin.Email, "admin-email", "", "email of the seeded admin")
	return cmd
}

func newRollupCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Recompute monthly and yearly attendance rollups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if year == 0 {
				year = a.cfg.Chat.AcademicYear
			}
			attendance := service.NewAttendanceService(
				repository.NewAttendanceRepository(db),
				repository.NewStudentRepository(db),
				repository.NewClassRepository(db),
				nil,
				nil,
				a.cfg.Chat.AcademicYear,
				validator.New(),
				a.log,
			)
			result, err := attendance.RecomputeRollups(ctx, year)
			if err != nil {
				return fmt.Errorf("recompute rollups: %w", err)
			}
			a.log.Info("attendance rollups recomputed",
				zap.Int("academic_year", result.AcademicYear),
				zap.Int64("monthly_rows", result.MonthlyRows),
				zap.Int64("yearly_rows", result.YearlyRows),
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "academic year to recompute (defaults to ACADEMIC_YEAR)")
	return cmd
}
