package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// DefaultReminderSchedule runs the reminder sweep every morning at 08:00.
const DefaultReminderSchedule = "0 8 * * *"

// Options configures the workers registered by Setup.
type Options struct {
	Mailer           domain.Mailer
	Payee            domain.PayeeAccount
	Language         language.Tag
	Reminders        ReminderSource // nil disables the periodic sweep
	ReminderSchedule string         // standard five-field cron expression
	Logger           *zap.Logger
}

// Setup creates a River client with the billing workers registered and runs
// River's internal migrations. The caller must call client.Start() to begin
// processing jobs and client.Stop() for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB, opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	driver := riversqlite.New(db)

	// River's own tables are separate from the app's goose migrations.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewNotificationWorker(opts.Mailer, opts.Payee, opts.Language, opts.Logger))

	var periodic []*river.PeriodicJob
	if opts.Reminders != nil {
		river.AddWorker(workers, NewReminderSweepWorker(opts.Reminders, opts.Logger))

		expr := opts.ReminderSchedule
		if expr == "" {
			expr = DefaultReminderSchedule
		}
		schedule, err := cron.ParseStandard(expr)
		if err != nil {
			return nil, fmt.Errorf("parsing reminder schedule %q: %w", expr, err)
		}
		periodic = append(periodic, river.NewPeriodicJob(schedule,
			func() (river.JobArgs, *river.InsertOpts) { return ReminderSweepArgs{}, nil },
			nil,
		))
	}

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
