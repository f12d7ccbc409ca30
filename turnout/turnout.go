// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package turnout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
)

// Disabled turns the reporter off when used as the schedule.
const Disabled = "off"

// Report is one election's turnout at a point in time.
type Report struct {
	Election models.Election
	Stats    models.ElectionStats
}

// Reporter periodically logs turnout for every open election.
type Reporter struct {
	db   *sql.DB
	now  func() time.Time
	cron *cron.Cron
	stop chan struct{}
}

func NewReporter(db *sql.DB, now func() time.Time) *Reporter {
	return &Reporter{
		db:   db,
		now:  now,
		cron: cron.New(),
		stop: make(chan struct{}),
	}
}

// Collect computes a report for each election open right now.
func (r *Reporter) Collect(ctx context.Context) ([]Report, error) {
	st := store.New(r.db)

	elections, err := st.ActiveElections(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	reports := []Report{}
	for _, e := range elections {
		if !e.Open(now) {
			continue
		}
		stats, err := st.ElectionStats(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, Report{Election: e, Stats: stats})
	}
	return reports, nil
}

func (r *Reporter) task(ctx context.Context) {
	reports, err := r.Collect(ctx)
	if err != nil {
		slog.Error("turnout report failed", "error", err)
		return
	}

	for _, rep := range reports {
		slog.Info("turnout",
			"election_id", rep.Election.ID,
			"election", rep.Election.Name,
			"voted", humanize.Comma(int64(rep.Stats.VotedCount)),
			"total", humanize.Comma(int64(rep.Stats.TotalVoters)),
			"turnout", humanize.FtoaWithDigits(rep.Stats.TurnoutPercent, 1)+"%",
			"closes", humanize.RelTime(rep.Election.EndTime, r.now(), "ago", "from now"),
		)
	}
}

// Start schedules the report on spec. A spec of Disabled does nothing.
func (r *Reporter) Start(spec string) error {
	if spec == Disabled {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-r.stop
		cancel()
	}()

	_, err := r.cron.AddFunc(spec, func() {
		select {
		case <-r.stop:
			return
		default:
			r.task(ctx)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid turnout schedule %q: %w", spec, err)
	}

	r.cron.Start()
	slog.Info("turnout reporter started", "schedule", spec)
	return nil
}

// Stop halts the scheduler and waits for a running report to finish.
func (r *Reporter) Stop() {
	select {
	case <-r.stop:
		return
	default:
		close(r.stop)
	}
	<-r.cron.Stop().Done()
}
