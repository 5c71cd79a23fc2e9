package interfaces

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// Scheduler runs the daily gather and suggestion jobs on cron schedules in
// the canonical timezone. Jobs are skipped rather than stacked if a previous
// run is still going; both jobs are idempotent, so a missed or repeated run
// is harmless.
type Scheduler struct {
	cron    *cron.Cron
	service domain.EventService
	loc     *time.Location
}

type SchedulerConfig struct {
	GatherSpec     string
	SuggestionSpec string
	Days           int
}

func NewScheduler(service domain.EventService, loc *time.Location, cfg SchedulerConfig) (*Scheduler, error) {
	logger := cron.VerbosePrintfLogger(log.Default())
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)

	s := &Scheduler{cron: c, service: service, loc: loc}

	if cfg.GatherSpec != "" {
		if _, err := c.AddFunc(cfg.GatherSpec, func() { s.runGather(cfg.Days) }); err != nil {
			return nil, err
		}
	}
	if cfg.SuggestionSpec != "" {
		if _, err := c.AddFunc(cfg.SuggestionSpec, s.runSuggestions); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Scheduler started")
}

// Stop halts scheduling and waits for the running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runGather(days int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.service.Gather(ctx, time.Now().In(s.loc), days); err != nil {
		log.Printf("scheduled gather failed: %v", err)
	}
}

func (s *Scheduler) runSuggestions() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.service.Recommend(ctx, time.Now().In(s.loc)); err != nil {
		log.Printf("scheduled suggestions failed: %v", err)
	}
}
