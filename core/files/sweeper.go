package files

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"incident-tracker/config"
	"incident-tracker/core/utils"
)

// ReferencedFunc returns the set of stored names some record still points
// at. Anything on disk outside that set, and older than the configured
// minimum age, is an orphan.
type ReferencedFunc func(ctx context.Context) (map[string]struct{}, error)

// Sweeper periodically deletes uploads whose metadata is gone, typically
// left behind by a crash between writing the blob and committing the
// transaction that records it.
type Sweeper struct {
	svc    *Service
	refs   ReferencedFunc
	minAge time.Duration
	sched  string
	cron   *cron.Cron
	log    *utils.Logger
}

func NewSweeper(svc *Service, refs ReferencedFunc, cfg config.SweeperConfig, log *utils.Logger) (*Sweeper, error) {
	minAge, err := time.ParseDuration(cfg.MinAge)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		svc:    svc,
		refs:   refs,
		minAge: minAge,
		sched:  cfg.Schedule,
		log:    log,
	}, nil
}

func (s *Sweeper) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.sched, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if n, err := s.Sweep(ctx); err != nil {
			s.log.Errorf("upload sweep failed: %v", err)
		} else if n > 0 {
			s.log.Infof("upload sweep removed %d orphaned file(s)", n)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep runs one pass and reports how many files it removed. The minimum
// age keeps it from racing an upload whose metadata write is in flight.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	referenced, err := s.refs(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-s.minAge)

	removed := 0
	for _, dir := range []string{s.svc.dir, s.svc.diagramDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, ok := referenced[entry.Name()]; ok {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				s.log.Warnf("sweep could not remove %s: %v", entry.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}
