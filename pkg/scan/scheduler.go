package scan

import (
	"context"
	"time"

	"github.com/folioreads/folio/pkg/libraries"
	"github.com/folioreads/folio/pkg/models"
	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
)

// Scheduler runs a periodic scan of every library. Scans are independent of
// the refresh queue; a long provider refresh never delays catching up with
// the filesystem.
type Scheduler struct {
	processor      *Processor
	libraryService *libraries.Service
	interval       time.Duration
	log            logger.Logger

	shutdown chan struct{}
	done     chan struct{}
}

func NewScheduler(processor *Processor, libraryService *libraries.Service, interval time.Duration) *Scheduler {
	return &Scheduler{
		processor:      processor,
		libraryService: libraryService,
		interval:       interval,
		log:            logger.New(),
		shutdown:       make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) Shutdown() {
	close(s.shutdown)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-timer.C:
			s.scanAll()
			timer.Reset(s.interval)
		}
	}
}

func (s *Scheduler) scanAll() {
	id, err := uuid.NewRandom()
	if err != nil {
		s.log.Err(err).Error("new uuid error")
		return
	}
	log := s.log.ID(id.String()).Root(logger.Data{"trigger": "scheduled_scan"})
	ctx := log.WithContext(context.Background())

	libs, err := s.libraryService.ListLibraries(ctx, libraries.ListLibrariesOptions{})
	if err != nil {
		log.Err(err).Error("list libraries error")
		return
	}

	for _, library := range libs {
		select {
		case <-s.shutdown:
			return
		default:
		}
		s.processor.RunJob(ctx, library, models.JobTypeLibraryScan)
	}
}
