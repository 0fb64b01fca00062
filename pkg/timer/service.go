package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marginly/marginly/internal/utils"
	"github.com/marginly/marginly/pkg/timelog"
	"github.com/marginly/marginly/pkg/user"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoRunningTimer = errors.New("no running timer")
	ErrInvalidTimer   = errors.New("invalid timer")
)

// Timers shorter than this are not logged.
const minLoggedDuration = time.Minute

type TimeLogWriter interface {
	Create(ctx context.Context, timeLog timelog.TimeLog) (timelog.TimeLog, error)
}

type Service interface {
	Current(ctx context.Context) (Timer, error)
	// Start begins a new timer for the current user. A running timer is stopped and logged first.
	Start(ctx context.Context, timer Timer) (Timer, error)
	// Stop logs the running timer as time spent. The returned log is nil when the timer was too short to keep.
	Stop(ctx context.Context) (*timelog.TimeLog, error)
	ModifyStartTime(ctx context.Context, startTime time.Time) (Timer, error)
	Discard(ctx context.Context) error
}

type ServiceImpl struct {
	repo     Repository
	timeLogs TimeLogWriter
	clock    utils.Clock
}

func NewService(repo Repository, timeLogs TimeLogWriter, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, timeLogs: timeLogs, clock: clock}
}

func (s *ServiceImpl) Current(ctx context.Context) (Timer, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Timer{}, fmt.Errorf("failed to get current user: %w", err)
	}
	timer, err := s.repo.Find(ctx, userId)
	if err != nil {
		return Timer{}, err
	}
	if !timer.Running() {
		return Timer{}, ErrNoRunningTimer
	}
	return timer, nil
}

func (s *ServiceImpl) Start(ctx context.Context, timer Timer) (Timer, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Timer{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if timer.ProjectId == 0 {
		return Timer{}, fmt.Errorf("%w: project is required", ErrInvalidTimer)
	}
	timer.UserId = userId
	timer.StartTime = s.clock.Now()

	current, err := s.repo.Find(ctx, userId)
	if err != nil {
		return Timer{}, err
	}
	if !current.Running() {
		return s.repo.Replace(ctx, timer)
	}
	if s.clock.Now().Sub(current.StartTime) < minLoggedDuration {
		log.Debugf("Replacing short timer of user %d, keeping its start time", userId)
		timer.StartTime = current.StartTime
		return s.repo.Replace(ctx, timer)
	}

	started, err := s.repo.Replace(ctx, timer)
	if err != nil {
		return Timer{}, err
	}
	if _, err := s.logTime(ctx, current); err != nil {
		s.restore(ctx, current)
		return Timer{}, err
	}
	return started, nil
}

func (s *ServiceImpl) Stop(ctx context.Context) (*timelog.TimeLog, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, current.UserId); err != nil {
		return nil, err
	}
	if s.clock.Now().Sub(current.StartTime) < minLoggedDuration {
		log.Debugf("Discarding short timer of user %d", current.UserId)
		return nil, nil
	}
	created, err := s.logTime(ctx, current)
	if err != nil {
		s.restore(ctx, current)
		return nil, err
	}
	return &created, nil
}

func (s *ServiceImpl) ModifyStartTime(ctx context.Context, startTime time.Time) (Timer, error) {
	if startTime.After(s.clock.Now()) {
		return Timer{}, fmt.Errorf("%w: start time cannot be in the future", ErrInvalidTimer)
	}
	current, err := s.Current(ctx)
	if err != nil {
		return Timer{}, err
	}
	current.StartTime = startTime
	return s.repo.Replace(ctx, current)
}

func (s *ServiceImpl) Discard(ctx context.Context) error {
	current, err := s.Current(ctx)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, current.UserId)
}

// restore puts back a timer whose time could not be logged, so the interval is not lost.
func (s *ServiceImpl) restore(ctx context.Context, timer Timer) {
	if _, err := s.repo.Replace(ctx, timer); err != nil {
		log.Errorf("could not restore timer of user %d: %v", timer.UserId, err)
	}
}

func (s *ServiceImpl) logTime(ctx context.Context, timer Timer) (timelog.TimeLog, error) {
	start := timer.StartTime
	end := s.clock.Now()
	return s.timeLogs.Create(ctx, timelog.TimeLog{
		ProjectId:   timer.ProjectId,
		UserId:      timer.UserId,
		TaskId:      timer.TaskId,
		Date:        utils.StartOfDay(start),
		Billable:    timer.Billable,
		Description: timer.Description,
		StartTime:   &start,
		EndTime:     &end,
	})
}
