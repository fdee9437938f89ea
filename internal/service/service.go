package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"class-panel/api"
	"class-panel/internal/lecture"
	"class-panel/internal/lock"
	"class-panel/pkg/response"
	"class-panel/pkg/sl"
)

const (
	noteKeyTTL      = 10 * time.Minute
	defaultClaimTTL = 30 * time.Second
)

// Service owns one lecture session. All reads and writes go through the loop
// started by Run, so the session is only ever touched by one goroutine.
type Service struct {
	log      *slog.Logger
	locker   lock.Locker
	clock    func() time.Time
	refresh  time.Duration
	claimTTL time.Duration

	session *lecture.Session
	claimed string
	cmds    chan command
	done    chan struct{}

	subsMu sync.Mutex
	subs   map[chan api.SessionResponse]struct{}
}

type Options struct {
	Course   string
	Date     time.Time
	Segments []lecture.Segment
	// Refresh is the countdown redisplay interval while the timer runs.
	Refresh time.Duration
	// ClaimTTL bounds how long the course claim outlives a crashed process.
	// Run renews it at a third of this interval.
	ClaimTTL time.Duration
	Clock    func() time.Time
}

type command struct {
	fn    func(now time.Time) (any, error)
	reply chan result
}

type result struct {
	val any
	err error
}

// Export is a table ready for encoding plus the lesson it came from.
type Export struct {
	Info  lecture.Context
	Table lecture.Table
}

func NewService(log *slog.Logger, locker lock.Locker, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Refresh <= 0 {
		opts.Refresh = time.Second
	}
	if opts.ClaimTTL <= 0 {
		opts.ClaimTTL = defaultClaimTTL
	}
	if opts.Date.IsZero() {
		opts.Date = opts.Clock()
	}

	return &Service{
		log:      log.With(slog.String("component", "service")),
		locker:   locker,
		clock:    opts.Clock,
		refresh:  opts.Refresh,
		claimTTL: opts.ClaimTTL,
		session:  lecture.NewSession(opts.Course, opts.Date, opts.Segments),
		cmds:     make(chan command),
		done:     make(chan struct{}),
		subs:     make(map[chan api.SessionResponse]struct{}),
	}
}

// Run applies commands one by one until ctx is done. While the timer runs it
// also wakes every refresh interval to recompute elapsed time and push a
// snapshot to subscribers. The running flag is checked before each re-arm,
// so a pause stops the refresh without any extra signal.
func (s *Service) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.closeSubscribers()

	var (
		timer *time.Timer
		tick  <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer, tick = nil, nil
		}
	}
	defer stopTimer()

	if s.claimed != "" {
		claimCtx, stopClaim := context.WithCancel(ctx)
		claimDone := make(chan struct{})
		go func() {
			defer close(claimDone)
			s.keepClaim(claimCtx)
		}()
		defer func() {
			stopClaim()
			<-claimDone
		}()
	}

	s.log.Info("session loop started", slog.String("session_id", s.session.ID.String()))

	for {
		if s.session.Running() && timer == nil {
			timer = time.NewTimer(s.refresh)
			tick = timer.C
		}

		select {
		case <-ctx.Done():
			s.log.Info("session loop stopped")
			return ctx.Err()

		case c := <-s.cmds:
			now := s.clock()
			s.session.Tick(now)
			val, err := c.fn(now)
			s.publish()
			c.reply <- result{val: val, err: err}

		case <-tick:
			timer, tick = nil, nil
			s.session.Tick(s.clock())
			s.publish()
		}

		if !s.session.Running() {
			stopTimer()
		}
	}
}

func (s *Service) do(ctx context.Context, fn func(now time.Time) (any, error)) (any, error) {
	c := command{fn: fn, reply: make(chan result, 1)}

	select {
	case s.cmds <- c:
	case <-s.done:
		return nil, response.ErrUnavailable
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// once queued the command runs, so its outcome is the only honest answer
	r := <-c.reply
	return r.val, r.err
}

func (s *Service) snapshotCmd(fn func(now time.Time)) func(now time.Time) (any, error) {
	return func(now time.Time) (any, error) {
		fn(now)
		return toSessionResponse(s.session.Snapshot()), nil
	}
}

func (s *Service) snapshot(ctx context.Context, op string, fn func(now time.Time)) (*api.SessionResponse, error) {
	v, err := s.do(ctx, s.snapshotCmd(fn))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp := v.(api.SessionResponse)
	return &resp, nil
}

// Session

func (s *Service) GetSession(ctx context.Context) (*api.SessionResponse, error) {
	return s.snapshot(ctx, "service.GetSession", func(time.Time) {})
}

func (s *Service) Configure(ctx context.Context, req *api.ConfigureRequest) (*api.SessionResponse, error) {
	const op = "service.Configure"

	set := lecture.Settings{
		Course: req.Course,
		Title:  req.Title,
		Theme:  req.Theme,
	}

	if req.Date != nil {
		d, err := time.Parse(lecture.DateLayout, *req.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid date: %w", op, response.ErrBadRequest)
		}
		set.Date = &d
	}

	if req.Segments != nil {
		set.Segments = make([]lecture.Segment, len(req.Segments))
		for i, seg := range req.Segments {
			set.Segments[i] = lecture.Segment{Name: seg.Name, Minutes: seg.Minutes}
		}
	}

	v, err := s.do(ctx, func(time.Time) (any, error) {
		if err := s.session.Configure(set); err != nil {
			return nil, err
		}
		return toSessionResponse(s.session.Snapshot()), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := v.(api.SessionResponse)
	return &resp, nil
}

// Timer

func (s *Service) Start(ctx context.Context) (*api.SessionResponse, error) {
	return s.snapshot(ctx, "service.Start", func(now time.Time) {
		if !s.session.Start(now) {
			s.log.Debug("start ignored, timer already running")
		}
	})
}

func (s *Service) Pause(ctx context.Context) (*api.SessionResponse, error) {
	return s.snapshot(ctx, "service.Pause", func(now time.Time) {
		if !s.session.Pause(now) {
			s.log.Debug("pause ignored, timer not running")
		}
	})
}

func (s *Service) Advance(ctx context.Context) (*api.SessionResponse, error) {
	return s.snapshot(ctx, "service.Advance", func(now time.Time) {
		e := s.session.Advance(now)
		s.log.Info("segment completed",
			slog.String("segment", e.Segment),
			slog.Int("planned_minutes", e.PlannedMinutes),
			slog.Float64("spent_minutes", e.SpentMinutes),
		)
	})
}

func (s *Service) Reset(ctx context.Context) (*api.SessionResponse, error) {
	return s.snapshot(ctx, "service.Reset", func(time.Time) {
		s.session.Reset()
		s.log.Info("lecture reset")
	})
}

// Notes

// AddNote appends a free-text note. With an idempotency key the note is
// accepted once per key; repeats fail with response.ErrLocked.
func (s *Service) AddNote(ctx context.Context, req *api.NoteRequest, idempotencyKey *string) (*api.LogEntry, error) {
	const op = "service.AddNote"

	var lockKey string
	if idempotencyKey != nil {
		lockKey = fmt.Sprintf("note:%s", *idempotencyKey)

		locked, err := s.locker.Lock(ctx, lockKey, noteKeyTTL)
		if err != nil {
			return nil, fmt.Errorf("%s: lock error: %w", op, err)
		}
		if !locked {
			return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
		}
	}

	v, err := s.do(ctx, func(now time.Time) (any, error) {
		return s.session.AddNote(now, lecture.NoteKind(req.Kind), req.Text)
	})
	if err != nil {
		if lockKey != "" {
			// the note was not recorded, let the client retry with the same key
			if uerr := s.locker.Unlock(context.WithoutCancel(ctx), lockKey); uerr != nil {
				s.log.Warn("failed to release note key", sl.Err(uerr))
			}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entry := toLogEntry(v.(lecture.NoteEntry))
	return &entry, nil
}

// Roster

func (s *Service) SetRoster(ctx context.Context, req *api.RosterRequest) (*api.RosterResponse, error) {
	const op = "service.SetRoster"

	v, err := s.do(ctx, func(time.Time) (any, error) {
		added := s.session.SetRoster(req.Text)
		return toRosterResponse(added, s.session.Snapshot().Roster), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := v.(api.RosterResponse)
	return &resp, nil
}

func (s *Service) SetPresence(ctx context.Context, name string, present bool) (*api.RosterResponse, error) {
	const op = "service.SetPresence"

	v, err := s.do(ctx, func(time.Time) (any, error) {
		if err := s.session.SetPresence(name, present); err != nil {
			return nil, err
		}
		return toRosterResponse(0, s.session.Snapshot().Roster), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := v.(api.RosterResponse)
	return &resp, nil
}

func (s *Service) ClearRoster(ctx context.Context) error {
	const op = "service.ClearRoster"

	if _, err := s.do(ctx, func(time.Time) (any, error) {
		s.session.ClearRoster()
		return nil, nil
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Export

func (s *Service) ExportLog(ctx context.Context) (*Export, error) {
	return s.export(ctx, "service.ExportLog", s.session.ExportLog)
}

func (s *Service) ExportRoster(ctx context.Context) (*Export, error) {
	return s.export(ctx, "service.ExportRoster", s.session.ExportRoster)
}

func (s *Service) export(ctx context.Context, op string, fn func() (lecture.Table, error)) (*Export, error) {
	v, err := s.do(ctx, func(time.Time) (any, error) {
		t, err := fn()
		if err != nil {
			return nil, err
		}
		return Export{Info: s.session.Info(), Table: t}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exp := v.(Export)
	return &exp, nil
}

// Single active session

func panelKey(course string) string {
	return fmt.Sprintf("panel:%s", course)
}

// Claim takes ownership of the course's panel so that a second dashboard
// for the same course refuses to start. It must be called before Run.
func (s *Service) Claim(ctx context.Context) error {
	const op = "service.Claim"

	key := panelKey(s.session.Info().Course)

	locked, err := s.locker.Lock(ctx, key, s.claimTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !locked {
		return fmt.Errorf("%s: %s: %w", op, key, response.ErrLocked)
	}
	s.claimed = key

	return nil
}

// keepClaim renews the course claim until ctx is done. A claim found expired
// is taken again when still free.
func (s *Service) keepClaim(ctx context.Context) {
	ticker := time.NewTicker(s.claimTTL / 3)
	defer ticker.Stop()

	log := s.log.With(slog.String("claim", s.claimed))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ok, err := s.locker.Refresh(ctx, s.claimed, s.claimTTL)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("failed to renew panel claim", sl.Err(err))
			}
			continue
		}
		if ok {
			continue
		}

		log.Warn("panel claim expired, claiming again")
		if ok, err := s.locker.Lock(ctx, s.claimed, s.claimTTL); err != nil || !ok {
			log.Error("panel claim lost to another process", slog.Bool("locked", ok))
		}
	}
}

func (s *Service) Release(ctx context.Context) error {
	const op = "service.Release"

	if s.claimed == "" {
		return nil
	}
	if err := s.locker.Unlock(ctx, s.claimed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IsInputError reports whether err was caused by a rejected user input
// rather than a failure of the service.
func IsInputError(err error) bool {
	return errors.Is(err, lecture.ErrEmptyNote) ||
		errors.Is(err, lecture.ErrUnknownNoteKind) ||
		errors.Is(err, lecture.ErrBlankName) ||
		errors.Is(err, lecture.ErrSegmentCount) ||
		errors.Is(err, response.ErrBadRequest)
}

// IsEmptyExport reports an export refused because there is nothing to export.
func IsEmptyExport(err error) bool {
	return errors.Is(err, lecture.ErrEmptyLog) || errors.Is(err, lecture.ErrEmptyRoster)
}
