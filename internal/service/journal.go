package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"

	"github.com/daybook/daybook/internal/cache"
	"github.com/daybook/daybook/internal/calendar"
	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/store"
)

// View targets echoed back by DeleteAndReload.
const (
	TargetEntriesList = "entries-list"
	TargetPastEntries = "past-entries-container"
)

// JournalService builds the journal views of one account at a time.
// Every method takes the owner explicitly; nothing is read from ambient state.
type JournalService struct {
	entries store.EntryStore
	dates   DateCache
	loc     *time.Location
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
	pick    func(n int) int
}

// JournalOption configures a JournalService.
type JournalOption func(*JournalService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) JournalOption {
	return func(s *JournalService) { s.now = now }
}

// WithPicker replaces the uniform random index source used by RandomPastEntry.
// pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) JournalOption {
	return func(s *JournalService) { s.pick = pick }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) JournalOption {
	return func(s *JournalService) { s.logger = logger }
}

// NewJournalService creates a new JournalService.
// dates may be nil to disable calendar caching.
func NewJournalService(entries store.EntryStore, dates DateCache, loc *time.Location, recorder metrics.Recorder, opts ...JournalOption) *JournalService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &JournalService{
		entries: entries,
		dates:   dates,
		loc:     loc,
		metrics: recorder,
		logger:  slog.Default(),
		now:     time.Now,
		pick:    rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TodayView is the landing page of the journal.
type TodayView struct {
	Date        calendar.Date
	Entries     []*model.Entry
	Dates       []calendar.Date
	RandomEntry *model.Entry
}

// DayView lists the entries of one day.
type DayView struct {
	Date    calendar.Date
	Entries []*model.Entry
}

// CreateResult is returned by CreateAndReload.
type CreateResult struct {
	Entry   *model.Entry
	Date    calendar.Date
	Entries []*model.Entry
}

// DeleteResult is returned by DeleteAndReload.
type DeleteResult struct {
	Date    calendar.Date
	Entries []*model.Entry
	Target  string
}

// Today returns the current calendar day in the service location.
func (s *JournalService) Today() calendar.Date {
	return calendar.Of(s.now(), s.loc)
}

// Location returns the time zone calendar days are computed in.
func (s *JournalService) Location() *time.Location {
	return s.loc
}

// CreateEntry stores a new entry for owner. Content is not validated here.
func (s *JournalService) CreateEntry(ctx context.Context, ownerID, content string) (*model.Entry, error) {
	now := s.now().UTC()
	entry := &model.Entry{
		ID:        ulid.Make().String(),
		OwnerID:   ownerID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.metrics.IncEntryCreated()
	s.invalidateDates(ctx, ownerID)

	return entry, nil
}

// CreateAndReload creates an entry and returns the refreshed list of its day.
func (s *JournalService) CreateAndReload(ctx context.Context, ownerID, content string) (*CreateResult, error) {
	entry, err := s.CreateEntry(ctx, ownerID, content)
	if err != nil {
		return nil, err
	}

	day := calendar.Of(entry.CreatedAt, s.loc)
	entries, err := s.entries.ListEntriesOn(ctx, ownerID, day)
	if err != nil {
		return nil, err
	}

	return &CreateResult{Entry: entry, Date: day, Entries: entries}, nil
}

// EntriesOn lists the entries of owner on day d, most recent first.
func (s *JournalService) EntriesOn(ctx context.Context, ownerID string, d calendar.Date) ([]*model.Entry, error) {
	return s.entries.ListEntriesOn(ctx, ownerID, d)
}

// EntryDates returns the calendar index of owner, reading through the cache.
func (s *JournalService) EntryDates(ctx context.Context, ownerID string) ([]calendar.Date, error) {
	var (
		generation int64
		fill       bool
	)
	if s.dates != nil {
		dates, gen, err := s.dates.GetEntryDates(ctx, ownerID)
		switch {
		case err == nil:
			s.metrics.IncCalendarCacheHit()
			return dates, nil
		case errors.Is(err, cache.ErrCacheMiss):
			generation, fill = gen, true
		default:
			// Generation unknown: serve from the store without filling.
			s.logger.Warn("calendar_cache_read_failed", "owner_id", ownerID, "error", err)
		}
		s.metrics.IncCalendarCacheMiss()
	}

	dates, err := s.entries.EntryDates(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if fill {
		stored, err := s.dates.SetEntryDates(ctx, ownerID, generation, dates)
		switch {
		case err != nil:
			s.logger.Warn("calendar_cache_write_failed", "owner_id", ownerID, "error", err)
		case !stored:
			s.logger.Debug("calendar_cache_fill_dropped", "owner_id", ownerID, "generation", generation)
		}
	}

	return dates, nil
}

// TodayView builds today's view: entries, the calendar index and a random past entry.
func (s *JournalService) TodayView(ctx context.Context, ownerID string) (*TodayView, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveViewDuration("today", time.Since(start)) }()

	today := s.Today()

	entries, err := s.entries.ListEntriesOn(ctx, ownerID, today)
	if err != nil {
		return nil, err
	}

	dates, err := s.EntryDates(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	random, err := s.randomBefore(ctx, ownerID, today)
	if err != nil {
		return nil, err
	}

	return &TodayView{Date: today, Entries: entries, Dates: dates, RandomEntry: random}, nil
}

// DateView parses raw as YYYY-MM-DD and lists that day's entries.
// An empty or unparsable raw value yields ErrMalformedInput.
func (s *JournalService) DateView(ctx context.Context, ownerID, raw string) (*DayView, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveViewDuration("date", time.Since(start)) }()

	if raw == "" {
		return nil, fmt.Errorf("%w: date is required", ErrMalformedInput)
	}
	day, err := calendar.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	entries, err := s.entries.ListEntriesOn(ctx, ownerID, day)
	if err != nil {
		return nil, err
	}

	return &DayView{Date: day, Entries: entries}, nil
}

// RandomPastEntry draws one entry uniformly from those created before today.
// It returns nil without error when there is none.
func (s *JournalService) RandomPastEntry(ctx context.Context, ownerID string) (*model.Entry, error) {
	return s.randomBefore(ctx, ownerID, s.Today())
}

func (s *JournalService) randomBefore(ctx context.Context, ownerID string, day calendar.Date) (*model.Entry, error) {
	candidates, err := s.entries.ListEntriesBefore(ctx, ownerID, day)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[s.pick(len(candidates))], nil
}

// DeleteAndReload deletes an owned entry and returns the remaining entries
// of the day it was written on.
func (s *JournalService) DeleteAndReload(ctx context.Context, ownerID, entryID, target string) (*DeleteResult, error) {
	entry, err := s.entries.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	day := calendar.Of(entry.CreatedAt, s.loc)

	removed, err := s.entries.DeleteEntry(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}
	if !removed {
		// Deleted concurrently between the lookup and the delete.
		return nil, ErrNotFound
	}

	s.metrics.IncEntryDeleted()
	s.invalidateDates(ctx, ownerID)

	entries, err := s.entries.ListEntriesOn(ctx, ownerID, day)
	if err != nil {
		return nil, err
	}

	return &DeleteResult{Date: day, Entries: entries, Target: ResolveTarget(target)}, nil
}

// ResolveTarget echoes the past-entries target and maps anything else to
// the default entries list.
func ResolveTarget(hint string) string {
	if hint == TargetPastEntries {
		return TargetPastEntries
	}
	return TargetEntriesList
}

// UpdateEntry replaces the content of an owned entry.
func (s *JournalService) UpdateEntry(ctx context.Context, ownerID, entryID, content string) (*model.Entry, error) {
	err := s.entries.UpdateEntryContent(ctx, ownerID, entryID, content, s.now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.metrics.IncEntryUpdated()

	entry, err := s.entries.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// ImportEntries stores entries with their original timestamps and returns
// how many were new.
func (s *JournalService) ImportEntries(ctx context.Context, entries []*model.Entry) (int, error) {
	for _, e := range entries {
		if e.ID == "" {
			e.ID = ulid.Make().String()
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = e.CreatedAt
		}
	}

	n, err := s.entries.ImportEntries(ctx, entries)
	if err != nil {
		return 0, err
	}

	s.metrics.AddEntriesImported(n)
	owners := lo.Uniq(lo.Map(entries, func(e *model.Entry, _ int) string { return e.OwnerID }))
	for _, owner := range owners {
		s.invalidateDates(ctx, owner)
	}

	return n, nil
}

func (s *JournalService) invalidateDates(ctx context.Context, ownerID string) {
	if s.dates == nil {
		return
	}
	if err := s.dates.InvalidateEntryDates(ctx, ownerID); err != nil {
		// Stale for at most the cache TTL.
		s.logger.Warn("calendar_cache_invalidate_failed", "owner_id", ownerID, "error", err)
	}
}
