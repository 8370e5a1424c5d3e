// Package library is the service layer between the UI surfaces and the
// remote clients. All reads, single-item actions, and bulk runs go through
// it, so confirmation, throttling, history, and notifications behave the
// same in the TUI and the CLI.
package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/data/stores"
	"github.com/rivenmedia/riven-tui/internal/metadata/mdblist"
	"github.com/rivenmedia/riven-tui/internal/metadata/tmdb"
	"github.com/rivenmedia/riven-tui/internal/riven"
	"github.com/rivenmedia/riven-tui/pkg/kv"
)

// indexPageLimit downloads the whole library in one page for mass-manager
// matching, mirroring the backend's practical "no limit" value.
const indexPageLimit = 999999

const pageCacheTTL = 30 * time.Second

// Notifier receives user-facing notices after operations complete. The TUI
// wires its toast bus in; headless commands leave it nil.
type Notifier interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Deps are the collaborators a Service needs. TMDB is optional (search and
// trending are disabled without a token); History and Notifier are optional.
type Deps struct {
	Riven    *riven.Client
	Index    *riven.Client // long-timeout client for full-library downloads
	TMDB     *tmdb.Client
	MDBList  *mdblist.Client
	Gateway  batch.Gateway
	Executor *batch.Executor
	History  *stores.HistoryStore
	Notifier Notifier
	Logger   zerolog.Logger
}

// Service orchestrates riven-tui operations.
type Service struct {
	riven    *riven.Client
	index    *riven.Client
	tmdb     *tmdb.Client
	mdblist  *mdblist.Client
	executor *batch.Executor
	history  *stores.HistoryStore
	notifier Notifier
	log      zerolog.Logger

	pageCache   *kv.Store[string, riven.ItemPage]
	searchCache *kv.Store[string, tmdb.Page]
}

// NewService creates the service. Deps.Riven and Deps.Executor are required.
func NewService(deps Deps) *Service {
	index := deps.Index
	if index == nil {
		index = deps.Riven
	}
	return &Service{
		riven:       deps.Riven,
		index:       index,
		tmdb:        deps.TMDB,
		mdblist:     deps.MDBList,
		executor:    deps.Executor,
		history:     deps.History,
		notifier:    deps.Notifier,
		log:         deps.Logger.With().Str("component", "library").Logger(),
		pageCache:   kv.New[string, riven.ItemPage](),
		searchCache: kv.New[string, tmdb.Page](),
	}
}

// HasTMDB reports whether search and trending are available.
func (s *Service) HasTMDB() bool {
	return s.tmdb != nil
}

// ListItems fetches a page of library items, serving repeated requests for
// the same filter set from a short-lived cache.
func (s *Service) ListItems(ctx context.Context, params riven.ListParams) (riven.ItemPage, error) {
	key := listCacheKey(params)
	if page, ok := s.pageCache.Get(key); ok {
		return page, nil
	}

	page, err := s.riven.ListItems(ctx, params)
	if err != nil {
		return riven.ItemPage{}, err
	}
	s.pageCache.SetTTL(key, page, pageCacheTTL)
	return page, nil
}

// InvalidatePages drops the page cache. Called after any mutating action so
// the next list reflects the backend's new state.
func (s *Service) InvalidatePages() {
	s.pageCache.Clear()
}

// GetItem fetches one item with full details.
func (s *Service) GetItem(ctx context.Context, id, mediaType string) (riven.MediaItem, error) {
	return s.riven.GetItem(ctx, id, mediaType)
}

// Search runs a TMDB multi search, cached per query+page.
func (s *Service) Search(ctx context.Context, query string, page int) (tmdb.Page, error) {
	if s.tmdb == nil {
		return tmdb.Page{}, fmt.Errorf("search requires a tmdb bearer token")
	}

	key := fmt.Sprintf("search/%s/%d", query, page)
	if cached, ok := s.searchCache.Get(key); ok {
		return cached, nil
	}

	result, err := s.tmdb.SearchMulti(ctx, query, page)
	if err != nil {
		return tmdb.Page{}, err
	}
	s.searchCache.SetTTL(key, result, 5*time.Minute)
	return result, nil
}

// FindExternal resolves a TMDB search result to the external id Riven's add
// endpoint wants: movies add by tmdb id, shows by tvdb id via /find.
func (s *Service) FindExternal(ctx context.Context, result tmdb.Result) (batch.TargetItem, error) {
	label := result.DisplayTitle()
	if y := result.Year(); y != "" {
		label = fmt.Sprintf("%s (%s)", label, y)
	}

	switch result.MediaType {
	case "movie":
		return batch.TargetItem{
			ID:    fmt.Sprintf("%d", result.ID),
			Label: label,
			Kind:  riven.TypeMovie,
		}, nil
	case "tv":
		details, err := s.tmdb.Details(ctx, "tv", result.ID)
		if err != nil {
			return batch.TargetItem{}, fmt.Errorf("resolve tvdb id: %w", err)
		}
		if details.ExternalIDs.TVDBID == 0 {
			return batch.TargetItem{}, fmt.Errorf("no tvdb id for %q", label)
		}
		return batch.TargetItem{
			ID:    fmt.Sprintf("%d", details.ExternalIDs.TVDBID),
			Label: label,
			Kind:  "tv",
		}, nil
	default:
		return batch.TargetItem{}, fmt.Errorf("cannot add media type %q", result.MediaType)
	}
}

// ResolveIDs turns raw library ids into labelled batch targets. Items that
// cannot be fetched keep a placeholder label so the batch can still run.
func (s *Service) ResolveIDs(ctx context.Context, ids []string) []batch.TargetItem {
	items := make([]batch.TargetItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.riven.GetItem(ctx, id, "")
		if err != nil {
			s.log.Debug().Str("id", id).Err(err).Msg("resolve id label failed")
			items = append(items, batch.TargetItem{ID: id, Label: "item " + id})
			continue
		}
		items = append(items, batch.TargetItem{ID: item.StringID(), Label: item.Label(), Kind: item.Type})
	}
	return items
}

// PlanFor builds a proposed batch over library items.
func PlanFor(items []riven.MediaItem, action batch.Action) batch.Plan {
	targets := make([]batch.TargetItem, 0, len(items))
	for _, item := range items {
		targets = append(targets, batch.TargetItem{
			ID:    item.StringID(),
			Label: item.Label(),
			Kind:  item.Type,
		})
	}
	return batch.Plan{Items: targets, Action: action}
}

// RunBatch reviews the plan through the gate and, when confirmed, drives it
// through the executor. The summary is archived to history and announced on
// the notifier; both are best effort. A cancelled review returns a zero
// summary and no error, with nothing dispatched.
func (s *Service) RunBatch(ctx context.Context, plan batch.Plan, gate batch.Gate, reporter batch.Reporter) (batch.Summary, bool, error) {
	if err := plan.Validate(); err != nil {
		return batch.Summary{}, false, err
	}

	if gate != nil {
		decision, err := gate.Review(ctx, plan)
		if err != nil {
			return batch.Summary{}, false, fmt.Errorf("review plan: %w", err)
		}
		if decision != batch.DecisionConfirmed {
			s.log.Info().Str("action", string(plan.Action)).Int("items", len(plan.Items)).Msg("batch cancelled at review")
			return batch.Summary{}, false, nil
		}
	}

	job := batch.NewJob(plan)
	summary, err := s.executor.Submit(ctx, job, reporter)
	if err != nil {
		return batch.Summary{}, false, err
	}

	s.InvalidatePages()
	s.archive(summary)
	s.announce(summary)

	return summary, true, nil
}

func (s *Service) archive(sum batch.Summary) {
	if s.history == nil {
		return
	}
	// Archival must not fail a batch that already ran.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Archive(ctx, sum); err != nil {
		s.log.Error().Err(err).Str("job_id", sum.JobID).Msg("archive batch summary failed")
	}
}

func (s *Service) announce(sum batch.Summary) {
	if s.notifier == nil {
		return
	}
	switch {
	case sum.Cancelled:
		s.notifier.Warnf("batch %s cancelled: %d ok, %d failed, %d skipped",
			sum.Action, sum.Counts.Succeeded, sum.Counts.Failed, sum.Counts.Skipped)
	case sum.Counts.Failed > 0:
		s.notifier.Warnf("batch %s: %d ok, %d failed", sum.Action, sum.Counts.Succeeded, sum.Counts.Failed)
	default:
		s.notifier.Infof("batch %s: %d ok", sum.Action, sum.Counts.Succeeded)
	}
}

// History lists archived batch summaries, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]stores.HistoryEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}

// PruneHistory deletes archived summaries older than the given age.
func (s *Service) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if s.history == nil {
		return 0, nil
	}
	return s.history.Prune(ctx, olderThan)
}

// UploadLogs publishes the backend's logs and returns the share URL.
func (s *Service) UploadLogs(ctx context.Context) (string, error) {
	return s.riven.UploadLogs(ctx)
}

// FetchLogText downloads published backend log text.
func (s *Service) FetchLogText(ctx context.Context, url string) (string, error) {
	return s.riven.FetchLogText(ctx, url)
}

// Calendar fetches upcoming releases.
func (s *Service) Calendar(ctx context.Context) ([]riven.CalendarEntry, error) {
	return s.riven.Calendar(ctx)
}

// Dashboard aggregates everything the dashboard view renders.
type Dashboard struct {
	Stats         riven.Stats
	Services      map[string]bool
	RecentlyAdded []riven.MediaItem
	Trending      []tmdb.Result
	BackendOK     bool
	BackendErr    string
}

// Dashboard fans out the dashboard reads concurrently. A backend outage
// still returns a Dashboard with BackendOK=false so the view can render a
// degraded state instead of an error screen.
func (s *Service) Dashboard(ctx context.Context) Dashboard {
	var dash Dashboard

	var g errgroup.Group
	g.Go(func() error {
		stats, err := s.riven.Stats(ctx)
		if err != nil {
			dash.BackendErr = err.Error()
			return nil
		}
		dash.Stats = stats
		dash.BackendOK = true
		return nil
	})
	g.Go(func() error {
		services, err := s.riven.Services(ctx)
		if err != nil {
			s.log.Debug().Err(err).Msg("dashboard services fetch failed")
			return nil
		}
		dash.Services = services
		return nil
	})
	g.Go(func() error {
		page, err := s.riven.ListItems(ctx, riven.ListParams{
			Limit: 5,
			Page:  1,
			Sort:  riven.SortDateDesc,
		})
		if err != nil {
			s.log.Debug().Err(err).Msg("dashboard recent fetch failed")
			return nil
		}
		dash.RecentlyAdded = page.Items
		return nil
	})
	if s.tmdb != nil {
		g.Go(func() error {
			page, err := s.tmdb.Trending(ctx, tmdb.TrendingDay, 1)
			if err != nil {
				s.log.Debug().Err(err).Msg("dashboard trending fetch failed")
				return nil
			}
			if len(page.Results) > 10 {
				page.Results = page.Results[:10]
			}
			dash.Trending = page.Results
			return nil
		})
	}
	_ = g.Wait()

	return dash
}

func listCacheKey(p riven.ListParams) string {
	return fmt.Sprintf("%d/%d/%s/%s/%s/%s/%t",
		p.Limit, p.Page, p.Sort, p.Search, p.Type, strings.Join(p.States, ","), p.Extended)
}
