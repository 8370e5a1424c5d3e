package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/metadata/mdblist"
	"github.com/rivenmedia/riven-tui/internal/riven"
)

// indexKey identifies a library item by media type and one external id.
// Shows are keyed under "show" even when the list calls them "tv".
type indexKey struct {
	mediaType string
	idKind    string // "tmdb", "tvdb", "imdb"
	extID     string
}

// libraryIndex maps external ids to Riven item ids. Parent ids of episodes
// and seasons are folded in under the show type, so a list that names a show
// still matches a library that only holds its episodes.
type libraryIndex map[indexKey]string

// MatchReport is the outcome of scanning an MDBList against the library.
type MatchReport struct {
	ListRef   string
	ListSize  int
	Matched   []batch.TargetItem
	Unmatched []mdblist.ListItem
}

// MatchedCount returns how many list entries resolved to library items.
func (r MatchReport) MatchedCount() int { return len(r.Matched) }

// UnmatchedCount returns how many list entries have no library item.
func (r MatchReport) UnmatchedCount() int { return len(r.Unmatched) }

// Summary renders a one-line scan result for toasts and CLI output.
func (r MatchReport) Summary() string {
	return fmt.Sprintf("%d list entries: %d in library, %d not in library",
		r.ListSize, len(r.Matched), len(r.Unmatched))
}

// ScanList fetches an MDBList and matches its entries against the full
// library. The ref may be a list URL or a user/slug pair.
func (s *Service) ScanList(ctx context.Context, ref string) (MatchReport, error) {
	if s.mdblist == nil {
		return MatchReport{}, fmt.Errorf("mdblist client not configured")
	}

	entries, err := s.mdblist.Items(ctx, ref)
	if err != nil {
		return MatchReport{}, fmt.Errorf("fetch list: %w", err)
	}
	if len(entries) == 0 {
		return MatchReport{}, fmt.Errorf("list %q has no entries", ref)
	}

	index, err := s.buildIndex(ctx)
	if err != nil {
		return MatchReport{}, fmt.Errorf("index library: %w", err)
	}

	report := matchEntries(index, entries)
	report.ListRef = ref
	s.log.Info().
		Str("list", ref).
		Int("entries", report.ListSize).
		Int("matched", len(report.Matched)).
		Int("unmatched", len(report.Unmatched)).
		Msg("mdblist scan complete")
	return report, nil
}

// MatchedPlan proposes a batch action over the list entries found in the
// library.
func (r MatchReport) MatchedPlan(action batch.Action) batch.Plan {
	items := make([]batch.TargetItem, len(r.Matched))
	copy(items, r.Matched)
	return batch.Plan{Items: items, Action: action}
}

// AddPlan proposes adding the unmatched list entries to the library by their
// external ids. Entries without a usable id are returned separately.
func (r MatchReport) AddPlan() (batch.Plan, []mdblist.ListItem) {
	var items []batch.TargetItem
	var unaddable []mdblist.ListItem
	for _, entry := range r.Unmatched {
		id := entry.ExternalID()
		if id == "" {
			unaddable = append(unaddable, entry)
			continue
		}
		items = append(items, batch.TargetItem{
			ID:    id,
			Label: entry.Label(),
			Kind:  entry.MediaType,
		})
	}
	return batch.Plan{Items: items, Action: batch.ActionAdd}, unaddable
}

// buildIndex downloads the whole library in one page through the
// long-timeout client and folds every item's external ids into the index.
func (s *Service) buildIndex(ctx context.Context) (libraryIndex, error) {
	page, err := s.index.ListItems(ctx, riven.ListParams{
		Limit: indexPageLimit,
		Page:  1,
	})
	if err != nil {
		return nil, err
	}

	index := make(libraryIndex, len(page.Items)*2)
	for _, item := range page.Items {
		indexItem(index, item)
	}
	return index, nil
}

func indexItem(index libraryIndex, item riven.MediaItem) {
	mediaType := canonicalType(item.Type)
	id := item.StringID()

	put := func(kind string, ext riven.ExternalID) {
		if ext == "" {
			return
		}
		key := indexKey{mediaType: mediaType, idKind: kind, extID: string(ext)}
		if _, taken := index[key]; !taken {
			index[key] = id
		}
	}

	put("tmdb", item.TMDBID)
	put("tvdb", item.TVDBID)
	put("imdb", item.IMDBID)

	// Episodes and seasons carry their show's ids in parent_ids. Index them
	// under "show" so list entries match whatever granularity the library
	// holds.
	if item.ParentIDs != nil {
		parent := riven.MediaItem{
			ID:     item.ID,
			Type:   riven.TypeShow,
			TMDBID: item.ParentIDs.TMDBID,
			TVDBID: item.ParentIDs.TVDBID,
			IMDBID: item.ParentIDs.IMDBID,
		}
		indexItem(index, parent)
	}
}

// matchEntries resolves each list entry to at most one library item,
// de-duplicating matches while preserving list order.
func matchEntries(index libraryIndex, entries []mdblist.ListItem) MatchReport {
	report := MatchReport{ListSize: len(entries)}
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		rivenID, ok := matchEntry(index, entry)
		if !ok {
			report.Unmatched = append(report.Unmatched, entry)
			continue
		}
		if seen[rivenID] {
			continue
		}
		seen[rivenID] = true
		report.Matched = append(report.Matched, batch.TargetItem{
			ID:    rivenID,
			Label: entry.Label(),
			Kind:  canonicalType(entry.MediaType),
		})
	}
	return report
}

// matchEntry tries the entry's ids strongest-first: tmdb for movies, tvdb
// for shows, then imdb for either.
func matchEntry(index libraryIndex, entry mdblist.ListItem) (string, bool) {
	mediaType := canonicalType(entry.MediaType)

	type probe struct {
		kind string
		id   string
	}
	var probes []probe
	switch mediaType {
	case riven.TypeMovie:
		probes = append(probes, probe{"tmdb", intID(entry.ID)})
	case riven.TypeShow:
		probes = append(probes, probe{"tvdb", intID(entry.TVDBID)})
	}
	probes = append(probes, probe{"imdb", entry.IMDBID})

	for _, p := range probes {
		if p.id == "" {
			continue
		}
		if rivenID, ok := index[indexKey{mediaType: mediaType, idKind: p.kind, extID: p.id}]; ok {
			return rivenID, true
		}
	}
	return "", false
}

// canonicalType normalizes list and library media types onto Riven's names.
func canonicalType(t string) string {
	switch strings.ToLower(t) {
	case "tv", riven.TypeShow:
		return riven.TypeShow
	case "season", "episode":
		return riven.TypeShow
	default:
		return riven.TypeMovie
	}
}

func intID(id int64) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("%d", id)
}
