// Package playlist turns recordings into the ordered item sequence
// the player consumes.
package playlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/clef-app/clef/internal/catalogue"
	"github.com/clef-app/clef/internal/domain"
	"github.com/clef-app/clef/internal/logger"
	"github.com/clef-app/clef/internal/store"
)

// Selection names one recording to play, optionally narrowed to a
// subset of its work's part indices. An empty Parts plays the whole
// recording.
type Selection struct {
	RecordingID string
	Parts       []int
}

type Builder struct {
	cat *catalogue.Catalogue
	log *logger.Logger
}

func NewBuilder(cat *catalogue.Catalogue, log *logger.Logger) *Builder {
	return &Builder{
		cat: cat,
		log: log.WithComponent("playlist"),
	}
}

// Build flattens the selections into one ordered playlist: recordings
// in caller order, tracks in track_index order within each. The first
// item emitted for a recording carries IsTitle so the UI renders a
// header above it. Performers of every contributing recording get
// their last_played stamp touched.
func (b *Builder) Build(ctx context.Context, selections []Selection) ([]domain.PlaylistItem, error) {
	var items []domain.PlaylistItem
	for _, sel := range selections {
		rec, err := b.cat.DescribeRecording(ctx, sel.RecordingID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, &store.MissingItemError{Kind: "recording", ID: sel.RecordingID}
		}

		tracks, err := b.cat.ListTracks(ctx, sel.RecordingID)
		if err != nil {
			return nil, err
		}

		emitted := 0
		for _, track := range tracks {
			if len(sel.Parts) > 0 && !track.WorkParts.Intersects(sel.Parts) {
				continue
			}
			partTitle, err := partTitle(rec.Work, track)
			if err != nil {
				return nil, err
			}
			items = append(items, domain.PlaylistItem{
				IsTitle:    emitted == 0,
				Composers:  rec.Work.ComposersText(),
				WorkTitle:  rec.Work.Title,
				Performers: rec.PerformersText(),
				PartTitle:  partTitle,
				Path:       track.Path,
				TrackID:    track.ID,
			})
			emitted++
		}

		if emitted > 0 {
			if err := b.cat.MarkPlayed(ctx, sel.RecordingID); err != nil {
				return nil, err
			}
		}
		b.log.Debug("recording added to playlist", "recording", sel.RecordingID, "items", emitted)
	}
	return items, nil
}

// partTitle joins the titles of the parts a track covers; empty when
// the track covers the whole work. An out-of-range index means the
// store is corrupted and is an error, not a dropped item.
func partTitle(work domain.WorkDescription, track domain.Track) (string, error) {
	if len(track.WorkParts) == 0 {
		return "", nil
	}
	titles := make([]string, 0, len(track.WorkParts))
	for _, idx := range track.WorkParts {
		if idx < 0 || idx >= len(work.Parts) {
			return "", &store.ReferentialError{
				Op:  "build playlist",
				Err: fmt.Errorf("track %s references part %d of work %s, which has %d parts", track.ID, idx, work.ID, len(work.Parts)),
			}
		}
		titles = append(titles, work.Parts[idx].Title)
	}
	return strings.Join(titles, ", "), nil
}
