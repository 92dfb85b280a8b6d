package domain

import "strings"

// WorkPartDescription is one movement with its references resolved.
type WorkPartDescription struct {
	Title       string       `json:"title"`
	Composer    *Person      `json:"composer,omitempty"`
	Instruments []Instrument `json:"instruments"`
}

// WorkSectionDescription is a section header positioned before the
// part at BeforeIndex.
type WorkSectionDescription struct {
	Title       string `json:"title"`
	BeforeIndex int    `json:"beforeIndex"`
}

// WorkDescription is the fully denormalized, navigable form of a work.
// Parts are in part_index order; sections are ordered by BeforeIndex
// with ties in insertion order.
type WorkDescription struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Composer    Person                   `json:"composer"`
	Instruments []Instrument             `json:"instruments"`
	Parts       []WorkPartDescription    `json:"parts"`
	Sections    []WorkSectionDescription `json:"sections"`
}

// FullTitle renders the work as "Composer: Title".
func (w WorkDescription) FullTitle() string {
	return w.Composer.NameFL() + ": " + w.Title
}

// ComposersText joins the distinct composers of the work and its
// parts, work composer first, in part order.
func (w WorkDescription) ComposersText() string {
	names := []string{w.Composer.NameFL()}
	seen := map[string]bool{w.Composer.ID: true}
	for _, part := range w.Parts {
		if part.Composer != nil && !seen[part.Composer.ID] {
			seen[part.Composer.ID] = true
			names = append(names, part.Composer.NameFL())
		}
	}
	return strings.Join(names, ", ")
}

// PerformanceDescription is a performance credit with its references
// resolved. Exactly one of Person and Ensemble is set.
type PerformanceDescription struct {
	Person   *Person     `json:"person,omitempty"`
	Ensemble *Ensemble   `json:"ensemble,omitempty"`
	Role     *Instrument `json:"role,omitempty"`
}

// Title renders the canonical performer label: the performer's name,
// followed by " (Role)" when a role is set.
func (p PerformanceDescription) Title() string {
	var name string
	switch {
	case p.Person != nil:
		name = p.Person.NameFL()
	case p.Ensemble != nil:
		name = p.Ensemble.Name
	}
	if p.Role != nil {
		name += " (" + p.Role.Name + ")"
	}
	return name
}

// RecordingDescription is the fully denormalized form of a recording.
type RecordingDescription struct {
	ID           string                   `json:"id"`
	Work         WorkDescription          `json:"work"`
	Comment      string                   `json:"comment"`
	Performances []PerformanceDescription `json:"performances"`
}

// PerformersText joins all performance titles with commas.
func (r RecordingDescription) PerformersText() string {
	titles := make([]string, len(r.Performances))
	for i, p := range r.Performances {
		titles[i] = p.Title()
	}
	return strings.Join(titles, ", ")
}

// PlaylistItem is one entry in the ordered sequence handed to the
// player. IsTitle marks the first item of a recording so the UI can
// render a work/performer header above it.
type PlaylistItem struct {
	IsTitle    bool   `json:"isTitle"`
	Composers  string `json:"composers"`
	WorkTitle  string `json:"workTitle"`
	Performers string `json:"performers"`
	PartTitle  string `json:"partTitle,omitempty"`
	Path       string `json:"path"`
	TrackID    string `json:"trackId"`
}
