// Package domain defines the catalogue entities and the nested
// description objects the UI and sync layers exchange.
package domain

import "fmt"

// Person is a composer or performer.
type Person struct {
	ID         string `json:"id" db:"id"`
	FirstName  string `json:"firstName" db:"first_name"`
	LastName   string `json:"lastName" db:"last_name"`
	LastUsed   *int64 `json:"-" db:"last_used"`
	LastPlayed *int64 `json:"-" db:"last_played"`
}

// NameFL renders the person as "First Last".
func (p Person) NameFL() string {
	return p.FirstName + " " + p.LastName
}

// NameLF renders the person as "Last, First" for sorted lists.
func (p Person) NameLF() string {
	return p.LastName + ", " + p.FirstName
}

// Instrument is an instrument or a performance role such as "Conductor".
type Instrument struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	LastUsed   *int64 `json:"-" db:"last_used"`
	LastPlayed *int64 `json:"-" db:"last_played"`
}

// Ensemble is a performing group.
type Ensemble struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	LastUsed   *int64 `json:"-" db:"last_used"`
	LastPlayed *int64 `json:"-" db:"last_played"`
}

// Work is a musical composition attributed to one composer.
type Work struct {
	ID       string `json:"id" db:"id"`
	Composer string `json:"composer" db:"composer"`
	Title    string `json:"title" db:"title"`
}

// WorkPart is a movement of a work, addressed by its position index.
// Composer overrides the work's composer when set.
type WorkPart struct {
	ID        string  `json:"id" db:"id"`
	Work      string  `json:"work" db:"work"`
	PartIndex int     `json:"partIndex" db:"part_index"`
	Composer  *string `json:"composer,omitempty" db:"composer"`
	Title     string  `json:"title" db:"title"`
}

// WorkSection is a header displayed before the part at BeforeIndex.
// Sections do not nest; BeforeIndex may equal the part count to place
// a header after the last part.
type WorkSection struct {
	ID          string `json:"id" db:"id"`
	Work        string `json:"work" db:"work"`
	Title       string `json:"title" db:"title"`
	BeforeIndex int    `json:"beforeIndex" db:"before_index"`
}

// Recording is one recorded rendition of a work.
type Recording struct {
	ID      string `json:"id" db:"id"`
	Work    string `json:"work" db:"work"`
	Comment string `json:"comment" db:"comment"`
}

// Performance credits either a person or an ensemble on a recording,
// optionally with a role.
type Performance struct {
	ID        string  `json:"id" db:"id"`
	Recording string  `json:"recording" db:"recording"`
	Person    *string `json:"person,omitempty" db:"person"`
	Ensemble  *string `json:"ensemble,omitempty" db:"ensemble"`
	Role      *string `json:"role,omitempty" db:"role"`
}

// Validate rejects performances that name both or neither performer.
func (p Performance) Validate() error {
	if (p.Person == nil) == (p.Ensemble == nil) {
		return fmt.Errorf("performance %s: exactly one of person and ensemble must be set", p.ID)
	}
	return nil
}

// Track is one playable audio file of a recording. WorkParts lists the
// part indices the file covers; empty means the whole work.
type Track struct {
	ID         string    `json:"id" db:"id"`
	Recording  string    `json:"recording" db:"recording"`
	TrackIndex int       `json:"trackIndex" db:"track_index"`
	WorkParts  IndexList `json:"workParts" db:"work_parts"`
	Path       string    `json:"path" db:"path"`
}

// WorkPartInsertion is one normalized part row plus its instrumentation.
type WorkPartInsertion struct {
	Part          WorkPart `json:"part"`
	InstrumentIDs []string `json:"instrumentIds"`
}

// WorkInsertion is the normalized write form of a work: the work row
// plus everything replaced alongside it in one transaction.
type WorkInsertion struct {
	Work          Work                `json:"work"`
	InstrumentIDs []string            `json:"instrumentIds"`
	Parts         []WorkPartInsertion `json:"parts"`
	Sections      []WorkSection       `json:"sections"`
}

// RecordingInsertion is the normalized write form of a recording.
type RecordingInsertion struct {
	Recording    Recording     `json:"recording"`
	Performances []Performance `json:"performances"`
}

// Validate checks every performance row for performer exclusivity.
func (r RecordingInsertion) Validate() error {
	for _, p := range r.Performances {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
