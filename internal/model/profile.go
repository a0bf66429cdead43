package model

import (
	"strings"
	"time"
)

// ProfileRecord is the structured record extracted from a rendered profile page.
// Every field is optional: a record with only a name is still a valid record.
//
// The JSON field names are the wire contract expected by the catalog service
// and must not change.
type ProfileRecord struct {
	// FirstName is the first whitespace-separated token of the display name.
	FirstName string `json:"firstName"`

	// LastName is the remainder of the display name after the first token.
	LastName string `json:"lastName"`

	// ProfileURL is the canonical locator of the profile page.
	ProfileURL string `json:"linkedinUrl"`

	// CurrentPosition is the title of the most recent position, or a value
	// derived from the headline when no experience section is available.
	CurrentPosition string `json:"currentPosition"`

	// CurrentCompany is the employer of the most recent position.
	CurrentCompany string `json:"currentCompany"`

	// ProfilePhotoURL is the URL of the profile picture, never a placeholder.
	ProfilePhotoURL string `json:"profilePhotoUrl"`

	// Headline is the one-line tagline under the name.
	Headline string `json:"headline"`

	// Bio is the free text of the about section.
	Bio string `json:"bio"`

	// Location is the free-text location shown in the top card.
	Location string `json:"location"`

	// PastExperiences lists experience entries in document order (at most 8).
	PastExperiences []ExperienceEntry `json:"pastExperiences"`

	// Education lists "school - degree" entries in document order (at most 5).
	Education []string `json:"education"`

	// Skills is a comma-separated list of distinct skills (at most 15).
	Skills string `json:"skills"`

	// Languages is a comma-separated list of distinct languages.
	Languages string `json:"languages"`

	// ConnectionCount is nil when no connection count could be found.
	ConnectionCount *int `json:"connectionCount"`

	// RecentPosts holds excerpts of recent activity (at most 5).
	RecentPosts []RecentPost `json:"recentPosts"`
}

// ExperienceEntry is one item of the experience section.
// Title is required for an entry to exist; the other fields are optional and
// omitted from JSON when empty.
type ExperienceEntry struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration,omitempty"`
	Location string `json:"location,omitempty"`
}

// RecentPost is the text excerpt of one recent activity item.
type RecentPost struct {
	Content string `json:"content"`
}

// NewProfileRecord returns an empty record whose sequence fields are empty
// slices rather than nil, so that they serialize as [] instead of null.
func NewProfileRecord() *ProfileRecord {
	return &ProfileRecord{
		PastExperiences: make([]ExperienceEntry, 0),
		Education:       make([]string, 0),
		RecentPosts:     make([]RecentPost, 0),
	}
}

// FullName joins first and last name with a single space.
func (r *ProfileRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// CurrentRole formats position and company for display.
// It returns "position - company" when both are known, otherwise whichever is set.
func (r *ProfileRecord) CurrentRole() string {
	switch {
	case r.CurrentPosition != "" && r.CurrentCompany != "":
		return r.CurrentPosition + " - " + r.CurrentCompany
	case r.CurrentPosition != "":
		return r.CurrentPosition
	default:
		return r.CurrentCompany
	}
}

// SkillList splits the comma-joined skills back into individual entries.
func (r *ProfileRecord) SkillList() []string {
	return splitJoined(r.Skills)
}

// LanguageList splits the comma-joined languages back into individual entries.
func (r *ProfileRecord) LanguageList() []string {
	return splitJoined(r.Languages)
}

// JoinList joins list values the way Skills and Languages are stored.
func JoinList(values []string) string {
	return strings.Join(values, ", ")
}

func splitJoined(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Extraction wraps a record with the metadata of the pass that produced it.
// It is what the history database stores and what reports render.
type Extraction struct {
	// ID is the history row identifier; zero for unsaved extractions.
	ID int64 `json:"id,omitempty"`

	// Source describes where the document came from (file path, URL).
	Source string `json:"source"`

	// ExtractedAt is when the pass finished.
	ExtractedAt time.Time `json:"extractedAt"`

	// Elapsed is the wall time of the pass, dominated by the recent posts wait.
	Elapsed time.Duration `json:"elapsed"`

	// Steps lists the pipeline steps that ran, in order.
	Steps []string `json:"steps,omitempty"`

	// Record is the extracted profile. Nil when the pass failed.
	Record *ProfileRecord `json:"record"`

	// Err is the failure of the pass, if any.
	Err error `json:"-"`

	// ErrorMessage is Err rendered for reports and storage.
	ErrorMessage string `json:"error,omitempty"`
}

// SetError records a pass failure.
func (e *Extraction) SetError(err error) {
	e.Err = err
	if err != nil {
		e.ErrorMessage = err.Error()
	}
}
