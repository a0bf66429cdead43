package model

import "math"

// CompletenessField names one optional field counted by Completeness.
type CompletenessField string

// The ten optional fields that make up the completeness score.
// Identity fields (name, profile URL) are not scored.
const (
	FieldProfilePhoto    CompletenessField = "profilePhotoUrl"
	FieldHeadline        CompletenessField = "headline"
	FieldBio             CompletenessField = "bio"
	FieldLocation        CompletenessField = "location"
	FieldPastExperiences CompletenessField = "pastExperiences"
	FieldEducation       CompletenessField = "education"
	FieldSkills          CompletenessField = "skills"
	FieldLanguages       CompletenessField = "languages"
	FieldRecentPosts     CompletenessField = "recentPosts"
	FieldConnectionCount CompletenessField = "connectionCount"
)

// CompletenessFields returns the scored fields in a stable order.
func CompletenessFields() []CompletenessField {
	return []CompletenessField{
		FieldProfilePhoto,
		FieldHeadline,
		FieldBio,
		FieldLocation,
		FieldPastExperiences,
		FieldEducation,
		FieldSkills,
		FieldLanguages,
		FieldRecentPosts,
		FieldConnectionCount,
	}
}

// Filled reports whether the given optional field carries data.
// Strings must be non-empty, sequences must have at least one element and
// the connection count must be present (zero connections still counts).
func (r *ProfileRecord) Filled(f CompletenessField) bool {
	switch f {
	case FieldProfilePhoto:
		return r.ProfilePhotoURL != ""
	case FieldHeadline:
		return r.Headline != ""
	case FieldBio:
		return r.Bio != ""
	case FieldLocation:
		return r.Location != ""
	case FieldPastExperiences:
		return len(r.PastExperiences) > 0
	case FieldEducation:
		return len(r.Education) > 0
	case FieldSkills:
		return r.Skills != ""
	case FieldLanguages:
		return r.Languages != ""
	case FieldRecentPosts:
		return len(r.RecentPosts) > 0
	case FieldConnectionCount:
		return r.ConnectionCount != nil
	default:
		return false
	}
}

// MissingFields returns the optional fields that are not filled.
func (r *ProfileRecord) MissingFields() []CompletenessField {
	var missing []CompletenessField
	for _, f := range CompletenessFields() {
		if !r.Filled(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Completeness returns the percentage (0-100) of optional fields that are filled.
// The score is recomputed on every call.
func (r *ProfileRecord) Completeness() int {
	if r == nil {
		return 0
	}
	fields := CompletenessFields()
	filled := 0
	for _, f := range fields {
		if r.Filled(f) {
			filled++
		}
	}
	return int(math.Round(100 * float64(filled) / float64(len(fields))))
}
