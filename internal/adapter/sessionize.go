package adapter

import (
	"strconv"
	"strings"

	"github.com/sells-group/speaker-cli/internal/model"
)

// sessionize joins the sessionize.com listing collection with detail
// profiles on username. Event counts arrive as display strings
// ("12 events").
type sessionize struct {
	profiles map[string]map[string]any
}

// NewSessionize returns the sessionize adapter joined against the detail
// profile documents.
func NewSessionize(profileDocs []map[string]any) Adapter {
	profiles := make(map[string]map[string]any, len(profileDocs))
	for _, p := range profileDocs {
		if u := docString(p, "username"); u != "" {
			profiles[u] = p
		}
	}
	return sessionize{profiles: profiles}
}

func (sessionize) Source() string   { return "sessionize" }
func (sessionize) Tier() model.Tier { return model.TierCat3 }

func (s sessionize) Adapt(doc map[string]any) (*model.SourceRecord, error) {
	rec, err := newRecord(s.Source(), docString(doc, "name"), s.Tier())
	if err != nil {
		return nil, err
	}

	username := docString(doc, "username")
	rec.SourceID = firstNonEmpty(username, docID(doc, "_id"))
	rec.SourceURL = docString(doc, "url")
	rec.RawTagline = docString(doc, "tagline")
	rec.RawLocation = docString(doc, "location")
	rec.RawExpertiseTerms = docStrings(doc, "categories")

	// "12 events" -> 12.
	if count := docString(doc, "events_count"); count != "" {
		if n, err := strconv.Atoi(strings.Fields(count)[0]); err == nil {
			rec.TotalTalks = n
		}
	}

	detail := s.profiles[username]
	if detail == nil {
		return rec, nil
	}

	if basic := docMap(detail, "basic_info"); basic != nil {
		rec.BioFull = docString(basic, "bio")
	}
	if prof := docMap(detail, "professional_info"); prof != nil {
		rec.RawTitle = docString(prof, "job_title")
		rec.RawCompany = docString(prof, "company")
	}
	if history := docMap(detail, "speaking_history"); history != nil {
		if sessions := docInt(history, "total_sessions"); sessions > 0 {
			rec.TotalTalks = sessions
		}
	}
	return rec, nil
}
