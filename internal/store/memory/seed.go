package memory

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"eventdash/internal/core"
)

// SeedFile is looked up in DATA_DIR before falling back to the embedded seed.
const SeedFile = "seed.yaml"

//go:embed seed.yaml
var defaultSeed []byte

// Data is a parsed seed, ready to load into any backend.
type Data struct {
	Events       []core.Event
	Participants []core.Participant
	Feedback     []core.Feedback
}

type seedFile struct {
	Events   []seedEvent    `yaml:"events"`
	Feedback []seedFeedback `yaml:"feedback"`
}

type seedEvent struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Company      string            `yaml:"company"`
	Category     string            `yaml:"category"`
	Date         string            `yaml:"date"`
	Place        string            `yaml:"place"`
	Description  string            `yaml:"description"`
	Participants int               `yaml:"participants"`
	Requirements string            `yaml:"requirements"`
	Notes        string            `yaml:"notes"`
	Image        string            `yaml:"image"`
	Recurrence   string            `yaml:"recurrence"`
	Attendees    []seedParticipant `yaml:"attendees"`
	// Generate appends N synthetic participants after the listed attendees.
	Generate int `yaml:"generate_participants"`
}

type seedParticipant struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Role       string `yaml:"role"`
	Phone      string `yaml:"phone"`
	Department string `yaml:"department"`
	RSVP       string `yaml:"rsvp"`
	CheckedIn  bool   `yaml:"checked_in"`
}

type seedFeedback struct {
	ID              string            `yaml:"id"`
	EventID         string            `yaml:"event_id"`
	ParticipantName string            `yaml:"participant_name"`
	Rating          int               `yaml:"rating"`
	Comments        string            `yaml:"comments"`
	Recommendation  string            `yaml:"recommendation"`
	Categories      map[string]string `yaml:"categories"`
	SubmittedAt     time.Time         `yaml:"submitted_at"`
}

// DefaultSeed parses the embedded seed.
func DefaultSeed() (Data, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeedDir reads <dir>/seed.yaml, or the embedded seed when the file
// does not exist.
func LoadSeedDir(dir string) (Data, error) {
	if dir != "" {
		raw, err := os.ReadFile(filepath.Join(dir, SeedFile))
		switch {
		case err == nil:
			return ParseSeed(raw)
		case !errors.Is(err, os.ErrNotExist):
			return Data{}, fmt.Errorf("read seed: %w", err)
		}
	}
	return DefaultSeed()
}

// ParseSeed decodes and validates a YAML seed. Event statuses are left
// empty; stores derive them from the date.
func ParseSeed(raw []byte) (Data, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Data{}, fmt.Errorf("decode seed: %w", err)
	}

	var data Data
	eventIDs := map[string]bool{}
	participantIDs := map[string]bool{}
	for i, se := range f.Events {
		date, err := core.ParseDate(se.Date)
		if err != nil {
			return Data{}, fmt.Errorf("seed event %d (%s): %w", i, se.ID, err)
		}
		e := core.Event{
			ID:           strings.TrimSpace(se.ID),
			Name:         se.Name,
			Company:      se.Company,
			Category:     se.Category,
			Date:         date,
			Place:        se.Place,
			Description:  strings.TrimSpace(se.Description),
			Participants: se.Participants,
			Requirements: se.Requirements,
			Notes:        se.Notes,
			Image:        se.Image,
			Recurrence:   se.Recurrence,
		}
		if e.ID == "" {
			return Data{}, fmt.Errorf("seed event %d: %w: missing id", i, core.ErrInvalidArgument)
		}
		if eventIDs[e.ID] {
			return Data{}, fmt.Errorf("seed event %d: %w: duplicate id %q", i, core.ErrInvalidArgument, e.ID)
		}
		if err := e.Validate(); err != nil {
			return Data{}, fmt.Errorf("seed event %s: %w", e.ID, err)
		}
		eventIDs[e.ID] = true
		data.Events = append(data.Events, e)

		people := make([]core.Participant, 0, len(se.Attendees)+se.Generate)
		for _, sp := range se.Attendees {
			rsvp := core.RSVPStatus(sp.RSVP)
			if rsvp == "" {
				rsvp = core.RSVPConfirmed
			}
			people = append(people, core.Participant{
				ID:         sp.ID,
				EventID:    e.ID,
				Name:       sp.Name,
				Email:      sp.Email,
				Role:       sp.Role,
				Phone:      sp.Phone,
				Department: sp.Department,
				RSVP:       rsvp,
				CheckedIn:  sp.CheckedIn,
			})
		}
		people = append(people, GenerateParticipants(e.ID, se.Generate)...)
		for _, p := range people {
			if p.ID == "" || participantIDs[p.ID] {
				return Data{}, fmt.Errorf("seed event %s: %w: participant id %q missing or reused", e.ID, core.ErrInvalidArgument, p.ID)
			}
			participantIDs[p.ID] = true
		}
		data.Participants = append(data.Participants, people...)
	}

	for i, sf := range f.Feedback {
		fb := core.Feedback{
			ID:              sf.ID,
			EventID:         sf.EventID,
			ParticipantName: sf.ParticipantName,
			Rating:          sf.Rating,
			Comments:        strings.TrimSpace(sf.Comments),
			Recommendation:  sf.Recommendation,
			Categories:      make(map[string]core.Rating, len(sf.Categories)),
			SubmittedAt:     sf.SubmittedAt,
		}
		for cat, r := range sf.Categories {
			fb.Categories[cat] = core.Rating(r)
		}
		if !eventIDs[fb.EventID] {
			return Data{}, fmt.Errorf("seed feedback %d: %w: unknown event %q", i, core.ErrNotFound, fb.EventID)
		}
		if err := fb.Validate(); err != nil {
			return Data{}, fmt.Errorf("seed feedback %d: %w", i, err)
		}
		data.Feedback = append(data.Feedback, fb)
	}

	return data, nil
}

var (
	departments  = []string{"HR", "IT", "Sales", "Marketing", "Finance", "Operations"}
	rsvpStatuses = []core.RSVPStatus{core.RSVPConfirmed, core.RSVPPending, core.RSVPCancelled}
)

// GenerateParticipants builds n deterministic placeholder participants.
func GenerateParticipants(eventID string, n int) []core.Participant {
	out := make([]core.Participant, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		out = append(out, core.Participant{
			ID:         fmt.Sprintf("%s-p%d", eventID, i),
			EventID:    eventID,
			Name:       fmt.Sprintf("Participant %d", i),
			Email:      fmt.Sprintf("participant%d@example.com", i),
			Role:       "Attendee",
			Phone:      fmt.Sprintf("+1 555-%04d", (i*7919)%10000),
			Department: departments[(i-1)%len(departments)],
			RSVP:       rsvpStatuses[(i-1)%len(rsvpStatuses)],
			CheckedIn:  i%3 == 0,
		})
	}
	return out
}
