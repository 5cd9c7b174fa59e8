package dictionary

import (
	"encoding/json"

	"github.com/spec-kit/worklog-dictionaries/internal/domain"
)

// snapshot is the persisted record. The key names match the snapshot the
// earlier front end wrote, so a cache populated by either survives the
// transition. teamMembers is written for readers of the raw record; hydration
// trusts only the source collections and recomputes the derived view.
type snapshot struct {
	CateringCompanies      domain.CateringVendors      `json:"cateringCompanies"`
	AccommodationCompanies domain.AccommodationVendors `json:"accommodationCompanies"`
	Teams                  domain.Teams                `json:"teams"`
	TeamMembers            []domain.TeamMember         `json:"teamMembers"`
}

// Validate checks the decoded snapshot. Placeholder teams may have been
// persisted, so team validation tolerates empty names; everything else must
// be fully shaped or the whole snapshot is discarded.
func (s *snapshot) Validate() error {
	if err := s.CateringCompanies.Validate(); err != nil {
		return err
	}
	if err := s.AccommodationCompanies.Validate(); err != nil {
		return err
	}
	return s.Teams.Validate()
}

func encodeSnapshot(snap snapshot) ([]byte, error) {
	return json.Marshal(snap)
}
