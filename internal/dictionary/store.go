// Package dictionary owns the client-side mirror of the worklog reference
// data: catering and accommodation vendors and the team→member hierarchy.
// The store hydrates from a durable local cache, fetches from the remote API
// all-or-nothing, applies per-entity mutations from the server's canonical
// responses, and keeps a flattened, Polish-collated member view derived from
// the team hierarchy after every change.
package dictionary

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spec-kit/worklog-dictionaries/internal/cache"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/internal/events"
)

// StorageKey is the durable cache key for the dictionary snapshot.
const StorageKey = "worklog.dictionaries"

// Transport issues one authenticated JSON round-trip per call, failing with
// a status-carrying transport error. Satisfied by apiclient.Client.
type Transport interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Store is the dictionary synchronization store. Construct it with New and
// pass it by reference; there is no ambient global instance.
//
// The mutex guards in-memory commits only and is never held across a remote
// round-trip. Overlapping operations therefore commit in response-arrival
// order (last write wins); callers wanting a fully consistent mirror call
// FetchAll with force set.
type Store struct {
	mu            sync.Mutex
	catering      domain.CateringVendors
	accommodation domain.AccommodationVendors
	teams         domain.Teams
	teamMembers   []domain.TeamMember // derived, never mutated directly
	loaded        bool

	transport  Transport
	cache      cache.Store
	dispatcher events.Dispatcher
	collator   *collate.Collator
	logger     *zap.Logger
}

// New constructs an empty store. A nil cacheStore disables persistence, as
// in execution contexts with no durable storage.
func New(transport Transport, cacheStore cache.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		transport:  transport,
		cache:      cacheStore,
		dispatcher: events.NewInMemoryDispatcher(),
		collator:   collate.New(language.Polish),
		logger:     logger,
	}
}

// Subscribe registers a change handler. Handlers run synchronously after the
// mutation has committed and persisted.
func (s *Store) Subscribe(eventType events.EventType, handler events.EventHandler) {
	s.dispatcher.Subscribe(eventType, handler)
}

// Loaded reports whether the store holds a trusted snapshot, either restored
// from cache or fetched from the remote API.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// CateringVendors returns a copy of the catering vendor list.
func (s *Store) CateringVendors() []domain.CateringVendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CateringVendor(nil), s.catering...)
}

// AccommodationVendors returns a copy of the accommodation vendor list.
func (s *Store) AccommodationVendors() []domain.AccommodationVendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AccommodationVendor(nil), s.accommodation...)
}

// Teams returns a deep copy of the team hierarchy.
func (s *Store) Teams() []domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTeams(s.teams)
}

// TeamMembers returns a copy of the derived member view: every team's
// members flattened, tagged with the owning team id, sorted by name under
// Polish collation.
func (s *Store) TeamMembers() []domain.TeamMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TeamMember(nil), s.teamMembers...)
}

// HydrateFromStorage restores the dictionaries from the durable cache.
// Best-effort and silent: a missing or corrupt snapshot leaves the store
// empty with loaded=false so the next FetchAll still hits the network. It
// never touches the network and never re-writes storage.
func (s *Store) HydrateFromStorage(ctx context.Context) {
	s.mu.Lock()
	if s.loaded || s.cache == nil {
		s.mu.Unlock()
		return
	}

	raw, err := s.cache.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Debug("dictionary hydrate read failed", zap.Error(err))
		}
		s.mu.Unlock()
		return
	}

	var snap snapshot
	if err := domain.DecodeStrict(raw, &snap); err != nil {
		s.logger.Debug("discarding corrupt dictionary snapshot", zap.Error(err))
		s.mu.Unlock()
		return
	}

	s.catering = snap.CateringCompanies
	s.accommodation = snap.AccommodationCompanies
	s.teams = snap.Teams
	s.refreshTeamMembersLocked()
	s.loaded = true
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventDictionariesHydrated})
}

// FetchAll replaces the mirror with the remote state. When the store is
// already loaded and force is false it is a no-op. The three list endpoints
// are fetched concurrently; any failure leaves the held collections
// untouched and propagates the first error — no partial replacement.
func (s *Store) FetchAll(ctx context.Context, force bool) error {
	s.mu.Lock()
	if s.loaded && !force {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	var (
		catering      domain.CateringVendors
		accommodation domain.AccommodationVendors
		teams         domain.Teams
	)
	errs := make([]error, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = s.transport.Do(ctx, http.MethodGet, "/dictionaries/catering", nil, &catering)
	}()
	go func() {
		defer wg.Done()
		errs[1] = s.transport.Do(ctx, http.MethodGet, "/dictionaries/accommodation", nil, &accommodation)
	}()
	go func() {
		defer wg.Done()
		errs[2] = s.transport.Do(ctx, http.MethodGet, "/dictionaries/team", nil, &teams)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.catering = catering
	s.accommodation = accommodation
	s.teams = teams
	s.refreshTeamMembersLocked()
	s.loaded = true
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventDictionariesSynced})
	s.logger.Info("dictionaries synced",
		zap.Int("catering", len(catering)),
		zap.Int("accommodation", len(accommodation)),
		zap.Int("teams", len(teams)))
	return nil
}

// CreateCateringVendor creates a vendor remotely and mirrors the canonical
// response.
func (s *Store) CreateCateringVendor(ctx context.Context, payload domain.VendorPayload) (domain.CateringVendor, error) {
	var created domain.CateringVendor
	if err := s.transport.Do(ctx, http.MethodPost, "/dictionaries/catering", payload, &created); err != nil {
		return domain.CateringVendor{}, err
	}

	s.mu.Lock()
	s.catering = upsertCatering(s.catering, created)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventCateringChanged, Kind: events.ChangeCreated, EntityID: created.ID})
	return created, nil
}

// UpdateCateringVendor updates a vendor remotely and replaces the mirrored
// entry by id, leaving all other entries as they were.
func (s *Store) UpdateCateringVendor(ctx context.Context, id string, payload domain.VendorPayload) (domain.CateringVendor, error) {
	var updated domain.CateringVendor
	if err := s.transport.Do(ctx, http.MethodPut, "/dictionaries/catering/"+id, payload, &updated); err != nil {
		return domain.CateringVendor{}, err
	}

	s.mu.Lock()
	s.catering = upsertCatering(s.catering, updated)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventCateringChanged, Kind: events.ChangeUpdated, EntityID: updated.ID})
	return updated, nil
}

// DeleteCateringVendor deletes a vendor remotely and drops the mirrored
// entry.
func (s *Store) DeleteCateringVendor(ctx context.Context, id string) error {
	if err := s.transport.Do(ctx, http.MethodDelete, "/dictionaries/catering/"+id, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.catering = removeCatering(s.catering, id)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventCateringChanged, Kind: events.ChangeDeleted, EntityID: id})
	return nil
}

// CreateAccommodationVendor creates a vendor remotely and mirrors the
// canonical response.
func (s *Store) CreateAccommodationVendor(ctx context.Context, payload domain.VendorPayload) (domain.AccommodationVendor, error) {
	var created domain.AccommodationVendor
	if err := s.transport.Do(ctx, http.MethodPost, "/dictionaries/accommodation", payload, &created); err != nil {
		return domain.AccommodationVendor{}, err
	}

	s.mu.Lock()
	s.accommodation = upsertAccommodation(s.accommodation, created)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventAccommodationChanged, Kind: events.ChangeCreated, EntityID: created.ID})
	return created, nil
}

// UpdateAccommodationVendor updates a vendor remotely and replaces the
// mirrored entry by id.
func (s *Store) UpdateAccommodationVendor(ctx context.Context, id string, payload domain.VendorPayload) (domain.AccommodationVendor, error) {
	var updated domain.AccommodationVendor
	if err := s.transport.Do(ctx, http.MethodPut, "/dictionaries/accommodation/"+id, payload, &updated); err != nil {
		return domain.AccommodationVendor{}, err
	}

	s.mu.Lock()
	s.accommodation = upsertAccommodation(s.accommodation, updated)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventAccommodationChanged, Kind: events.ChangeUpdated, EntityID: updated.ID})
	return updated, nil
}

// DeleteAccommodationVendor deletes a vendor remotely and drops the mirrored
// entry.
func (s *Store) DeleteAccommodationVendor(ctx context.Context, id string) error {
	if err := s.transport.Do(ctx, http.MethodDelete, "/dictionaries/accommodation/"+id, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.accommodation = removeAccommodation(s.accommodation, id)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventAccommodationChanged, Kind: events.ChangeDeleted, EntityID: id})
	return nil
}

// CreateTeam creates a team remotely and mirrors the canonical response,
// member list included.
func (s *Store) CreateTeam(ctx context.Context, name string) (domain.Team, error) {
	var created domain.Team
	if err := s.transport.Do(ctx, http.MethodPost, "/dictionaries/team", domain.TeamPayload{Name: name}, &created); err != nil {
		return domain.Team{}, err
	}

	s.mu.Lock()
	s.upsertTeamLocked(created)
	s.refreshTeamMembersLocked()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventTeamsChanged, Kind: events.ChangeCreated, EntityID: created.ID})
	return created, nil
}

// UpdateTeam renames a team remotely and mirrors the canonical response. The
// server's member list replaces the local one, which also fixes up any
// placeholder entry synthesized for this id.
func (s *Store) UpdateTeam(ctx context.Context, id, name string) (domain.Team, error) {
	var updated domain.Team
	if err := s.transport.Do(ctx, http.MethodPut, "/dictionaries/team/"+id, domain.TeamPayload{Name: name}, &updated); err != nil {
		return domain.Team{}, err
	}

	s.mu.Lock()
	s.upsertTeamLocked(updated)
	s.refreshTeamMembersLocked()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventTeamsChanged, Kind: events.ChangeUpdated, EntityID: updated.ID})
	return updated, nil
}

// CreateTeamMember creates a member remotely and reconciles the hierarchy
// against the server's canonical response.
func (s *Store) CreateTeamMember(ctx context.Context, payload domain.TeamMemberPayload) (domain.TeamMember, error) {
	var created domain.TeamMember
	if err := s.transport.Do(ctx, http.MethodPost, "/dictionaries/team/members", payload, &created); err != nil {
		return domain.TeamMember{}, err
	}

	s.mu.Lock()
	s.placeMemberLocked(created)
	s.refreshTeamMembersLocked()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventTeamsChanged, Kind: events.ChangeCreated, EntityID: created.ID})
	return created, nil
}

// UpdateTeamMember updates a member remotely. The response's team id is
// authoritative and may differ from the team that initiated the call — a
// member move — so the member is re-placed from scratch.
func (s *Store) UpdateTeamMember(ctx context.Context, id string, payload domain.TeamMemberPayload) (domain.TeamMember, error) {
	var updated domain.TeamMember
	if err := s.transport.Do(ctx, http.MethodPut, "/dictionaries/team/members/"+id, payload, &updated); err != nil {
		return domain.TeamMember{}, err
	}

	s.mu.Lock()
	s.placeMemberLocked(updated)
	s.refreshTeamMembersLocked()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventTeamsChanged, Kind: events.ChangeMoved, EntityID: updated.ID})
	return updated, nil
}

// DeleteTeamMember deletes a member remotely and removes it from every team.
func (s *Store) DeleteTeamMember(ctx context.Context, id string) error {
	if err := s.transport.Do(ctx, http.MethodDelete, "/dictionaries/team/members/"+id, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.removeMemberLocked(id)
	s.refreshTeamMembersLocked()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.EventTeamsChanged, Kind: events.ChangeDeleted, EntityID: id})
	return nil
}

// PersistState writes the current snapshot to the durable cache. A no-op
// when no cache is configured.
func (s *Store) PersistState(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked(ctx)
}

// placeMemberLocked applies the server's canonical member: it is removed
// from every team first, then inserted into the team the server named. An
// unknown team id gets a placeholder entry instead of dropping the member;
// the next full fetch corrects the placeholder's name.
func (s *Store) placeMemberLocked(member domain.TeamMember) {
	s.removeMemberLocked(member.ID)
	if member.TeamID == nil {
		return
	}
	for i := range s.teams {
		if s.teams[i].ID == *member.TeamID {
			s.teams[i].Members = append(s.teams[i].Members, member)
			return
		}
	}
	s.logger.Debug("synthesizing placeholder team", zap.String("team_id", *member.TeamID))
	s.teams = append(s.teams, domain.Team{ID: *member.TeamID, Name: "", Members: []domain.TeamMember{member}})
}

func (s *Store) removeMemberLocked(id string) {
	for i := range s.teams {
		members := s.teams[i].Members[:0:0]
		for _, m := range s.teams[i].Members {
			if m.ID != id {
				members = append(members, m)
			}
		}
		s.teams[i].Members = members
	}
}

func (s *Store) upsertTeamLocked(team domain.Team) {
	for i := range s.teams {
		if s.teams[i].ID == team.ID {
			s.teams[i] = team
			return
		}
	}
	s.teams = append(s.teams, team)
}

// refreshTeamMembersLocked recomputes the derived member view from the team
// hierarchy. Nothing else may write teamMembers.
func (s *Store) refreshTeamMembersLocked() {
	s.teamMembers = flattenMembers(s.teams, s.collator)
}

// flattenMembers flattens all teams' member lists, stamps each member with
// its owning team id, and sorts by name under Polish collation.
func flattenMembers(teams []domain.Team, collator *collate.Collator) []domain.TeamMember {
	flat := make([]domain.TeamMember, 0)
	for i := range teams {
		teamID := teams[i].ID
		for _, member := range teams[i].Members {
			member.TeamID = &teamID
			flat = append(flat, member)
		}
	}
	sort.SliceStable(flat, func(a, b int) bool {
		return collator.CompareString(flat[a].Name, flat[b].Name) < 0
	})
	return flat
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.cache == nil {
		return
	}
	raw, err := encodeSnapshot(snapshot{
		CateringCompanies:      s.catering,
		AccommodationCompanies: s.accommodation,
		Teams:                  s.teams,
		TeamMembers:            s.teamMembers,
	})
	if err != nil {
		s.logger.Warn("encode dictionary snapshot failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, StorageKey, raw); err != nil {
		s.logger.Warn("persist dictionary snapshot failed", zap.Error(err))
	}
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func upsertCatering(vendors domain.CateringVendors, vendor domain.CateringVendor) domain.CateringVendors {
	for i := range vendors {
		if vendors[i].ID == vendor.ID {
			vendors[i] = vendor
			return vendors
		}
	}
	return append(vendors, vendor)
}

func removeCatering(vendors domain.CateringVendors, id string) domain.CateringVendors {
	out := vendors[:0:0]
	for _, v := range vendors {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}

func upsertAccommodation(vendors domain.AccommodationVendors, vendor domain.AccommodationVendor) domain.AccommodationVendors {
	for i := range vendors {
		if vendors[i].ID == vendor.ID {
			vendors[i] = vendor
			return vendors
		}
	}
	return append(vendors, vendor)
}

func removeAccommodation(vendors domain.AccommodationVendors, id string) domain.AccommodationVendors {
	out := vendors[:0:0]
	for _, v := range vendors {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}

func copyTeams(teams domain.Teams) []domain.Team {
	out := make([]domain.Team, len(teams))
	for i, team := range teams {
		team.Members = append([]domain.TeamMember(nil), team.Members...)
		out[i] = team
	}
	return out
}
