package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubUserRepo struct {
	byID      map[string]*domain.User
	seq       int
	createErr error
	rewardErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.byID {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := cloneUser(user)
	if clone.ID == "" {
		r.seq++
		clone.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.byID[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// List mirrors the OR semantics of the Mongo query.
func (r *stubUserRepo) List(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.byID {
		byAdmin := f.AdminID != "" && u.AdminID == f.AdminID
		byCity := f.CityKey != "" && u.CityKey() == f.CityKey && (f.Role == "" || u.Role == f.Role)
		if byAdmin || byCity {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) IDsByCity(_ context.Context, cityKey string) ([]string, error) {
	var ids []string
	for _, u := range r.byID {
		if u.CityKey() == cityKey {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, up ports.UserProfileUpdate) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if up.Username != nil {
		for _, other := range r.byID {
			if other.ID != id && other.Username == *up.Username {
				return nil, domain.ErrUserExists
			}
		}
		u.Username = *up.Username
	}
	if up.State != nil {
		u.State = *up.State
	}
	if up.District != nil {
		u.District = *up.District
	}
	if up.City != nil {
		u.City = *up.City
	}
	if up.PhoneNumber != nil {
		u.PhoneNumber = *up.PhoneNumber
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (r *stubUserRepo) AddRewardPoints(_ context.Context, id string, points int) error {
	if r.rewardErr != nil {
		return r.rewardErr
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RewardPoints += points
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

// seed stores u as-is and returns it.
func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	u.IsActive = true
	r.byID[u.ID] = cloneUser(u)
	return u
}

type stubCaseRepo struct {
	byID       map[string]*domain.Case
	seq        int
	createErr  error
	lastFilter ports.ListCasesFilter
}

func newStubCaseRepo() *stubCaseRepo {
	return &stubCaseRepo{byID: make(map[string]*domain.Case)}
}

func cloneCase(c *domain.Case) *domain.Case {
	clone := *c
	return &clone
}

func (r *stubCaseRepo) Create(_ context.Context, c *domain.Case) (*domain.Case, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.byID {
		if existing.Reference == c.Reference {
			return nil, fmt.Errorf("insert case: %w", domain.ErrDuplicateReference)
		}
	}
	r.seq++
	clone := cloneCase(c)
	clone.ID = fmt.Sprintf("case-%d", r.seq)
	r.byID[clone.ID] = clone
	return cloneCase(clone), nil
}

func (r *stubCaseRepo) FindByID(_ context.Context, id string) (*domain.Case, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	return cloneCase(c), nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubCaseRepo) List(_ context.Context, f ports.ListCasesFilter) ([]*domain.Case, int64, error) {
	r.lastFilter = f

	var reporters map[string]bool
	if f.ReporterIDs != nil {
		reporters = make(map[string]bool, len(f.ReporterIDs))
		for _, id := range f.ReporterIDs {
			reporters[id] = true
		}
	}

	var matched []*domain.Case
	for _, c := range r.byID {
		if f.ReporterID != "" && c.UserID != f.ReporterID {
			continue
		}
		if reporters != nil && !reporters[c.UserID] {
			continue
		}
		if f.AssignedTo != "" && c.AssignedTo != f.AssignedTo {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.Priority != "" && string(c.Priority) != f.Priority {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.Title), q) &&
				!strings.Contains(strings.ToLower(c.Description), q) &&
				!strings.Contains(strings.ToLower(c.Location), q) {
				continue
			}
		}
		matched = append(matched, cloneCase(c))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.Case{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubCaseRepo) mutate(id string, expectedVersion int64, fn func(c *domain.Case)) (*domain.Case, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	if expectedVersion != 0 && c.Version != expectedVersion {
		return nil, domain.ErrStaleVersion
	}
	fn(c)
	c.Version++
	return cloneCase(c), nil
}

func (r *stubCaseRepo) Assign(_ context.Context, id string, a domain.Assignment, expectedVersion int64) (*domain.Case, error) {
	return r.mutate(id, expectedVersion, func(c *domain.Case) {
		at := a.At
		c.AssignedTo = a.EmployeeID
		c.AssignedBy = a.AdminID
		c.AssignedAt = &at
		c.UpdatedAt = a.At
	})
}

func (r *stubCaseRepo) UpdateStatus(_ context.Context, id string, ch domain.StatusChange, expectedVersion int64) (*domain.Case, error) {
	return r.mutate(id, expectedVersion, func(c *domain.Case) {
		c.Status = ch.Status
		if ch.ResolvedAt != nil {
			at := *ch.ResolvedAt
			c.ResolvedAt = &at
		}
		c.UpdatedAt = ch.At
	})
}

type stubEventRepo struct {
	events []*domain.CaseEvent
}

func (r *stubEventRepo) Insert(_ context.Context, e *domain.CaseEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *stubEventRepo) ListByCase(_ context.Context, caseID string) ([]*domain.CaseEvent, error) {
	var out []*domain.CaseEvent
	for _, e := range r.events {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return out, nil
}

// syncRecorder writes events straight into the repo, standing in for the
// asynchronous dispatcher.
type syncRecorder struct {
	repo *stubEventRepo
}

func (r syncRecorder) Record(e domain.CaseEvent) {
	_ = r.repo.Insert(context.Background(), &e)
}

type stubRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Time)}
}

func (s *stubRevocations) Revoke(_ context.Context, userID string, at time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[userID] = at
	return nil
}

func (s *stubRevocations) RevokedAt(_ context.Context, userID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[userID], nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type fixture struct {
	users  *stubUserRepo
	cases  *stubCaseRepo
	events *stubEventRepo
	svc    *CaseService
}

func newFixture() *fixture {
	users := newStubUserRepo()
	cases := newStubCaseRepo()
	events := &stubEventRepo{}
	return &fixture{
		users:  users,
		cases:  cases,
		events: events,
		svc:    NewCaseService(cases, users, events, syncRecorder{repo: events}, 10, discardLogger),
	}
}

func (f *fixture) citizen(id, city string) *domain.User {
	return f.users.seed(&domain.User{ID: id, Username: id, Email: id + "@example.com", City: city, Role: domain.RoleCitizen})
}

func (f *fixture) admin(id, city string) *domain.User {
	return f.users.seed(&domain.User{ID: id, Username: id, Email: id + "@example.com", City: city, Role: domain.RoleAdmin})
}

func (f *fixture) employee(id, adminID string) *domain.User {
	return f.users.seed(&domain.User{ID: id, Username: id, Email: id + "@example.com", Role: domain.RoleEmployee, AdminID: adminID})
}

func caseInput(title string) ports.CreateCaseInput {
	return ports.CreateCaseInput{
		Title:       title,
		Description: "water pipe burst near the crossing",
		Category:    "water",
		Location:    "CG Road",
		Latitude:    "23.0225",
		Longitude:   "72.5714",
	}
}
