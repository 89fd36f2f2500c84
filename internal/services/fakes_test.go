package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"eventhub/internal/domain"
)

const testTimeout = 5 * time.Second

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	nextID    int
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserRepo) add(id, username, email string) *domain.User {
	u := &domain.User{ID: id, Username: username, Email: email}
	f.byID[id] = u
	return u
}

// fakeProfileRepo is an in-memory ProfileRepository keyed by user ID.
type fakeProfileRepo struct {
	byUser map[string]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byUser: make(map[string]*domain.Profile)}
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if p, ok := f.byUser[userID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, p *domain.Profile) (bool, error) {
	if existing, ok := f.byUser[p.UserID]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		f.byUser[p.UserID] = p
		return false, nil
	}
	p.ID = "profile-" + p.UserID
	f.byUser[p.UserID] = p
	return true, nil
}

// fakeRSVPRepo is an in-memory RSVPRepository with one row per (event, user).
type fakeRSVPRepo struct {
	rows   map[string]*domain.RSVP
	nextID int
	err    error
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{rows: make(map[string]*domain.RSVP), nextID: 1}
}

func pairKey(eventID, userID string) string { return eventID + "|" + userID }

func (f *fakeRSVPRepo) Upsert(ctx context.Context, r *domain.RSVP) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	key := pairKey(r.EventID, r.UserID)
	if existing, ok := f.rows[key]; ok {
		if r.Status != "" {
			existing.Status = r.Status
		}
		existing.UpdatedAt = r.UpdatedAt
		r.ID = existing.ID
		r.Status = existing.Status
		r.CreatedAt = existing.CreatedAt
		return false, nil
	}
	if r.Status == "" {
		r.Status = domain.RSVPGoing
	}
	r.ID = fmt.Sprintf("rsvp-%d", f.nextID)
	f.nextID++
	stored := *r
	f.rows[key] = &stored
	return true, nil
}

func (f *fakeRSVPRepo) GetByID(ctx context.Context, id string) (*domain.RSVP, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	if r, ok := f.rows[pairKey(eventID, userID)]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) UpdateStatus(ctx context.Context, r *domain.RSVP) error {
	existing, ok := f.rows[pairKey(r.EventID, r.UserID)]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Status = r.Status
	existing.UpdatedAt = r.UpdatedAt
	r.ID = existing.ID
	r.CreatedAt = existing.CreatedAt
	return nil
}

func (f *fakeRSVPRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	var out []*domain.RSVP
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRSVPRepo) ListByUserForEvents(ctx context.Context, userID string, eventIDs []string) (map[string]*domain.RSVP, error) {
	out := make(map[string]*domain.RSVP)
	for _, id := range eventIDs {
		if r, ok := f.rows[pairKey(id, userID)]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	rows, _ := f.ListByEventID(ctx, eventID)
	return len(rows), nil
}

// fakeReviewRepo is an in-memory ReviewRepository with one row per (event, user).
type fakeReviewRepo struct {
	rows   map[string]*domain.Review
	nextID int
	writes int
	err    error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{rows: make(map[string]*domain.Review), nextID: 1}
}

func (f *fakeReviewRepo) Upsert(ctx context.Context, r *domain.Review) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.writes++
	key := pairKey(r.EventID, r.UserID)
	if existing, ok := f.rows[key]; ok {
		existing.Rating = r.Rating
		existing.Comment = r.Comment
		existing.UpdatedAt = r.UpdatedAt
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
		return false, nil
	}
	r.ID = fmt.Sprintf("review-%d", f.nextID)
	f.nextID++
	stored := *r
	f.rows[key] = &stored
	return true, nil
}

func (f *fakeReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReviewRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Review, error) {
	out := []*domain.Review{}
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeInvitationRepo is an in-memory InvitationRepository with one row per (event, user).
type fakeInvitationRepo struct {
	rows   map[string]*domain.Invitation
	nextID int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{rows: make(map[string]*domain.Invitation), nextID: 1}
}

func (f *fakeInvitationRepo) CreateIfAbsent(ctx context.Context, inv *domain.Invitation) (bool, error) {
	key := pairKey(inv.EventID, inv.UserID)
	if existing, ok := f.rows[key]; ok {
		*inv = *existing
		return false, nil
	}
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.nextID++
	stored := *inv
	f.rows[key] = &stored
	return true, nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	for _, inv := range f.rows {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Invitation, error) {
	if inv, ok := f.rows[pairKey(eventID, userID)]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	out := []*domain.Invitation{}
	for _, inv := range f.rows {
		if inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeEventRepo is an in-memory EventRepository. It consults the invitation and RSVP fakes to apply
// visibility scopes and compute stats.
type fakeEventRepo struct {
	byID        map[string]*domain.Event
	nextID      int
	createErr   error
	invitations *fakeInvitationRepo
	rsvps       *fakeRSVPRepo
	reviews     *fakeReviewRepo
}

func newFakeEventRepo(inv *fakeInvitationRepo, rsvps *fakeRSVPRepo, reviews *fakeReviewRepo) *fakeEventRepo {
	return &fakeEventRepo{
		byID:        make(map[string]*domain.Event),
		nextID:      1,
		invitations: inv,
		rsvps:       rsvps,
		reviews:     reviews,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) visible(e *domain.Event, scope domain.VisibilityScope) bool {
	if e.IsPublic {
		return true
	}
	if scope.ViewerID == "" {
		return false
	}
	if e.OrganizerID == scope.ViewerID {
		return true
	}
	if _, ok := f.invitations.rows[pairKey(e.ID, scope.ViewerID)]; ok {
		return true
	}
	_, ok := f.rsvps.rows[pairKey(e.ID, scope.ViewerID)]
	return ok
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if !f.visible(e, filter.Scope) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.OrganizerID != "" && e.OrganizerID != filter.OrganizerID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	for k, r := range f.rsvps.rows {
		if r.EventID == id {
			delete(f.rsvps.rows, k)
		}
	}
	for k, r := range f.reviews.rows {
		if r.EventID == id {
			delete(f.reviews.rows, k)
		}
	}
	for k, inv := range f.invitations.rows {
		if inv.EventID == id {
			delete(f.invitations.rows, k)
		}
	}
	return nil
}

func (f *fakeEventRepo) Stats(ctx context.Context, ids []string) (map[string]domain.EventStats, error) {
	out := make(map[string]domain.EventStats, len(ids))
	for _, id := range ids {
		var st domain.EventStats
		st.RSVPCount, _ = f.rsvps.CountByEventID(ctx, id)
		reviews, _ := f.reviews.ListByEventID(ctx, id)
		st.ReviewCount = len(reviews)
		if len(reviews) > 0 {
			sum := 0
			for _, r := range reviews {
				sum += r.Rating
			}
			avg := domain.RoundRating(float64(sum) / float64(len(reviews)))
			st.AverageRating = &avg
		}
		out[id] = st
	}
	return out, nil
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	f.byID[e.ID] = e
	return e
}

// recordingDispatcher records enqueued jobs instead of running them.
type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []domain.Job
}

func (d *recordingDispatcher) Enqueue(ctx context.Context, jobType domain.JobType, entityID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, domain.Job{Type: jobType, EntityID: entityID})
}

func (d *recordingDispatcher) types() []domain.JobType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.JobType, len(d.jobs))
	for i, j := range d.jobs {
		out[i] = j.Type
	}
	return out
}

// fakeEmailService records what it was asked to send. failFor makes sends to that address fail.
type fakeEmailService struct {
	welcome     []*domain.WelcomeEmailData
	created     []*domain.EventEmailData
	updated     []*domain.EventEmailData
	rsvp        []*domain.RSVPEmailData
	review      []*domain.ReviewEmailData
	invitations []*domain.InvitationEmailData
	failFor     map[string]bool
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{failFor: map[string]bool{}}
}

var errSendFailed = errors.New("smtp unavailable")

func (f *fakeEmailService) check(to string) error {
	if f.failFor[to] || f.failFor["*"] {
		return errSendFailed
	}
	return nil
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, d *domain.WelcomeEmailData) error {
	if err := f.check(d.Email); err != nil {
		return err
	}
	f.welcome = append(f.welcome, d)
	return nil
}

func (f *fakeEmailService) SendEventCreated(ctx context.Context, d *domain.EventEmailData) error {
	if err := f.check(d.Email); err != nil {
		return err
	}
	f.created = append(f.created, d)
	return nil
}

func (f *fakeEmailService) SendEventUpdated(ctx context.Context, d *domain.EventEmailData) error {
	if err := f.check(d.Email); err != nil {
		return err
	}
	f.updated = append(f.updated, d)
	return nil
}

func (f *fakeEmailService) SendRSVPNotice(ctx context.Context, d *domain.RSVPEmailData) error {
	if err := f.check(d.Email); err != nil {
		return err
	}
	f.rsvp = append(f.rsvp, d)
	return nil
}

func (f *fakeEmailService) SendReviewNotice(ctx context.Context, d *domain.ReviewEmailData) error {
	if err := f.check(d.Email); err != nil {
		return err
	}
	f.review = append(f.review, d)
	return nil
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, d *domain.InvitationEmailData) error {
	if err := f.check(d.Email); err != nil {
		return err
	}
	f.invitations = append(f.invitations, d)
	return nil
}

// fixture wires every service to shared in-memory repositories.
type fixture struct {
	users       *fakeUserRepo
	profiles    *fakeProfileRepo
	events      *fakeEventRepo
	rsvps       *fakeRSVPRepo
	reviews     *fakeReviewRepo
	invitations *fakeInvitationRepo
	dispatcher  *recordingDispatcher
	resolver    domain.VisibilityResolver

	eventSvc      domain.EventService
	rsvpSvc       domain.RSVPService
	reviewSvc     domain.ReviewService
	invitationSvc domain.InvitationService
}

func newFixture() *fixture {
	f := &fixture{
		users:       newFakeUserRepo(),
		profiles:    newFakeProfileRepo(),
		rsvps:       newFakeRSVPRepo(),
		reviews:     newFakeReviewRepo(),
		invitations: newFakeInvitationRepo(),
		dispatcher:  &recordingDispatcher{},
	}
	f.events = newFakeEventRepo(f.invitations, f.rsvps, f.reviews)
	f.resolver = NewVisibilityResolver(f.events, f.invitations, f.rsvps)
	f.eventSvc = NewEventService(f.events, f.users, f.rsvps, f.resolver, f.dispatcher, testTimeout)
	f.rsvpSvc = NewRSVPService(f.rsvps, f.resolver, f.dispatcher, testTimeout)
	f.reviewSvc = NewReviewService(f.reviews, f.resolver, f.dispatcher, testTimeout)
	f.invitationSvc = NewInvitationService(f.invitations, f.users, f.resolver, f.dispatcher, testTimeout)

	f.users.add("alice", "alice", "alice@example.com")
	f.users.add("bob", "bob", "bob@example.com")
	f.users.add("carol", "carol", "carol@example.com")
	staff := f.users.add("staff", "staff", "staff@example.com")
	staff.IsStaff = true
	return f
}

func (f *fixture) addEvent(id, organizerID string, public bool) *domain.Event {
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	return f.events.add(&domain.Event{
		ID:          id,
		Title:       "Event " + id,
		OrganizerID: organizerID,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		IsPublic:    public,
	})
}

func asUser(id string) domain.Viewer { return domain.NewViewer(id, nil) }

var (
	alice     = asUser("alice")
	bob       = asUser("bob")
	carol     = asUser("carol")
	staffUser = domain.NewViewer("staff", []string{domain.RoleStaff})
	anonymous = domain.AnonymousViewer()
)
