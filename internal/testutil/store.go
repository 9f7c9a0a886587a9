// Package testutil provides an in-memory implementation of the repositories
// that enforces the same constraints as the Postgres schema.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Seeded catalog ids, matching the seed migration.
const (
	RoleAdmin      int64 = 1
	RoleTechnician int64 = 2
	RoleUser       int64 = 3

	StateOpen     int64 = 1
	StateAssigned int64 = 2
	StateClosed   int64 = 3
)

type data struct {
	nextID   int64
	roles    []domain.Role
	catalogs map[domain.CatalogKind][]domain.CatalogEntry
	users    map[int64]domain.User
	tickets  map[int64]domain.Ticket
	comments []domain.Comment
	audit    []domain.AuditLogEntry
}

func (d *data) clone() *data {
	out := &data{
		nextID:   d.nextID,
		roles:    append([]domain.Role(nil), d.roles...),
		catalogs: make(map[domain.CatalogKind][]domain.CatalogEntry, len(d.catalogs)),
		users:    make(map[int64]domain.User, len(d.users)),
		tickets:  make(map[int64]domain.Ticket, len(d.tickets)),
		comments: append([]domain.Comment(nil), d.comments...),
		audit:    append([]domain.AuditLogEntry(nil), d.audit...),
	}
	for kind, entries := range d.catalogs {
		out.catalogs[kind] = append([]domain.CatalogEntry(nil), entries...)
	}
	for id, user := range d.users {
		out.users[id] = user
	}
	for id, ticket := range d.tickets {
		out.tickets[id] = ticket
	}
	return out
}

// Store is an in-memory database. Transactions snapshot the whole store and
// restore it when the unit of work fails.
type Store struct {
	mu   sync.Mutex
	data *data
	now  func() time.Time
}

// NewStore returns a store seeded with the default catalogs.
func NewStore() *Store {
	entry := func(id int64, name string) domain.CatalogEntry {
		return domain.CatalogEntry{ID: id, Name: name}
	}
	return &Store{
		now: time.Now,
		data: &data{
			nextID: 100,
			roles: []domain.Role{
				{ID: RoleAdmin, Name: "Administrador"},
				{ID: RoleTechnician, Name: "Técnico"},
				{ID: RoleUser, Name: "Usuario"},
			},
			catalogs: map[domain.CatalogKind][]domain.CatalogEntry{
				domain.CatalogState:       {entry(StateOpen, "Abierto"), entry(StateAssigned, "Asignado"), entry(StateClosed, "Cerrado")},
				domain.CatalogCriticality: {entry(1, "Baja"), entry(2, "Media"), entry(3, "Alta"), entry(4, "Crítica")},
				domain.CatalogCategory:    {entry(1, "Hardware"), entry(2, "Software")},
				domain.CatalogLocation:    {entry(1, "Edificio principal"), entry(2, "Almacén")},
			},
			users:   map[int64]domain.User{},
			tickets: map[int64]domain.Ticket{},
		},
	}
}

// WithinTx runs fn and rolls every change back when it fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// WithinReadSnapshot hands fn a frozen copy of the data. Writes made while fn
// runs are invisible to reads through that context.
func (s *Store) WithinReadSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	frozen := s.data.clone()
	s.mu.Unlock()
	return fn(context.WithValue(ctx, snapshotKey{}, frozen))
}

type snapshotKey struct{}

// read runs fn over the snapshot carried by ctx, or over live data under the lock.
func (s *Store) read(ctx context.Context, fn func(d *data)) {
	if frozen, ok := ctx.Value(snapshotKey{}).(*data); ok {
		fn(frozen)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// SetStates replaces the state catalog.
func (s *Store) SetStates(states ...domain.CatalogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.catalogs[domain.CatalogState] = append([]domain.CatalogEntry(nil), states...)
}

// AuditLog returns every audit entry in insertion order.
func (s *Store) AuditLog() []domain.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditLogEntry(nil), s.data.audit...)
}

// Comments returns every stored comment.
func (s *Store) Comments() []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Comment(nil), s.data.comments...)
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *Store) catalogHas(kind domain.CatalogKind, id *int64) bool {
	if id == nil {
		return true
	}
	for _, entry := range s.data.catalogs[kind] {
		if entry.ID == *id {
			return true
		}
	}
	return false
}

func (s *Store) catalogEntry(kind domain.CatalogKind, id *int64) *domain.CatalogEntry {
	if id == nil {
		return nil
	}
	for _, entry := range s.data.catalogs[kind] {
		if entry.ID == *id {
			e := entry
			return &e
		}
	}
	return nil
}

func (s *Store) userExists(id *int64) bool {
	if id == nil {
		return true
	}
	_, ok := s.data.users[*id]
	return ok
}

func (s *Store) roleExists(id *int64) bool {
	if id == nil {
		return true
	}
	for _, role := range s.data.roles {
		if role.ID == *id {
			return true
		}
	}
	return false
}

func foreignKeyError(constraint string) error {
	return apperrors.NewValidationError("referenced record does not exist", map[string]any{"constraint": constraint})
}

func uniqueError(field string) error {
	return apperrors.NewConflict(field+" already in use", map[string]any{"field": field})
}

// Tickets returns the ticket repository view of the store.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Catalogs returns the catalog repository view of the store.
func (s *Store) Catalogs() repository.CatalogRepository { return catalogRepo{s} }

// CommentsRepo returns the comment repository view of the store.
func (s *Store) CommentsRepo() repository.CommentRepository { return commentRepo{s} }

// Audit returns the audit repository view of the store.
func (s *Store) Audit() repository.AuditRepository { return auditRepo{s} }

// Dashboard returns the dashboard repository view of the store.
func (s *Store) Dashboard() repository.DashboardRepository { return dashboardRepo{s} }

type ticketRepo struct{ s *Store }

func (r ticketRepo) checkRefs(t *domain.Ticket) error {
	s := r.s
	switch {
	case !s.catalogHas(domain.CatalogCategory, t.CategoryID):
		return foreignKeyError("tickets_category_id_fkey")
	case !s.catalogHas(domain.CatalogLocation, t.LocationID):
		return foreignKeyError("tickets_location_id_fkey")
	case !s.catalogHas(domain.CatalogCriticality, t.CriticalityID):
		return foreignKeyError("tickets_criticality_id_fkey")
	case !s.catalogHas(domain.CatalogState, t.StateID):
		return foreignKeyError("tickets_state_id_fkey")
	case !s.userExists(t.AssigneeID):
		return foreignKeyError("tickets_assignee_id_fkey")
	case t.CloseDate != nil && t.CloseDate.Before(t.OpenDate):
		return apperrors.NewValidationError("value violates constraint", map[string]any{"constraint": "tickets_close_after_open"})
	}
	return nil
}

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkRefs(ticket); err != nil {
		return err
	}
	ticket.ID = r.s.id()
	ticket.CreatedAt = r.s.now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.data.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	if err := r.checkRefs(ticket); err != nil {
		return err
	}
	ticket.UpdatedAt = r.s.now()
	r.s.data.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.data.tickets, id)
	kept := r.s.data.comments[:0]
	for _, comment := range r.s.data.comments {
		if comment.TicketID != id {
			kept = append(kept, comment)
		}
	}
	r.s.data.comments = kept
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.data.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r ticketRepo) view(ticket domain.Ticket) domain.TicketView {
	s := r.s
	view := domain.TicketView{
		Ticket:      ticket,
		Category:    s.catalogEntry(domain.CatalogCategory, ticket.CategoryID),
		Location:    s.catalogEntry(domain.CatalogLocation, ticket.LocationID),
		Criticality: s.catalogEntry(domain.CatalogCriticality, ticket.CriticalityID),
		State:       s.catalogEntry(domain.CatalogState, ticket.StateID),
	}
	if ticket.AssigneeID != nil {
		if user, ok := s.data.users[*ticket.AssigneeID]; ok {
			summary := user.Summary()
			view.Assignee = &summary
		}
	}
	return view
}

func (r ticketRepo) GetView(_ context.Context, id int64) (*domain.TicketView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.data.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	view := r.view(ticket)
	return &view, nil
}

func (r ticketRepo) ListViews(_ context.Context, filter repository.TicketFilter) ([]domain.TicketView, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matches := func(want, got *int64) bool {
		return want == nil || (got != nil && *got == *want)
	}
	var selected []domain.Ticket
	for _, ticket := range r.s.data.tickets {
		if matches(filter.StateID, ticket.StateID) &&
			matches(filter.CriticalityID, ticket.CriticalityID) &&
			matches(filter.CategoryID, ticket.CategoryID) &&
			matches(filter.LocationID, ticket.LocationID) &&
			matches(filter.AssigneeID, ticket.AssigneeID) {
			selected = append(selected, ticket)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].ID > selected[j].ID })

	total := int64(len(selected))
	start := filter.Offset
	if start > len(selected) {
		start = len(selected)
	}
	end := len(selected)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	views := []domain.TicketView{}
	for _, ticket := range selected[start:end] {
		views = append(views, r.view(ticket))
	}
	return views, total, nil
}

func (r ticketRepo) CountUnresolvedByAssignee(_ context.Context, userID int64, closedStateIDs []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, ticket := range r.s.data.tickets {
		if ticket.AssigneeID == nil || *ticket.AssigneeID != userID {
			continue
		}
		closed := false
		for _, id := range closedStateIDs {
			if ticket.IsInState(id) {
				closed = true
				break
			}
		}
		if !closed {
			count++
		}
	}
	return count, nil
}

type userRepo struct{ s *Store }

func (r userRepo) checkUnique(user *domain.User) error {
	for id, existing := range r.s.data.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return uniqueError("email")
		}
		if existing.Name == user.Name {
			return uniqueError("name")
		}
	}
	if !r.s.roleExists(user.RoleID) {
		return foreignKeyError("users_role_id_fkey")
	}
	return nil
}

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.data.users[user.ID] = *user
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.UpdatedAt = r.s.now()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.data.users, id)
	for ticketID, ticket := range r.s.data.tickets {
		if ticket.AssigneeID != nil && *ticket.AssigneeID == id {
			ticket.AssigneeID = nil
			r.s.data.tickets[ticketID] = ticket
		}
	}
	for i, comment := range r.s.data.comments {
		if comment.AuthorID != nil && *comment.AuthorID == id {
			r.s.data.comments[i].AuthorID = nil
		}
	}
	for i, entry := range r.s.data.audit {
		if entry.UserID != nil && *entry.UserID == id {
			r.s.data.audit[i].UserID = nil
		}
	}
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.data.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.data.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]domain.User, 0, len(r.s.data.users))
	for _, user := range r.s.data.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type catalogRepo struct{ s *Store }

func (r catalogRepo) List(_ context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entries := append([]domain.CatalogEntry{}, r.s.data.catalogs[kind]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (r catalogRepo) GetByID(_ context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry := r.s.catalogEntry(kind, &id)
	if entry == nil {
		return nil, pgx.ErrNoRows
	}
	return entry, nil
}

func (r catalogRepo) ListRoles(_ context.Context) ([]domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Role{}, r.s.data.roles...), nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tickets[comment.TicketID]; !ok {
		return foreignKeyError("comments_ticket_id_fkey")
	}
	if !r.s.userExists(comment.AuthorID) {
		return foreignKeyError("comments_author_id_fkey")
	}
	comment.ID = r.s.id()
	r.s.data.comments = append(r.s.data.comments, *comment)
	return nil
}

func (r commentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := []domain.Comment{}
	for _, comment := range r.s.data.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Append(_ context.Context, entry *domain.AuditLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.userExists(entry.UserID) {
		return foreignKeyError("audit_log_user_id_fkey")
	}
	entry.ID = r.s.id()
	entry.CreatedAt = r.s.now()
	r.s.data.audit = append(r.s.data.audit, *entry)
	return nil
}

func (r auditRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.AuditLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := []domain.AuditLogEntry{}
	for _, entry := range r.s.data.audit {
		if entry.TicketID != nil && *entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type dashboardRepo struct{ s *Store }

func (r dashboardRepo) CountTickets(ctx context.Context) (int64, error) {
	var total int64
	r.s.read(ctx, func(d *data) { total = int64(len(d.tickets)) })
	return total, nil
}

func (r dashboardRepo) CountByState(ctx context.Context) ([]domain.NamedCount, error) {
	return r.count(ctx, domain.CatalogState, func(t domain.Ticket) *int64 { return t.StateID }), nil
}

func (r dashboardRepo) CountByCriticality(ctx context.Context) ([]domain.NamedCount, error) {
	return r.count(ctx, domain.CatalogCriticality, func(t domain.Ticket) *int64 { return t.CriticalityID }), nil
}

func (r dashboardRepo) count(ctx context.Context, kind domain.CatalogKind, ref func(domain.Ticket) *int64) []domain.NamedCount {
	result := []domain.NamedCount{}
	r.s.read(ctx, func(d *data) {
		for _, entry := range d.catalogs[kind] {
			item := domain.NamedCount{ID: entry.ID, Name: entry.Name}
			for _, ticket := range d.tickets {
				if id := ref(ticket); id != nil && *id == entry.ID {
					item.Count++
				}
			}
			result = append(result, item)
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
