package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
)

// Store bundles one in-memory table per aggregate.
type Store struct {
	Identities     *IdentityRepository
	AppUsers       *AppUserRepository
	ServicePlans   *ServicePlanRepository
	SupportTickets *SupportTicketRepository
	TicketComments *TicketCommentRepository
	Emails         *EmailRepository
	Reports        *ReportRepository
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Identities:     &IdentityRepository{rows: map[string]domain.IdentityUser{}},
		AppUsers:       &AppUserRepository{t: newTable(func(u *domain.AppUser) *domain.AuditInfo { return &u.AuditInfo })},
		ServicePlans:   NewServicePlanRepository(),
		SupportTickets: &SupportTicketRepository{t: newTable(func(s *domain.SupportTicket) *domain.AuditInfo { return &s.AuditInfo })},
		TicketComments: &TicketCommentRepository{t: newTable(func(c *domain.TicketComment) *domain.AuditInfo { return &c.AuditInfo })},
		Emails:         &EmailRepository{t: newTable(func(e *domain.Email) *domain.AuditInfo { return &e.AuditInfo })},
		Reports: &ReportRepository{
			templates: newTable(func(r *domain.ReportTemplate) *domain.AuditInfo { return &r.AuditInfo }),
			reports:   newTable(func(r *domain.Report) *domain.AuditInfo { return &r.AuditInfo }),
		},
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

// IdentityRepository implements repository.IdentityRepository.
type IdentityRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.IdentityUser
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)

func (r *IdentityRepository) Create(_ context.Context, user *domain.IdentityUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.rows[user.ID] = *user
	return nil
}

func (r *IdentityRepository) GetByID(_ context.Context, id string) (*domain.IdentityUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *IdentityRepository) GetByUsernameOrEmail(_ context.Context, login string) (*domain.IdentityUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.rows {
		if strings.EqualFold(user.Username, login) || strings.EqualFold(user.Email, login) {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *IdentityRepository) Exists(_ context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.rows {
		if strings.EqualFold(user.Username, username) || strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *IdentityRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	r.rows[id] = user
	return nil
}

// AppUserRepository implements repository.AppUserRepository.
type AppUserRepository struct {
	t *table[domain.AppUser]
}

var _ repository.AppUserRepository = (*AppUserRepository)(nil)

func (r *AppUserRepository) Insert(_ context.Context, user *domain.AppUser) error {
	r.t.insert(user.ID, *user)
	return nil
}

func (r *AppUserRepository) Update(_ context.Context, user *domain.AppUser) error {
	return r.t.update(user.ID, func(stored *domain.AppUser) {
		stored.DisplayName = user.DisplayName
		stored.Email = user.Email
		stored.Phone = user.Phone
		stored.UserType = user.UserType
		stored.Active = user.Active
		stored.ModifiedAt = user.ModifiedAt
		stored.ModifiedBy = user.ModifiedBy
	})
}

func (r *AppUserRepository) GetByID(_ context.Context, id string) (*domain.AppUser, error) {
	user, err := r.t.get(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *AppUserRepository) GetByIdentityUserID(_ context.Context, identityUserID string) (*domain.AppUser, error) {
	user, ok := r.t.find(func(u *domain.AppUser) bool { return u.IdentityUserID == identityUserID })
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *AppUserRepository) Query(_ context.Context, filter repository.AppUserFilter, page repository.PageRequest) (repository.Page[domain.AppUser], error) {
	match := func(u *domain.AppUser) bool {
		if len(filter.UserTypes) > 0 {
			found := false
			for _, t := range filter.UserTypes {
				if u.UserType == t {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		if filter.Active != nil && u.Active != *filter.Active {
			return false
		}
		if filter.SearchTerm != "" && !contains(u.DisplayName, filter.SearchTerm) &&
			!contains(u.Username, filter.SearchTerm) && !contains(u.Email, filter.SearchTerm) {
			return false
		}
		return true
	}
	return r.t.query(match, func(u *domain.AppUser) string { return u.ID }, false, page), nil
}

func (r *AppUserRepository) Delete(_ context.Context, id, actorID string, at time.Time) error {
	return r.t.softDelete(id, actorID, at)
}

// ServicePlanRepository implements repository.ServicePlanRepository.
type ServicePlanRepository struct {
	t    *table[domain.ServicePlan]
	subs *table[domain.UserServicePlan]
	mu   sync.Mutex
}

var _ repository.ServicePlanRepository = (*ServicePlanRepository)(nil)

// NewServicePlanRepository returns an empty plan repository.
func NewServicePlanRepository() *ServicePlanRepository {
	return &ServicePlanRepository{
		t:    newTable(func(p *domain.ServicePlan) *domain.AuditInfo { return &p.AuditInfo }),
		subs: newTable(func(s *domain.UserServicePlan) *domain.AuditInfo { return &s.AuditInfo }),
	}
}

func (r *ServicePlanRepository) Insert(_ context.Context, plan *domain.ServicePlan) error {
	r.t.insert(plan.ID, *plan)
	return nil
}

func (r *ServicePlanRepository) Update(_ context.Context, plan *domain.ServicePlan) error {
	return r.t.update(plan.ID, func(stored *domain.ServicePlan) {
		stored.Name = plan.Name
		stored.Description = plan.Description
		stored.Price = plan.Price
		stored.ModifiedAt = plan.ModifiedAt
		stored.ModifiedBy = plan.ModifiedBy
	})
}

func (r *ServicePlanRepository) GetByID(_ context.Context, id string) (*domain.ServicePlan, error) {
	plan, err := r.t.get(id)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *ServicePlanRepository) ExistsByName(_ context.Context, name, excludeID string) (bool, error) {
	_, ok := r.t.find(func(p *domain.ServicePlan) bool {
		return strings.EqualFold(p.Name, name) && p.ID != excludeID
	})
	return ok, nil
}

func (r *ServicePlanRepository) Query(_ context.Context, filter repository.ServicePlanFilter, page repository.PageRequest) (repository.Page[domain.ServicePlan], error) {
	match := func(p *domain.ServicePlan) bool {
		if filter.SearchTerm != "" && !contains(p.Name, filter.SearchTerm) && !contains(p.Description, filter.SearchTerm) {
			return false
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			return false
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			return false
		}
		return true
	}
	return r.t.query(match, func(p *domain.ServicePlan) string { return p.ID }, false, page), nil
}

func (r *ServicePlanRepository) Delete(_ context.Context, id, actorID string, at time.Time) error {
	return r.t.softDelete(id, actorID, at)
}

func (r *ServicePlanRepository) Subscribe(_ context.Context, sub *domain.UserServicePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.t.update(sub.ServicePlanID, func(stored *domain.ServicePlan) { stored.UsageCount++ }); err != nil {
		return err
	}
	r.subs.insert(sub.ID, *sub)
	return nil
}

func (r *ServicePlanRepository) HasSubscription(_ context.Context, appUserID, planID string) (bool, error) {
	_, ok := r.subs.find(func(s *domain.UserServicePlan) bool {
		return s.AppUserID == appUserID && s.ServicePlanID == planID
	})
	return ok, nil
}

func (r *ServicePlanRepository) ListSubscriptions(_ context.Context, appUserID string) ([]domain.UserServicePlan, error) {
	page := r.subs.query(func(s *domain.UserServicePlan) bool { return s.AppUserID == appUserID },
		func(s *domain.UserServicePlan) string { return s.ID }, false, repository.PageRequest{Take: 1000})
	return page.Items, nil
}

// SupportTicketRepository implements repository.SupportTicketRepository.
type SupportTicketRepository struct {
	t *table[domain.SupportTicket]
}

var _ repository.SupportTicketRepository = (*SupportTicketRepository)(nil)

func (r *SupportTicketRepository) Insert(_ context.Context, ticket *domain.SupportTicket) error {
	r.t.insert(ticket.ID, *ticket)
	return nil
}

func (r *SupportTicketRepository) Update(_ context.Context, ticket *domain.SupportTicket) error {
	return r.t.update(ticket.ID, func(stored *domain.SupportTicket) {
		stored.Subject = ticket.Subject
		stored.Description = ticket.Description
		stored.Status = ticket.Status
		stored.AssigneeID = ticket.AssigneeID
		stored.ClosedAt = ticket.ClosedAt
		stored.ModifiedAt = ticket.ModifiedAt
		stored.ModifiedBy = ticket.ModifiedBy
	})
}

func (r *SupportTicketRepository) GetByID(_ context.Context, id string) (*domain.SupportTicket, error) {
	ticket, err := r.t.get(id)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *SupportTicketRepository) Query(_ context.Context, filter repository.SupportTicketFilter, page repository.PageRequest) (repository.Page[domain.SupportTicket], error) {
	match := func(s *domain.SupportTicket) bool {
		if filter.OwnerID != nil && s.OwnerID != *filter.OwnerID {
			return false
		}
		if filter.AssigneeID != nil && (s.AssigneeID == nil || *s.AssigneeID != *filter.AssigneeID) {
			return false
		}
		if len(filter.Statuses) > 0 {
			found := false
			for _, st := range filter.Statuses {
				if s.Status == st {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		if filter.SearchTerm != "" && !contains(s.Subject, filter.SearchTerm) && !contains(s.Description, filter.SearchTerm) {
			return false
		}
		if filter.CreatedFrom != nil && s.CreatedAt.Before(*filter.CreatedFrom) {
			return false
		}
		if filter.CreatedTo != nil && s.CreatedAt.After(*filter.CreatedTo) {
			return false
		}
		return true
	}
	return r.t.query(match, func(s *domain.SupportTicket) string { return s.ID }, false, page), nil
}

func (r *SupportTicketRepository) Delete(_ context.Context, id, actorID string, at time.Time) error {
	return r.t.softDelete(id, actorID, at)
}

// TicketCommentRepository implements repository.TicketCommentRepository.
type TicketCommentRepository struct {
	t *table[domain.TicketComment]
}

var _ repository.TicketCommentRepository = (*TicketCommentRepository)(nil)

func (r *TicketCommentRepository) Insert(_ context.Context, comment *domain.TicketComment) error {
	r.t.insert(comment.ID, *comment)
	return nil
}

func (r *TicketCommentRepository) GetByID(_ context.Context, id string) (*domain.TicketComment, error) {
	comment, err := r.t.get(id)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *TicketCommentRepository) ListByTicket(_ context.Context, ticketID string, page repository.PageRequest) (repository.Page[domain.TicketComment], error) {
	return r.t.query(func(c *domain.TicketComment) bool { return c.TicketID == ticketID },
		func(c *domain.TicketComment) string { return c.ID }, true, page), nil
}

// EmailRepository implements repository.EmailRepository.
type EmailRepository struct {
	t *table[domain.Email]
}

var _ repository.EmailRepository = (*EmailRepository)(nil)

func (r *EmailRepository) Insert(_ context.Context, email *domain.Email) error {
	r.t.insert(email.ID, *email)
	return nil
}

func (r *EmailRepository) GetByID(_ context.Context, id string) (*domain.Email, error) {
	email, err := r.t.get(id)
	if err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *EmailRepository) Query(_ context.Context, filter repository.EmailFilter, page repository.PageRequest) (repository.Page[domain.Email], error) {
	match := func(e *domain.Email) bool {
		if filter.RecipientUserID != nil && e.RecipientUserID != *filter.RecipientUserID {
			return false
		}
		if filter.EmailType != nil && e.EmailType != *filter.EmailType {
			return false
		}
		if filter.IsSuccess != nil && e.IsSuccess != *filter.IsSuccess {
			return false
		}
		if filter.SentFrom != nil && e.SentAt.Before(*filter.SentFrom) {
			return false
		}
		if filter.SentTo != nil && e.SentAt.After(*filter.SentTo) {
			return false
		}
		return true
	}
	return r.t.query(match, func(e *domain.Email) string { return e.ID }, false, page), nil
}

// Count returns the number of recorded emails.
func (r *EmailRepository) Count() int {
	return r.t.query(nil, func(e *domain.Email) string { return e.ID }, false, repository.PageRequest{Take: 1}).Total
}

// ReportRepository implements repository.ReportRepository.
type ReportRepository struct {
	templates *table[domain.ReportTemplate]
	reports   *table[domain.Report]
}

var _ repository.ReportRepository = (*ReportRepository)(nil)

func (r *ReportRepository) InsertTemplate(_ context.Context, tmpl *domain.ReportTemplate) error {
	r.templates.insert(tmpl.ID, *tmpl)
	return nil
}

func (r *ReportRepository) GetTemplate(_ context.Context, id string) (*domain.ReportTemplate, error) {
	tmpl, err := r.templates.get(id)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *ReportRepository) FindTemplateByReportType(_ context.Context, reportType domain.ReportType) (*domain.ReportTemplate, error) {
	page := r.templates.query(func(t *domain.ReportTemplate) bool { return t.ReportType == reportType },
		func(t *domain.ReportTemplate) string { return t.ID }, false, repository.PageRequest{Take: 1})
	if len(page.Items) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &page.Items[0], nil
}

func (r *ReportRepository) ListTemplates(_ context.Context, page repository.PageRequest) (repository.Page[domain.ReportTemplate], error) {
	return r.templates.query(nil, func(t *domain.ReportTemplate) string { return t.ID }, false, page), nil
}

func (r *ReportRepository) InsertReport(_ context.Context, report *domain.Report) error {
	r.reports.insert(report.ID, *report)
	return nil
}

func (r *ReportRepository) GetReport(_ context.Context, id string) (*domain.Report, error) {
	report, err := r.reports.get(id)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) ListReportsByTicket(_ context.Context, ticketID string, page repository.PageRequest) (repository.Page[domain.Report], error) {
	return r.reports.query(func(rp *domain.Report) bool { return rp.TicketID == ticketID },
		func(rp *domain.Report) string { return rp.ID }, false, page), nil
}

// Count returns the number of stored reports.
func (r *ReportRepository) Count() int {
	return r.reports.query(nil, func(rp *domain.Report) string { return rp.ID }, false, repository.PageRequest{Take: 1}).Total
}
