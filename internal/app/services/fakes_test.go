package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/repositories"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// In-memory fakes for the repository interfaces. They reproduce the
// persistence semantics the services rely on, in particular the conditional
// assignment update and the partial unique index on unread chat
// notifications, so concurrency properties can be exercised without a
// database.

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindStaff(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var staff []*models.User
	for _, u := range r.users {
		if u.RoleType.IsStaff() && u.IsActive {
			cp := *u
			staff = append(staff, &cp)
		}
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })
	return staff, nil
}

// --- cases ---

type fakeCaseRepo struct {
	mu    sync.Mutex
	users *fakeUserRepo
	cases map[int64]*models.Case
}

func newFakeCaseRepo(users *fakeUserRepo, cases ...*models.Case) *fakeCaseRepo {
	r := &fakeCaseRepo{users: users, cases: make(map[int64]*models.Case)}
	for _, cs := range cases {
		r.cases[cs.ID] = cs
	}
	return r
}

// copyCase resolves the applicant and owner relations the same way the SQL
// join does.
func (r *fakeCaseRepo) copyCase(cs *models.Case) *models.Case {
	cp := *cs
	if u, ok := r.users.users[cp.ApplicantID]; ok {
		uc := *u
		cp.Applicant = &uc
	}
	if cp.AssignedAdminID != nil {
		id := *cp.AssignedAdminID
		cp.AssignedAdminID = &id
		if u, ok := r.users.users[id]; ok {
			uc := *u
			cp.AssignedAdmin = &uc
		}
	}
	return &cp
}

func (r *fakeCaseRepo) GetByID(_ context.Context, id int64) (*models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.cases[id]
	if !ok {
		return nil, apperrors.ErrCaseNotFound
	}
	return r.copyCase(cs), nil
}

func (r *fakeCaseRepo) GetByApplicantID(_ context.Context, applicantID int64) (*models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cs := range r.cases {
		if cs.ApplicantID == applicantID {
			return r.copyCase(cs), nil
		}
	}
	return nil, apperrors.ErrCaseNotFound
}

func (r *fakeCaseRepo) matches(cs *models.Case, filter repositories.CaseListFilter) bool {
	if filter.Status != "" && string(cs.Status) != filter.Status {
		return false
	}
	if filter.ApplicantID != nil && cs.ApplicantID != *filter.ApplicantID {
		return false
	}
	if filter.AssignedAdminID != nil {
		if cs.AssignedAdminID == nil || *cs.AssignedAdminID != *filter.AssignedAdminID {
			return false
		}
	}
	return true
}

func (r *fakeCaseRepo) List(_ context.Context, filter repositories.CaseListFilter) ([]*models.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Case
	for _, cs := range r.cases {
		if r.matches(cs, filter) {
			result = append(result, r.copyCase(cs))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeCaseRepo) Count(_ context.Context, filter repositories.CaseListFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, cs := range r.cases {
		if r.matches(cs, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeCaseRepo) UpdateFields(_ context.Context, id int64, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.cases[id]
	if !ok {
		return apperrors.ErrCaseNotFound
	}
	for field, raw := range fields {
		value, _ := raw.(string)
		switch field {
		case "full_name":
			cs.FullName = value
		case "phone":
			cs.Phone = value
		case "address":
			cs.Address = value
		case "status":
			cs.Status = models.CaseStatus(value)
		case "internal_note":
			cs.InternalNote = value
		}
	}
	cs.UpdatedAt = time.Now()
	return nil
}

func (r *fakeCaseRepo) TryAssign(_ context.Context, caseID, staffID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.cases[caseID]
	if !ok {
		return false, nil
	}
	if cs.AssignedAdminID != nil {
		return false, nil
	}
	cs.AssignedAdminID = &staffID
	return true, nil
}

// --- messages ---

type fakeMessageRepo struct {
	mu       sync.Mutex
	cases    *fakeCaseRepo
	nextID   int64
	messages []*models.Message
}

func newFakeMessageRepo(cases *fakeCaseRepo) *fakeMessageRepo {
	return &fakeMessageRepo{cases: cases, nextID: 1}
}

func (r *fakeMessageRepo) Create(_ context.Context, message *models.Message) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = r.nextID
	r.nextID++
	message.CreatedAt = time.Now().Add(time.Duration(message.ID) * time.Millisecond)
	cp := *message
	r.messages = append(r.messages, &cp)
	return message.ID, nil
}

func (r *fakeMessageRepo) ListByCase(_ context.Context, caseID int64) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Message
	for _, m := range r.messages {
		if m.CaseID == caseID {
			cp := *m
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeMessageRepo) MarkReadExceptSender(_ context.Context, caseID, viewerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.CaseID == caseID && m.SenderID != viewerID {
			m.IsRead = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) unreadCounts(include func(cs *models.Case) bool) map[int64]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases.mu.Lock()
	defer r.cases.mu.Unlock()

	counts := make(map[int64]int)
	for _, m := range r.messages {
		if m.SenderRole != models.RoleApplicant || m.IsRead {
			continue
		}
		cs, ok := r.cases.cases[m.CaseID]
		if !ok || !include(cs) {
			continue
		}
		counts[m.CaseID]++
	}
	return counts
}

func (r *fakeMessageRepo) UnreadApplicantCounts(_ context.Context) (map[int64]int, error) {
	return r.unreadCounts(func(*models.Case) bool { return true }), nil
}

func (r *fakeMessageRepo) UnreadApplicantCountsUnassigned(_ context.Context) (map[int64]int, error) {
	return r.unreadCounts(func(cs *models.Case) bool { return cs.AssignedAdminID == nil }), nil
}

func (r *fakeMessageRepo) UnreadApplicantCountsForOwner(_ context.Context, staffID int64) (map[int64]int, error) {
	return r.unreadCounts(func(cs *models.Case) bool {
		return cs.AssignedAdminID != nil && *cs.AssignedAdminID == staffID
	}), nil
}

// --- notifications ---

type fakeNotificationRepo struct {
	mu            sync.Mutex
	nextID        int64
	notifications []*models.Notification

	// markReadOnIncrementOnce makes the next increment behave as if a
	// concurrent reader marked the row read between lookup and update: the
	// row flips to read and the increment reports zero affected rows.
	markReadOnIncrementOnce bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.Type == models.NotificationTypeChatMessage && n.CaseID != nil {
		for _, existing := range r.notifications {
			if existing.Type == models.NotificationTypeChatMessage && !existing.IsRead &&
				existing.RecipientID == n.RecipientID && existing.CaseID != nil && *existing.CaseID == *n.CaseID {
				return 0, &pgconn.PgError{Code: "23505", ConstraintName: "uq_notifications_unread_chat"}
			}
		}
	}

	n.ID = r.nextID
	r.nextID++
	if n.Count == 0 {
		n.Count = 1
	}
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return n.ID, nil
}

func (r *fakeNotificationRepo) GetUnreadChatNotification(_ context.Context, recipientID, caseID int64) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.Type == models.NotificationTypeChatMessage && !n.IsRead &&
			n.RecipientID == recipientID && n.CaseID != nil && *n.CaseID == caseID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) IncrementChatNotification(_ context.Context, id int64, message string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && !n.IsRead {
			if r.markReadOnIncrementOnce {
				r.markReadOnIncrementOnce = false
				n.IsRead = true
				return false, nil
			}
			n.Count++
			n.Message = message
			n.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID int64, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Notification
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		cp := *n
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	if int(offset) >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeNotificationRepo) CountByRecipient(_ context.Context, recipientID int64, unreadOnly bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	return r.CountByRecipient(ctx, recipientID, true)
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, recipientID, notificationID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.IsRead = true
			n.UpdatedAt = time.Now()
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) byType(recipientID int64, t models.NotificationType) []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && n.Type == t {
			cp := *n
			result = append(result, &cp)
		}
	}
	return result
}

// --- audit ---

type fakeAuditRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries []*models.AuditLog
	failErr error
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{nextID: 1}
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *models.AuditLog) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	entry.ID = r.nextID
	r.nextID++
	entry.CreatedAt = time.Now()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return entry.ID, nil
}

func (r *fakeAuditRepo) List(_ context.Context, offset uint64, limit int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.AuditLog
	for _, e := range r.entries {
		cp := *e
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if int(offset) >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeAuditRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

// --- files ---

type fakeFileRepo struct {
	mu      sync.Mutex
	nextID  int64
	files   map[int64]*models.File
	failErr error
}

func newFakeFileRepo(files ...*models.File) *fakeFileRepo {
	r := &fakeFileRepo{nextID: 1000, files: make(map[int64]*models.File)}
	for _, f := range files {
		r.files[f.ID] = f
	}
	return r
}

func (r *fakeFileRepo) Create(_ context.Context, file *models.File) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return 0, r.failErr
	}
	file.ID = r.nextID
	r.nextID++
	file.CreatedAt = time.Now()
	cp := *file
	r.files[file.ID] = &cp
	return file.ID, nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id int64) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("File not found")
	}
	cp := *f
	return &cp, nil
}

// --- mailer ---

type fakeMailer struct {
	mu   sync.Mutex
	sent []string // "old->new" per delivery
	err  error
	done chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{done: make(chan struct{}, 16)}
}

func (m *fakeMailer) SendStatusChangeEmail(toEmail, toName, oldStatus, newStatus string) error {
	m.mu.Lock()
	m.sent = append(m.sent, oldStatus+"->"+newStatus)
	err := m.err
	m.mu.Unlock()
	m.done <- struct{}{}
	return err
}

// waitForSend blocks until a delivery attempt happened.
func (m *fakeMailer) waitForSend() bool {
	select {
	case <-m.done:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

// --- unread cache ---

type fakeUnreadCache struct {
	mu        sync.Mutex
	summaries map[int64]*dto.UnreadSummaryResponse
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{summaries: make(map[int64]*dto.UnreadSummaryResponse)}
}

func (c *fakeUnreadCache) Get(_ context.Context, userID int64) (*dto.UnreadSummaryResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaries[userID], nil
}

func (c *fakeUnreadCache) Set(_ context.Context, userID int64, summary *dto.UnreadSummaryResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries[userID] = summary
	return nil
}

func (c *fakeUnreadCache) Invalidate(_ context.Context, userIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.summaries, id)
	}
	return nil
}

// --- shared fixture ---

type testEnv struct {
	users         *fakeUserRepo
	cases         *fakeCaseRepo
	messages      *fakeMessageRepo
	notifications *fakeNotificationRepo
	audit         *fakeAuditRepo
	files         *fakeFileRepo
	mailer        *fakeMailer

	caseService         *CaseService
	chatService         *ChatService
	notificationService *NotificationService
	unreadService       *UnreadService
	auditService        *AuditService
}

var (
	applicantActor  = models.Actor{ID: 1, Role: models.RoleApplicant}
	applicant2Actor = models.Actor{ID: 2, Role: models.RoleApplicant}
	adminActor      = models.Actor{ID: 10, Role: models.RoleAdmin}
	admin2Actor     = models.Actor{ID: 11, Role: models.RoleAdmin}
	superActor      = models.Actor{ID: 20, Role: models.RoleSuperAdmin}
)

// newTestEnv builds two applicants with one case each, two admins and a
// superadmin. Both cases start unassigned.
func newTestEnv() *testEnv {
	users := newFakeUserRepo(
		&models.User{ID: 1, Email: "alice@example.com", FirstName: "Alice", LastName: "Aydin", RoleType: models.RoleApplicant, IsActive: true},
		&models.User{ID: 2, Email: "bora@example.com", FirstName: "Bora", LastName: "Bulut", RoleType: models.RoleApplicant, IsActive: true},
		&models.User{ID: 10, Email: "jane@staff.example.com", FirstName: "Jane", LastName: "Smith", RoleType: models.RoleAdmin, IsActive: true},
		&models.User{ID: 11, Email: "mark@staff.example.com", FirstName: "Mark", LastName: "Miller", RoleType: models.RoleAdmin, IsActive: true},
		&models.User{ID: 20, Email: "root@staff.example.com", FirstName: "Sue", LastName: "Park", RoleType: models.RoleSuperAdmin, IsActive: true},
	)
	now := time.Now()
	cases := newFakeCaseRepo(users,
		&models.Case{ID: 100, ApplicantID: 1, Status: models.CaseStatusSubmitted, FullName: "Alice Aydin", Phone: "+90 555 111 1111", CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-2 * time.Hour)},
		&models.Case{ID: 200, ApplicantID: 2, Status: models.CaseStatusPendingReview, FullName: "Bora Bulut", Phone: "+90 555 222 2222", CreatedAt: now.Add(-1 * time.Hour), UpdatedAt: now.Add(-1 * time.Hour)},
	)
	messages := newFakeMessageRepo(cases)
	notifications := newFakeNotificationRepo()
	audit := newFakeAuditRepo()
	files := newFakeFileRepo(&models.File{ID: 500, FileName: "transcript.pdf", FileURL: "http://localhost:8080/uploads/transcript.pdf", FileSize: 1024, FileType: "application/pdf", UploadedBy: 1})
	mailer := newFakeMailer()

	lgr := testLogger()
	notificationService := NewNotificationService(notifications, lgr)

	return &testEnv{
		users:               users,
		cases:               cases,
		messages:            messages,
		notifications:       notifications,
		audit:               audit,
		files:               files,
		mailer:              mailer,
		caseService:         NewCaseService(cases, users, audit, notificationService, mailer, lgr),
		chatService:         NewChatService(cases, messages, users, files, notificationService, nil, lgr),
		notificationService: notificationService,
		unreadService:       NewUnreadService(messages, nil, lgr),
		auditService:        NewAuditService(audit, lgr),
	}
}
