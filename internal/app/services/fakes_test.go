package services

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/db"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

// In-memory fakes for the small store interfaces. Every fake is safe for
// concurrent use because notification goroutines outlive the request path.

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx)
}

type fakeNotifier struct {
	mu           sync.Mutex
	statusChange int
	missingInfo  int
	sponsorship  int
}

func (n *fakeNotifier) SendApplicationStatusChanged(toEmail, toName, term, status string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusChange++
	return nil
}

func (n *fakeNotifier) SendMissingInfoRequest(toEmail, toName string, items []string, note string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.missingInfo++
	return nil
}

func (n *fakeNotifier) SendSponsorshipReceived(toEmail, toName string, amountUSD float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sponsorship++
	return nil
}

type fakeStudentStore struct {
	mu       sync.Mutex
	students map[int64]*models.Student
}

func newFakeStudentStore(students ...*models.Student) *fakeStudentStore {
	s := &fakeStudentStore{students: make(map[int64]*models.Student)}
	for _, st := range students {
		s.students[st.ID] = st
	}
	return s
}

func (s *fakeStudentStore) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return st, nil
}

func (s *fakeStudentStore) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.students {
		if st.UserID == userID {
			return st, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (s *fakeStudentStore) GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeStudentStore) UpdateFunding(ctx context.Context, id int64, fundedUSD float64, sponsored bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	st.FundedUSD = fundedUSD
	st.Sponsored = sponsored
	return nil
}

func (s *fakeStudentStore) UpdateProfile(ctx context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[student.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	s.students[student.ID] = student
	return nil
}

func (s *fakeStudentStore) List(ctx context.Context, sponsored *bool, search string, offset uint64, limit int) ([]*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Student
	for _, st := range s.students {
		if sponsored != nil && st.Sponsored != *sponsored {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *fakeStudentStore) Count(ctx context.Context, sponsored *bool, search string) (int64, error) {
	list, _ := s.List(ctx, sponsored, search, 0, 0)
	return int64(len(list)), nil
}

type fakeApplicationStore struct {
	mu     sync.Mutex
	nextID int64
	apps   map[int64]*models.Application
}

func newFakeApplicationStore(apps ...*models.Application) *fakeApplicationStore {
	s := &fakeApplicationStore{apps: make(map[int64]*models.Application)}
	for _, a := range apps {
		s.apps[a.ID] = a
		if a.ID > s.nextID {
			s.nextID = a.ID
		}
	}
	return s
}

// Create mirrors the repository INSERT: only the inserted columns survive
// into the store, so a field silently dropped from the SQL shows up here.
func (s *fakeApplicationStore) Create(ctx context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	app.ID = s.nextID
	app.Status = models.ApplicationStatusPending
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	s.apps[app.ID] = &models.Application{
		ID:          app.ID,
		StudentID:   app.StudentID,
		Term:        app.Term,
		AmountLocal: app.AmountLocal,
		Currency:    app.Currency,
		FxRate:      app.FxRate,
		Notes:       app.Notes,
		Status:      app.Status,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
	return nil
}

func (s *fakeApplicationStore) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	return app, nil
}

func (s *fakeApplicationStore) GetByIDForUpdate(ctx context.Context, id int64) (*models.Application, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeApplicationStore) UpdateStatus(ctx context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; !ok {
		return apperrors.ErrApplicationNotFound
	}
	app.UpdatedAt = time.Now()
	s.apps[app.ID] = app
	return nil
}

func (s *fakeApplicationStore) List(ctx context.Context, studentID *int64, status models.ApplicationStatus, offset uint64, limit int) ([]*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Application
	for _, a := range s.apps {
		if studentID != nil && a.StudentID != *studentID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeApplicationStore) Count(ctx context.Context, studentID *int64, status models.ApplicationStatus) (int64, error) {
	list, _ := s.List(ctx, studentID, status, 0, 0)
	return int64(len(list)), nil
}

func (s *fakeApplicationStore) GetLatestApprovedByStudent(ctx context.Context, studentID int64) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Application
	for _, a := range s.apps {
		if a.StudentID != studentID || a.Status != models.ApplicationStatusApproved {
			continue
		}
		if latest == nil || (a.ApprovedAt != nil && latest.ApprovedAt != nil && a.ApprovedAt.After(*latest.ApprovedAt)) {
			latest = a
		}
	}
	if latest == nil {
		return nil, apperrors.ErrApplicationNotFound
	}
	return latest, nil
}

type fakeSponsorshipStore struct {
	mu           sync.Mutex
	nextID       int64
	sponsorships []*models.Sponsorship
}

func (s *fakeSponsorshipStore) Create(ctx context.Context, sp *models.Sponsorship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sponsorships {
		if existing.Reference == sp.Reference {
			return &pgconn.PgError{Code: "23505", ConstraintName: "sponsorships_reference_key"}
		}
	}
	s.nextID++
	sp.ID = s.nextID
	sp.CreatedAt = time.Now()
	s.sponsorships = append(s.sponsorships, sp)
	return nil
}

func (s *fakeSponsorshipStore) GetByID(ctx context.Context, id int64) (*models.Sponsorship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.sponsorships {
		if sp.ID == id {
			return sp, nil
		}
	}
	return nil, apperrors.ErrSponsorshipNotFound
}

func (s *fakeSponsorshipStore) GetByReference(ctx context.Context, reference string) (*models.Sponsorship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.sponsorships {
		if sp.Reference != "" && sp.Reference == reference {
			return sp, nil
		}
	}
	return nil, apperrors.ErrSponsorshipNotFound
}

func (s *fakeSponsorshipStore) ListByStudent(ctx context.Context, studentID int64) ([]*models.Sponsorship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Sponsorship
	for _, sp := range s.sponsorships {
		if sp.StudentID == studentID {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *fakeSponsorshipStore) ListByDonor(ctx context.Context, donorID int64) ([]*models.Sponsorship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Sponsorship
	for _, sp := range s.sponsorships {
		if sp.DonorID == donorID {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *fakeSponsorshipStore) ExistsActivePair(ctx context.Context, donorID, studentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.sponsorships {
		if sp.DonorID == donorID && sp.StudentID == studentID && sp.Status == models.SponsorshipStatusActive {
			return true, nil
		}
	}
	return false, nil
}

type fakeDisbursementStore struct {
	mu            sync.Mutex
	nextID        int64
	disbursements []*models.Disbursement
}

func (s *fakeDisbursementStore) Create(ctx context.Context, d *models.Disbursement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	d.ID = s.nextID
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	s.disbursements = append(s.disbursements, d)
	return nil
}

func (s *fakeDisbursementStore) GetByID(ctx context.Context, id int64) (*models.Disbursement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.disbursements {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, apperrors.ErrDisbursementNotFound
}

func (s *fakeDisbursementStore) ListByStudent(ctx context.Context, studentID int64) ([]*models.Disbursement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Disbursement
	for _, d := range s.disbursements {
		if d.StudentID == studentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeDisbursementStore) SumByStudent(ctx context.Context, studentID int64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, d := range s.disbursements {
		if d.StudentID == studentID {
			sum += d.AmountUSD
		}
	}
	return sum, nil
}

func (s *fakeDisbursementStore) UpdateStatus(ctx context.Context, id int64, status models.DisbursementStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.disbursements {
		if d.ID == id {
			d.Status = status
			return nil
		}
	}
	return apperrors.ErrDisbursementNotFound
}

type fakeDocumentStore struct {
	mu     sync.Mutex
	nextID int64
	docs   []*models.Document
}

func (s *fakeDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	doc.ID = s.nextID
	doc.CreatedAt = time.Now()
	s.docs = append(s.docs, doc)
	return nil
}

func (s *fakeDocumentStore) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (s *fakeDocumentStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range s.docs {
		if doc.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrResourceNotFound
}

func (s *fakeDocumentStore) ListByStudent(ctx context.Context, studentID int64) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Document
	for _, doc := range s.docs {
		if doc.StudentID == studentID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *fakeDocumentStore) DistinctTypesForApplication(ctx context.Context, studentID, applicationID int64) ([]models.DocumentType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[models.DocumentType]bool)
	var out []models.DocumentType
	for _, doc := range s.docs {
		if doc.StudentID != studentID {
			continue
		}
		if doc.ApplicationID != nil && *doc.ApplicationID != applicationID {
			continue
		}
		if !seen[doc.DocumentType] {
			seen[doc.DocumentType] = true
			out = append(out, doc.DocumentType)
		}
	}
	return out, nil
}

type fakeConversationStore struct {
	mu            sync.Mutex
	nextID        int64
	nextMessageID int64
	conversations []*models.Conversation
	messages      []*models.Message

	// createErr, when set, is returned by the next Create call once.
	createErr error
	// missPairOnce makes the next GetByPair miss, simulating a lookup that
	// ran before a concurrent insert landed.
	missPairOnce bool
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "conversations_donor_student_unique"}
}

func (s *fakeConversationStore) Create(ctx context.Context, c *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		err := s.createErr
		s.createErr = nil
		return err
	}
	for _, existing := range s.conversations {
		if existing.DonorID == c.DonorID && existing.StudentID == c.StudentID {
			return uniqueViolation()
		}
	}
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.conversations = append(s.conversations, c)
	return nil
}

func (s *fakeConversationStore) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.ErrConversationNotFound
}

func (s *fakeConversationStore) GetByPair(ctx context.Context, donorID, studentID int64) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missPairOnce {
		s.missPairOnce = false
		return nil, apperrors.ErrConversationNotFound
	}
	for _, c := range s.conversations {
		if c.DonorID == donorID && c.StudentID == studentID {
			return c, nil
		}
	}
	return nil, apperrors.ErrConversationNotFound
}

func (s *fakeConversationStore) ListByUser(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Conversation
	for _, c := range s.conversations {
		if c.DonorID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeConversationStore) Touch(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.ID == id {
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return apperrors.ErrConversationNotFound
}

func (s *fakeConversationStore) CreateMessage(ctx context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMessageID++
	m.ID = s.nextMessageID
	m.CreatedAt = time.Now()
	s.messages = append(s.messages, m)
	return nil
}

func (s *fakeConversationStore) ListMessages(ctx context.Context, conversationID int64, before, after *time.Time, limit int) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Newest first, matching the repository's ordering contract.
	var out []*models.Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.ConversationID != conversationID {
			continue
		}
		if before != nil && !m.CreatedAt.Before(*before) {
			continue
		}
		if after != nil && !m.CreatedAt.After(*after) {
			continue
		}
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeGate struct {
	mu    sync.Mutex
	pairs map[[2]int64]bool
	err   error
}

func (g *fakeGate) HasActiveSponsorship(ctx context.Context, donorID, studentID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	return g.pairs[[2]int64{donorID, studentID}], nil
}

type fakeFieldReviewStore struct {
	mu            sync.Mutex
	nextID        int64
	nextRequestID int64
	reviews       []*models.FieldReview
	requests      []*models.FieldReviewRequest
}

func (s *fakeFieldReviewStore) Create(ctx context.Context, review *models.FieldReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	review.ID = s.nextID
	review.Status = models.FieldReviewStatusPending
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	s.reviews = append(s.reviews, review)
	return nil
}

func (s *fakeFieldReviewStore) GetByID(ctx context.Context, id int64) (*models.FieldReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.ErrFieldReviewNotFound
}

func (s *fakeFieldReviewStore) GetLatestByApplication(ctx context.Context, applicationID int64) (*models.FieldReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if s.reviews[i].ApplicationID == applicationID {
			return s.reviews[i], nil
		}
	}
	return nil, apperrors.ErrFieldReviewNotFound
}

func (s *fakeFieldReviewStore) ListByOfficer(ctx context.Context, officerID int64) ([]*models.FieldReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.FieldReview
	for _, r := range s.reviews {
		if r.OfficerID == officerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeFieldReviewStore) Update(ctx context.Context, review *models.FieldReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reviews {
		if r.ID == review.ID {
			review.UpdatedAt = time.Now()
			s.reviews[i] = review
			return nil
		}
	}
	return apperrors.ErrFieldReviewNotFound
}

func (s *fakeFieldReviewStore) CreateInfoRequest(ctx context.Context, request *models.FieldReviewRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRequestID++
	request.ID = s.nextRequestID
	request.CreatedAt = time.Now()
	s.requests = append(s.requests, request)
	return nil
}

func (s *fakeFieldReviewStore) ListInfoRequests(ctx context.Context, fieldReviewID int64) ([]models.FieldReviewRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FieldReviewRequest
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].FieldReviewID == fieldReviewID {
			out = append(out, *s.requests[i])
		}
	}
	return out, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

func (s *fakeUserStore) UpdateLastLogin(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrResourceNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}
