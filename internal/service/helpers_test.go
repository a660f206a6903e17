package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/carecompanion/carecompanion-api/internal/metrics"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/notification"
	"github.com/carecompanion/carecompanion-api/internal/privacy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testPseudonymKey = "test-pseudonym-key"

// fakeEscalationStore keeps escalations in memory. Conditional updates hold
// the store lock, mirroring the row lock of the UPDATE ... WHERE STATUS = 'pending'.
type fakeEscalationStore struct {
	mu      sync.Mutex
	records map[string]models.EscalationRequest
	err     error
	// beforeApprove lets a test change the row between the service's read
	// and its conditional update.
	beforeApprove func(esc *models.EscalationRequest)
}

func newFakeEscalationStore() *fakeEscalationStore {
	return &fakeEscalationStore{records: map[string]models.EscalationRequest{}}
}

func (f *fakeEscalationStore) Create(ctx context.Context, esc *models.EscalationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records[esc.ID] = *esc
	return nil
}

func (f *fakeEscalationStore) GetByID(ctx context.Context, id string) (*models.EscalationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	esc, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	return &esc, nil
}

func (f *fakeEscalationStore) MarkConsentForPending(ctx context.Context, conversationID, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows int64
	for id, esc := range f.records {
		if esc.ConversationID == conversationID && esc.UserID == userID && esc.Status == models.EscalationStatusPending {
			esc.UserConsentGiven = true
			f.records[id] = esc
			rows++
		}
	}
	return rows, nil
}

func (f *fakeEscalationStore) MarkApprovedWithTx(ctx context.Context, tx *database.Transaction, id, reviewedBy string, reviewedAt int64, requireConsent bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	esc, ok := f.records[id]
	if ok && f.beforeApprove != nil {
		f.beforeApprove(&esc)
		f.records[id] = esc
	}
	if !ok || esc.Status != models.EscalationStatusPending || (requireConsent && !esc.UserConsentGiven) {
		return false, nil
	}
	esc.Status = models.EscalationStatusApproved
	esc.ReviewedTime = &reviewedAt
	esc.NotificationSentTime = &reviewedAt
	esc.ReviewedBy = &reviewedBy
	f.records[id] = esc
	return true, nil
}

func (f *fakeEscalationStore) MarkRejected(ctx context.Context, id, reviewedBy string, reviewedAt int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	esc, ok := f.records[id]
	if !ok || esc.Status != models.EscalationStatusPending {
		return false, nil
	}
	esc.Status = models.EscalationStatusRejected
	esc.ReviewedTime = &reviewedAt
	esc.ReviewedBy = &reviewedBy
	f.records[id] = esc
	return true, nil
}

func (f *fakeEscalationStore) ListPending(ctx context.Context, limit, offset int) ([]models.PendingEscalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pending := []models.PendingEscalation{}
	for _, esc := range f.records {
		if esc.Status == models.EscalationStatusPending {
			pending = append(pending, models.PendingEscalation{EscalationRequest: esc})
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedTime > pending[j].CreatedTime })
	if offset >= len(pending) {
		return []models.PendingEscalation{}, nil
	}
	end := offset + limit
	if end > len(pending) {
		end = len(pending)
	}
	return pending[offset:end], nil
}

func (f *fakeEscalationStore) CountPending(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, esc := range f.records {
		if esc.Status == models.EscalationStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeEscalationStore) get(t *testing.T, id string) models.EscalationRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	esc, ok := f.records[id]
	require.True(t, ok, "escalation %s not stored", id)
	return esc
}

func (f *fakeEscalationStore) snapshot() map[string]models.EscalationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]models.EscalationRequest, len(f.records))
	for k, v := range f.records {
		snap[k] = v
	}
	return snap
}

func (f *fakeEscalationStore) restore(snap map[string]models.EscalationRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = snap
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	f := &fakeUserStore{users: map[string]models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUserStore) UpdateEmergencyContact(ctx context.Context, userID string, consentGiven bool, name, phone *string, updated int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	u.ConsentGiven = consentGiven
	u.EmergencyContactName = name
	u.EmergencyContactPhone = phone
	u.UpdatedTime = updated
	f.users[userID] = u
	return true, nil
}

type fakeNotificationStore struct {
	mu   sync.Mutex
	logs []models.NotificationLog
	err  error
}

func (f *fakeNotificationStore) CreateWithTx(ctx context.Context, tx *database.Transaction, entry *models.NotificationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeNotificationStore) GetByEscalationID(ctx context.Context, escalationID string) ([]models.NotificationLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.NotificationLog{}
	for _, l := range f.logs {
		if l.EscalationID == escalationID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) all() []models.NotificationLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.NotificationLog(nil), f.logs...)
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditLog
	err     error
}

func (f *fakeAuditStore) Create(ctx context.Context, entry *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditStore) ListByUserHash(ctx context.Context, userIDHash string) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.AuditLog{}
	for _, e := range f.entries {
		if e.UserIDHash == userIDHash {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAuditStore) actions() []models.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AuditAction, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

// fakeTransactor serialises transactions and restores the stores on error
type fakeTransactor struct {
	mu            sync.Mutex
	escalations   *fakeEscalationStore
	notifications *fakeNotificationStore
}

func (f *fakeTransactor) WithTransaction(ctx context.Context, fn func(tx *database.Transaction) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	escSnap := f.escalations.snapshot()
	logSnap := f.notifications.all()

	if err := fn(nil); err != nil {
		f.escalations.restore(escSnap)
		f.notifications.mu.Lock()
		f.notifications.logs = logSnap
		f.notifications.mu.Unlock()
		return err
	}
	return nil
}

// countingDispatcher wraps the mock channel and counts deliveries
type countingDispatcher struct {
	mu    sync.Mutex
	inner notification.Dispatcher
	calls int
}

func (d *countingDispatcher) Channel() string { return d.inner.Channel() }

func (d *countingDispatcher) Dispatch(ctx context.Context, p *models.NotificationPayload) (string, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return d.inner.Dispatch(ctx, p)
}

func (d *countingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// TestSetup contains the in-memory collaborators of the services
type TestSetup struct {
	Escalations   *fakeEscalationStore
	Users         *fakeUserStore
	Notifications *fakeNotificationStore
	AuditStore    *fakeAuditStore
	Dispatcher    *countingDispatcher
	Metrics       *metrics.Metrics
	Pseudonymizer *privacy.Pseudonymizer
	Logger        *logrus.Logger
	Service       *EscalationService
	Profiles      *ProfileService
}

func defaultPolicy() EscalationPolicy {
	return EscalationPolicy{
		RiskThreshold: 0.6,
		RiskMood:      "risk",
		QueueLimit:    100,
	}
}

// NewTestSetup wires the services over in-memory stores
func NewTestSetup(t *testing.T, policy EscalationPolicy, users ...models.User) *TestSetup {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	pseudonymizer, err := privacy.NewPseudonymizer(testPseudonymKey)
	require.NoError(t, err)

	builder, err := notification.NewBuilder(nil)
	require.NoError(t, err)

	setup := &TestSetup{
		Escalations:   newFakeEscalationStore(),
		Users:         newFakeUserStore(users...),
		Notifications: &fakeNotificationStore{},
		AuditStore:    &fakeAuditStore{},
		Dispatcher:    &countingDispatcher{inner: notification.NewMockDispatcher(logger)},
		Metrics:       metrics.New(prometheus.NewRegistry()),
		Pseudonymizer: pseudonymizer,
		Logger:        logger,
	}

	audit := NewAuditService(setup.AuditStore, pseudonymizer, setup.Metrics, logger)
	setup.Service = NewEscalationService(EscalationDeps{
		Escalations:   setup.Escalations,
		Users:         setup.Users,
		Notifications: setup.Notifications,
		Transactor:    &fakeTransactor{escalations: setup.Escalations, notifications: setup.Notifications},
		Builder:       builder,
		Dispatcher:    setup.Dispatcher,
		Audit:         audit,
		Metrics:       setup.Metrics,
	}, policy, logger)
	setup.Profiles = NewProfileService(setup.Users, audit, logger)

	return setup
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func testUser() models.User {
	return models.User{
		ID:                    "user-1",
		Email:                 "alex@example.com",
		Name:                  "Alex",
		ConsentGiven:          true,
		EmergencyContactName:  strPtr("Sam"),
		EmergencyContactPhone: strPtr("+15550100"),
	}
}

func riskInput() *models.CreateEscalationInput {
	return &models.CreateEscalationInput{
		UserID:                 "user-1",
		ConversationID:         "conv-1",
		MessageContent:         "I don't want to be here anymore",
		Mood:                   "risk",
		RiskScore:              0.85,
		UserHasStandingConsent: true,
	}
}
