package trigger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/server/models"
)

// memLetters is an in-memory LetterStore with the same filter and
// compare-and-set semantics as the SQL repository.
type memLetters struct {
	mu      sync.Mutex
	letters map[string]*models.Letter
	order   []string

	findDateErr       error
	findInactivityErr error
	casErr            map[string]error
	casCalls          int

	// staleReads makes candidate queries ignore status, imitating a second
	// pass that read the letter before the first pass committed.
	staleReads bool
}

func newMemLetters(letters ...*models.Letter) *memLetters {
	m := &memLetters{letters: map[string]*models.Letter{}, casErr: map[string]error{}}
	for _, l := range letters {
		m.letters[l.ID] = l
		m.order = append(m.order, l.ID)
	}
	return m
}

func (m *memLetters) candidates(match func(*models.Letter) bool) []*models.Letter {
	var out []*models.Letter
	for _, id := range m.order {
		l := m.letters[id]
		if (m.staleReads || l.Status == models.StatusPending) && match(l) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out
}

func (m *memLetters) FindDateTriggerCandidates(ctx context.Context, now time.Time) ([]*models.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findDateErr != nil {
		return nil, m.findDateErr
	}
	return m.candidates(func(l *models.Letter) bool {
		return l.TriggerType == models.TriggerDate && l.ScheduledAt != nil && !l.ScheduledAt.After(now)
	}), nil
}

func (m *memLetters) FindInactivityTriggerCandidates(ctx context.Context) ([]*models.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findInactivityErr != nil {
		return nil, m.findInactivityErr
	}
	return m.candidates(func(l *models.Letter) bool {
		return l.TriggerType == models.TriggerInactivity
	}), nil
}

func (m *memLetters) CompareAndSetSent(ctx context.Context, letterID string, sentAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.casCalls++
	if err := m.casErr[letterID]; err != nil {
		return false, err
	}
	l, ok := m.letters[letterID]
	if !ok || l.Status != models.StatusPending {
		return false, nil
	}
	l.Status = models.StatusSent
	at := sentAt
	l.SentAt = &at
	return true, nil
}

func (m *memLetters) get(id string) models.Letter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.letters[id]
}

type memUsers struct {
	users map[string]*models.User
	err   map[string]error
	calls int
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[string]*models.User{}, err: map[string]error{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.calls++
	if err := m.err[id]; err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type notification struct {
	to       string
	letterID string
}

type recordingNotifier struct {
	mu     sync.Mutex
	calls  []notification
	failOn map[string]error
	hook   func(ctx context.Context, letterID string) error
}

func (n *recordingNotifier) SendReleaseNotification(ctx context.Context, to string, owner *models.User, letter *models.Letter) error {
	n.mu.Lock()
	n.calls = append(n.calls, notification{to: to, letterID: letter.ID})
	n.mu.Unlock()

	if n.hook != nil {
		if err := n.hook(ctx, letter.ID); err != nil {
			return err
		}
	}
	if err := n.failOn[letter.ID]; err != nil {
		return err
	}
	return nil
}

func (n *recordingNotifier) letterIDs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(n.calls))
	for _, c := range n.calls {
		ids = append(ids, c.letterID)
	}
	sort.Strings(ids)
	return ids
}

var errSMTP = errors.New("smtp: 451 try again later")

func ptr[T any](v T) *T { return &v }

func dateLetter(id, userID string, at time.Time) *models.Letter {
	return &models.Letter{
		ID: id, UserID: userID, Title: "t", TriggerType: models.TriggerDate,
		ScheduledAt: ptr(at), Status: models.StatusPending,
	}
}

func idleLetter(id, userID string, days int) *models.Letter {
	return &models.Letter{
		ID: id, UserID: userID, Title: "t", TriggerType: models.TriggerInactivity,
		InactivityDays: ptr(days), Status: models.StatusPending,
	}
}

func owner(id string, lastActivity time.Time) *models.User {
	return &models.User{ID: id, Name: "Owner " + id, FamilyEmail: id + "-family@example.com", LastActivityAt: lastActivity}
}
