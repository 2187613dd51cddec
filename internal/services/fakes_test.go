package services

import (
	"context"
	"job-portal/internal/domain"
	"sync"
)

type dispatchCall struct {
	method  string
	userIDs []string
	exclude []string
	event   domain.NotificationEvent
}

// recordingDispatcher treats every user in online as connected.
type recordingDispatcher struct {
	mu     sync.Mutex
	online map[string]bool
	calls  []dispatchCall
}

func newRecordingDispatcher(online ...string) *recordingDispatcher {
	d := &recordingDispatcher{online: map[string]bool{}}
	for _, id := range online {
		d.online[id] = true
	}
	return d
}

func (d *recordingDispatcher) record(c dispatchCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, c)
}

func (d *recordingDispatcher) getCalls() []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dispatchCall(nil), d.calls...)
}

func (d *recordingDispatcher) SendToUser(userID string, event domain.NotificationEvent) bool {
	d.record(dispatchCall{method: "user", userIDs: []string{userID}, event: event})
	return d.online[userID]
}

func (d *recordingDispatcher) SendToMany(userIDs []string, event domain.NotificationEvent) []domain.DeliveryResult {
	d.record(dispatchCall{method: "many", userIDs: userIDs, event: event})
	results := make([]domain.DeliveryResult, 0, len(userIDs))
	for _, id := range userIDs {
		results = append(results, domain.DeliveryResult{UserID: id, Delivered: d.online[id]})
	}
	return results
}

func (d *recordingDispatcher) Broadcast(event domain.NotificationEvent, exclude []string) []domain.DeliveryResult {
	d.record(dispatchCall{method: "broadcast", exclude: exclude, event: event})
	skip := map[string]bool{}
	for _, id := range exclude {
		skip[id] = true
	}
	var results []domain.DeliveryResult
	for id := range d.online {
		if !skip[id] {
			results = append(results, domain.DeliveryResult{UserID: id, Delivered: true})
		}
	}
	return results
}

type fakeUserRepo struct {
	users   map[string]*domain.User
	listErr error
	getErr  error
}

func (r *fakeUserRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	user, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) ListUserIDsByRole(_ context.Context, role domain.Role) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var ids []string
	for _, u := range r.users {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

type fakeApplicationRepo struct {
	applicants map[string][]string
	err        error
}

func (r *fakeApplicationRepo) ListApplicantIDs(_ context.Context, jobID string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.applicants[jobID], nil
}
