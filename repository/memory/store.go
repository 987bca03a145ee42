// Package memory keeps every repository in process memory. It backs the
// workflow tests and `tasky serve --memory`.
package memory

import (
	"context"
	"sync"
	"time"

	"tasky/models"
	"tasky/repository"
)

type data struct {
	users         map[uint]models.User
	teams         map[uint]models.Team
	members       map[uint]models.TeamMember
	tasks         map[uint]models.Task
	comments      map[uint]models.Comment
	notifications map[uint]models.Notification

	nextID uint
}

func newData() data {
	return data{
		users:         map[uint]models.User{},
		teams:         map[uint]models.Team{},
		members:       map[uint]models.TeamMember{},
		tasks:         map[uint]models.Task{},
		comments:      map[uint]models.Comment{},
		notifications: map[uint]models.Notification{},
	}
}

func (d data) clone() data {
	c := newData()
	c.nextID = d.nextID
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.teams {
		c.teams[k] = v
	}
	for k, v := range d.members {
		c.members[k] = v
	}
	for k, v := range d.tasks {
		c.tasks[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	return c
}

// Store holds all rows. Rows are stored by value and never mutated in place,
// so a shallow map copy is a full snapshot.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    data
	now  func() time.Time

	// Fail, when set, is consulted before every write with the operation name
	// (for example "notifications.create"). A non-nil result aborts the write.
	Fail func(op string) error
}

func New() *Store {
	return &Store{d: newData(), now: time.Now}
}

// SetClock replaces the time source used for timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s: s} }
func (s *Store) Teams() *TeamRepository                 { return &TeamRepository{s: s} }
func (s *Store) Members() *MemberRepository             { return &MemberRepository{s: s} }
func (s *Store) Tasks() *TaskRepository                 { return &TaskRepository{s: s} }
func (s *Store) Comments() *CommentRepository           { return &CommentRepository{s: s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }

type txKey struct{}

// Do runs fn as one transaction: any error restores the state from before the call.
// Transactions are serialized, and writes outside a transaction wait for the
// running one to finish so a rollback never discards them. A nested Do joins
// the outer transaction.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// writeLock holds off other transactions for the duration of a write made
// outside of one. Call as defer s.writeLock(ctx)().
func (s *Store) writeLock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) id() uint {
	s.d.nextID++
	return s.d.nextID
}

func (s *Store) fail(op string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op)
}

func (s *Store) userExists(id uint) bool {
	_, ok := s.d.users[id]
	return ok
}

// Snapshot accessors for assertions

func (s *Store) AllNotifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0, len(s.d.notifications))
	for _, n := range sortedKeys(s.d.notifications) {
		out = append(out, s.d.notifications[n])
	}
	return out
}

func (s *Store) AllMembers(teamID uint) []models.TeamMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TeamMember
	for _, id := range sortedKeys(s.d.members) {
		if m := s.d.members[id]; m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.Pinger = (*Store)(nil)

func (s *Store) AllTeams() []models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Team, 0, len(s.d.teams))
	for _, id := range sortedKeys(s.d.teams) {
		out = append(out, s.d.teams[id])
	}
	return out
}

func (s *Store) AllTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, 0, len(s.d.tasks))
	for _, id := range sortedKeys(s.d.tasks) {
		out = append(out, s.d.tasks[id])
	}
	return out
}
