package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// fakeAssignmentRepo keeps assignments and entries in memory with the same
// conditional-update semantics as the GORM implementation.
type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uint]*models.Assignment
	listErr     error
	nextID      uint
}

func newFakeAssignmentRepo(assignments ...models.Assignment) *fakeAssignmentRepo {
	repo := &fakeAssignmentRepo{assignments: make(map[uint]*models.Assignment), nextID: 1}
	for i := range assignments {
		assignment := assignments[i]
		if assignment.ID == 0 {
			assignment.ID = repo.nextID
		}
		if assignment.ID >= repo.nextID {
			repo.nextID = assignment.ID + 1
		}
		repo.assignments[assignment.ID] = &assignment
	}
	return repo
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment.ID = f.nextID
	f.nextID++
	stored := *assignment
	f.assignments[assignment.ID] = &stored
	return nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return *assignment, nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.assignments[assignment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entries := stored.Entries
	updated := *assignment
	updated.Entries = entries
	f.assignments[assignment.ID] = &updated
	return nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.assignments, id)
	return nil
}

func (f *fakeAssignmentRepo) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Assignment
	for _, assignment := range f.assignments {
		if filter.MentorID != nil && assignment.MentorID != *filter.MentorID {
			continue
		}
		if filter.Status != "" && assignment.Status != filter.Status {
			continue
		}
		result = append(result, *assignment)
	}
	return result, int64(len(result)), nil
}

func (f *fakeAssignmentRepo) ListOpenForUser(ctx context.Context, userID uint) ([]models.Assignment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Assignment
	for _, assignment := range f.assignments {
		if !assignment.IsOpen() {
			continue
		}
		for _, entry := range assignment.Entries {
			if entry.UserID == userID && entry.IsEligible() {
				result = append(result, *assignment)
				break
			}
		}
	}
	return result, nil
}

func (f *fakeAssignmentRepo) AddEntry(ctx context.Context, entry *models.AssignmentEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.assignments[entry.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if entry.Status == "" {
		entry.Status = models.EntryStatusAssigned
	}
	assignment.Entries = append(assignment.Entries, *entry)
	return nil
}

func (f *fakeAssignmentRepo) GetEntry(ctx context.Context, assignmentID, userID uint) (models.AssignmentEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.entryRef(assignmentID, userID)
	if entry == nil {
		return models.AssignmentEntry{}, gorm.ErrRecordNotFound
	}
	return *entry, nil
}

func (f *fakeAssignmentRepo) StartEntry(ctx context.Context, assignmentID, userID uint, startedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.entryRef(assignmentID, userID)
	if entry == nil || entry.Status != models.EntryStatusAssigned {
		return false, nil
	}
	entry.Status = models.EntryStatusInProgress
	entry.StartedAt = &startedAt
	return true, nil
}

func (f *fakeAssignmentRepo) CancelEntry(ctx context.Context, assignmentID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.entryRef(assignmentID, userID)
	if entry == nil || entry.IsTerminal() {
		return false, nil
	}
	entry.Status = models.EntryStatusCancelled
	return true, nil
}

func (f *fakeAssignmentRepo) IncrementAttempts(ctx context.Context, assignmentID, userID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.entryRef(assignmentID, userID)
	if entry == nil {
		return 0, gorm.ErrRecordNotFound
	}
	entry.Attempts++
	return entry.Attempts, nil
}

func (f *fakeAssignmentRepo) CompleteEntry(ctx context.Context, assignmentID, userID uint, completion repository.EntryCompletion) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.entryRef(assignmentID, userID)
	if entry == nil || entry.IsTerminal() {
		return false, nil
	}
	completedAt := completion.CompletedAt
	entry.Status = models.EntryStatusCompleted
	entry.CompletedAt = &completedAt
	entry.Score = completion.Score
	entry.SubmissionID = completion.SubmissionID
	entry.Attempts++
	return true, nil
}

func (f *fakeAssignmentRepo) SetEntryFeedback(ctx context.Context, assignmentID, userID uint, feedback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.entryRef(assignmentID, userID)
	if entry == nil {
		return gorm.ErrRecordNotFound
	}
	entry.Feedback = feedback
	return nil
}

func (f *fakeAssignmentRepo) MarkCompletedIfAllEntriesDone(ctx context.Context, assignmentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.assignments[assignmentID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	for _, entry := range assignment.Entries {
		if entry.Status != models.EntryStatusCompleted {
			return false, nil
		}
	}
	if assignment.Status == models.AssignmentStatusCompleted {
		return false, nil
	}
	assignment.Status = models.AssignmentStatusCompleted
	return true, nil
}

func (f *fakeAssignmentRepo) EntriesForUser(ctx context.Context, userID uint) ([]models.AssignmentEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.AssignmentEntry
	for _, assignment := range f.assignments {
		for _, entry := range assignment.Entries {
			if entry.UserID == userID {
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}

func (f *fakeAssignmentRepo) EntriesForMentor(ctx context.Context, mentorID uint) ([]models.AssignmentEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.AssignmentEntry
	for _, assignment := range f.assignments {
		if assignment.MentorID != mentorID {
			continue
		}
		entries = append(entries, assignment.Entries...)
	}
	return entries, nil
}

func (f *fakeAssignmentRepo) CountByMentor(ctx context.Context, mentorID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, assignment := range f.assignments {
		if assignment.MentorID == mentorID {
			total++
		}
	}
	return total, nil
}

func (f *fakeAssignmentRepo) entryRef(assignmentID, userID uint) *models.AssignmentEntry {
	assignment, ok := f.assignments[assignmentID]
	if !ok {
		return nil
	}
	for i := range assignment.Entries {
		if assignment.Entries[i].UserID == userID {
			return &assignment.Entries[i]
		}
	}
	return nil
}

// recordingNotifier captures pipeline events for assertions.
type recordingNotifier struct {
	mu             sync.Mutex
	assigned       []uint
	completed      []uint
	fullyCompleted []uint
	flagged        []uint
}

func (n *recordingNotifier) AssignmentAssigned(ctx context.Context, userID uint, assignment models.Assignment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, userID)
}

func (n *recordingNotifier) AssignmentCompleted(ctx context.Context, userID uint, assignment models.Assignment, score int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, userID)
}

func (n *recordingNotifier) AssignmentFullyCompleted(ctx context.Context, assignment models.Assignment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fullyCompleted = append(n.fullyCompleted, assignment.ID)
}

func (n *recordingNotifier) SubmissionFlagged(ctx context.Context, submission models.Submission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.flagged = append(n.flagged, submission.ID)
}
