package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockTask is a mock implementation of Task
type MockTask struct {
	mock.Mock
}

func (m *MockTask) Run(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockLifecycleRepository is a mock implementation of LifecycleRepository
type MockLifecycleRepository struct {
	mock.Mock
}

func (m *MockLifecycleRepository) MarkExpired(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLifecycleRepository) MarkRenewalDue(ctx context.Context, asOf time.Time, window time.Duration) (int64, error) {
	args := m.Called(ctx, asOf, window)
	return args.Get(0).(int64), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockTask := new(MockTask)
	mockTask.On("Run", mock.Anything).Return(nil)

	worker := NewWorker(mockTask, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	// Stop worker
	worker.Stop()
	wg.Wait()

	// Verify Run was called at least once
	mockTask.AssertCalled(t, "Run", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockTask := new(MockTask)
	mockTask.On("Run", mock.Anything).Return(nil)

	worker := NewWorker(mockTask, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(150 * time.Millisecond)

	// Cancel context
	cancel()
	wg.Wait()

	mockTask.AssertCalled(t, "Run", mock.Anything)
}

// TestWorker_RunsImmediately tests the first run happens before the first tick
func TestWorker_RunsImmediately(t *testing.T) {
	mockTask := new(MockTask)
	mockTask.On("Run", mock.Anything).Return(nil)

	worker := NewWorker(mockTask, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockTask.AssertNumberOfCalls(t, "Run", 1)
}

// TestWorker_TaskErrorDoesNotStop tests the worker keeps polling after a task error
func TestWorker_TaskErrorDoesNotStop(t *testing.T) {
	mockTask := new(MockTask)
	mockTask.On("Run", mock.Anything).Return(errors.New("sweep failed"))

	worker := NewWorker(mockTask, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(180 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	// Immediate run plus at least two ticks
	assert.GreaterOrEqual(t, len(mockTask.Calls), 3)
}

// TestLifecycleSweeper_Run tests both transitions are applied with the sweep time
func TestLifecycleSweeper_Run(t *testing.T) {
	mockRepo := new(MockLifecycleRepository)

	asOf := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	mockRepo.On("MarkExpired", mock.Anything, asOf).Return(int64(2), nil)
	mockRepo.On("MarkRenewalDue", mock.Anything, asOf, window).Return(int64(5), nil)

	sweeper := NewLifecycleSweeperWithClock(mockRepo, window, func() time.Time { return asOf })
	err := sweeper.Run(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestLifecycleSweeper_ExpiredError tests the sweep aborts when expiry marking fails
func TestLifecycleSweeper_ExpiredError(t *testing.T) {
	mockRepo := new(MockLifecycleRepository)

	mockRepo.On("MarkExpired", mock.Anything, mock.Anything).Return(int64(0), errors.New("database error"))

	sweeper := NewLifecycleSweeper(mockRepo, 30*24*time.Hour)
	err := sweeper.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to mark expired documents")
	mockRepo.AssertNotCalled(t, "MarkRenewalDue", mock.Anything, mock.Anything, mock.Anything)
}

// TestLifecycleSweeper_RenewalDueError tests renewal marking errors are surfaced
func TestLifecycleSweeper_RenewalDueError(t *testing.T) {
	mockRepo := new(MockLifecycleRepository)

	mockRepo.On("MarkExpired", mock.Anything, mock.Anything).Return(int64(0), nil)
	mockRepo.On("MarkRenewalDue", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("database error"))

	sweeper := NewLifecycleSweeper(mockRepo, 30*24*time.Hour)
	err := sweeper.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to mark renewal-due documents")
	mockRepo.AssertExpectations(t)
}
