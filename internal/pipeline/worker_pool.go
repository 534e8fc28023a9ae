package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TaskFunc enriches a single record.
type TaskFunc func(ctx context.Context, task EnrichTask) (*Enrichment, error)

// WorkerPool runs enrichment tasks on a fixed number of goroutines.
type WorkerPool struct {
	ctx            context.Context
	process        TaskFunc
	tasks          chan EnrichTask
	results        chan EnrichTaskResult
	progressChan   chan ProgressUpdate
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	numWorkers     int
	totalTasks     int
	completedTasks int
	mu             sync.RWMutex
}

// EnrichTask is one record scheduled for enrichment. Index is the record's
// position in the input so results can be put back in order.
type EnrichTask struct {
	PMID  string
	Link  string
	Index int
}

// ID identifies the task in progress updates.
func (t EnrichTask) ID() string {
	if t.PMID != "" {
		return t.PMID
	}

	return fmt.Sprintf("#%d", t.Index)
}

// EnrichTaskResult is the outcome of one task.
type EnrichTaskResult struct {
	Error  error
	Result *Enrichment
	Task   EnrichTask
}

// ProgressUpdate reports a task changing state.
type ProgressUpdate struct {
	TaskID      string
	Link        string
	Status      TaskStatus
	Message     string
	Completed   int
	Total       int
	ElapsedTime time.Duration
}

// TaskStatus is the state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Finished reports whether the status is terminal.
func (s TaskStatus) Finished() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// NewWorkerPool creates a pool of numWorkers goroutines running process.
// The pool stops early when ctx is canceled.
func NewWorkerPool(ctx context.Context, numWorkers int, process TaskFunc) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:   numWorkers,
		process:      process,
		tasks:        make(chan EnrichTask, numWorkers*2),
		results:      make(chan EnrichTaskResult, numWorkers*2),
		progressChan: make(chan ProgressUpdate, 100),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)

		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(workerID int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task, ok := <-wp.tasks:
			if !ok {
				return
			}

			wp.processTask(workerID, task)
		}
	}
}

func (wp *WorkerPool) processTask(workerID int, task EnrichTask) {
	start := time.Now()

	wp.sendProgress(ProgressUpdate{
		TaskID:  task.ID(),
		Link:    task.Link,
		Status:  TaskStatusProcessing,
		Message: fmt.Sprintf("worker %d started", workerID),
	})

	result, err := wp.process(wp.ctx, task)
	elapsed := time.Since(start)

	wp.mu.Lock()
	wp.completedTasks++
	completed := wp.completedTasks
	total := wp.totalTasks
	wp.mu.Unlock()

	status := TaskStatusCompleted
	message := fmt.Sprintf("worker %d completed in %v", workerID, elapsed)

	if err != nil {
		status = TaskStatusFailed
		message = fmt.Sprintf("worker %d failed: %v", workerID, err)
	}

	wp.sendProgress(ProgressUpdate{
		TaskID:      task.ID(),
		Link:        task.Link,
		Status:      status,
		Completed:   completed,
		Total:       total,
		ElapsedTime: elapsed,
		Message:     message,
	})

	wp.results <- EnrichTaskResult{
		Task:   task,
		Result: result,
		Error:  err,
	}
}

// sendProgress delivers terminal updates unless the pool is canceled. Other
// updates are dropped when nobody keeps up with the channel.
func (wp *WorkerPool) sendProgress(update ProgressUpdate) {
	if update.Status.Finished() {
		select {
		case wp.progressChan <- update:
		case <-wp.ctx.Done():
		}

		return
	}

	select {
	case wp.progressChan <- update:
	default:
	}
}

// SubmitTask queues a task. It returns false when the pool was canceled
// before the task could be queued.
func (wp *WorkerPool) SubmitTask(task EnrichTask) bool {
	wp.mu.Lock()
	wp.totalTasks++
	wp.mu.Unlock()

	wp.sendProgress(ProgressUpdate{
		TaskID:  task.ID(),
		Link:    task.Link,
		Status:  TaskStatusPending,
		Message: "queued",
	})

	select {
	case wp.tasks <- task:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// SubmitBatch queues tasks until one is refused. It reports whether every
// task was queued.
func (wp *WorkerPool) SubmitBatch(tasks []EnrichTask) bool {
	for _, task := range tasks {
		if !wp.SubmitTask(task) {
			return false
		}
	}

	return true
}

// Results returns the channel of finished tasks.
func (wp *WorkerPool) Results() <-chan EnrichTaskResult {
	return wp.results
}

// Progress returns the channel of progress updates.
func (wp *WorkerPool) Progress() <-chan ProgressUpdate {
	return wp.progressChan
}

// Wait closes the task queue, waits for the workers and closes the result
// and progress channels. Results must be drained concurrently.
func (wp *WorkerPool) Wait() {
	close(wp.tasks)
	wp.wg.Wait()
	close(wp.results)
	close(wp.progressChan)
	wp.cancel()
}

// Shutdown cancels outstanding work and waits for the workers.
func (wp *WorkerPool) Shutdown() {
	wp.cancel()
	wp.Wait()
}

// GetStats returns the current task counters.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	return WorkerPoolStats{
		TotalTasks:     wp.totalTasks,
		CompletedTasks: wp.completedTasks,
		PendingTasks:   wp.totalTasks - wp.completedTasks,
		NumWorkers:     wp.numWorkers,
	}
}

// WorkerPoolStats are the pool's task counters.
type WorkerPoolStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	NumWorkers     int `json:"num_workers"`
}

// ProgressTracker aggregates progress updates for a batch.
type ProgressTracker struct {
	startTime    time.Time
	lastUpdate   time.Time
	taskStatuses map[string]TaskStatus
	updateCount  int
	mu           sync.RWMutex
}

// NewProgressTracker creates a tracker starting now.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		startTime:    time.Now(),
		lastUpdate:   time.Now(),
		taskStatuses: make(map[string]TaskStatus),
	}
}

// Update records the latest status of a task.
func (pt *ProgressTracker) Update(update ProgressUpdate) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.taskStatuses[update.TaskID] = update.Status
	pt.lastUpdate = time.Now()
	pt.updateCount++
}

// GetSummary returns the counts per status.
func (pt *ProgressTracker) GetSummary() ProgressSummary {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	summary := ProgressSummary{
		StartTime:    pt.startTime,
		LastUpdate:   pt.lastUpdate,
		ElapsedTime:  time.Since(pt.startTime),
		UpdateCount:  pt.updateCount,
		StatusCounts: make(map[TaskStatus]int),
	}

	for _, status := range pt.taskStatuses {
		summary.StatusCounts[status]++
	}

	summary.TotalTasks = len(pt.taskStatuses)

	return summary
}

// ProgressSummary is a snapshot of a ProgressTracker.
type ProgressSummary struct {
	StartTime    time.Time          `json:"start_time"`
	LastUpdate   time.Time          `json:"last_update"`
	StatusCounts map[TaskStatus]int `json:"status_counts"`
	ElapsedTime  time.Duration      `json:"elapsed_time"`
	Remaining    time.Duration      `json:"remaining,omitempty"`
	UpdateCount  int                `json:"update_count"`
	TotalTasks   int                `json:"total_tasks"`
}

// Done returns the number of finished tasks, failed ones included.
func (s ProgressSummary) Done() int {
	return s.StatusCounts[TaskStatusCompleted] + s.StatusCounts[TaskStatusFailed]
}

// String formats the summary as a one-line progress report.
func (s ProgressSummary) String() string {
	line := fmt.Sprintf("%d/%d enriched", s.Done(), s.TotalTasks)

	if failed := s.StatusCounts[TaskStatusFailed]; failed > 0 {
		line += fmt.Sprintf(" (%d failed)", failed)
	}

	if s.TotalTasks > 0 {
		line += fmt.Sprintf(" [%.1f%%]", float64(s.Done())/float64(s.TotalTasks)*100)
	}

	line += fmt.Sprintf(" [%v elapsed]", s.ElapsedTime.Round(time.Second))

	if s.Remaining > 0 {
		line += fmt.Sprintf(" [~%v left]", s.Remaining.Round(time.Second))
	}

	return line
}

// EstimateCompletion extrapolates the remaining time from the average time
// per finished task. It returns 0 when nothing has finished yet.
func (pt *ProgressTracker) EstimateCompletion() time.Duration {
	summary := pt.GetSummary()

	done := summary.Done()
	if done == 0 || summary.TotalTasks == 0 {
		return 0
	}

	avgTimePerTask := summary.ElapsedTime / time.Duration(done)
	remaining := summary.TotalTasks - done

	return avgTimePerTask * time.Duration(remaining)
}
