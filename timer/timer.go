// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task 定时任务, Interval > 0 时周期执行
type Task struct {
	ID       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Manager 基于最小堆的定时器管理器
type Manager struct {
	queue    taskQueue
	mutex    sync.Mutex
	nextID   int64
	clock    clockwork.Clock
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	return NewManagerWithClock(clockwork.NewRealClock())
}

// NewManagerWithClock 注入时钟, 测试时使用 fake clock
func NewManagerWithClock(clock clockwork.Clock) *Manager {
	manager := &Manager{
		queue:    make(taskQueue, 0),
		nextID:   1,
		clock:    clock,
		stopChan: make(chan struct{}),
	}
	heap.Init(&manager.queue)
	go manager.process()
	return manager
}

// Schedule 注册定时任务, 返回任务ID用于取消
func (m *Manager) Schedule(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &Task{
		ID:       m.nextID,
		Execute:  m.clock.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, task)
	return task.ID
}

// Cancel 取消尚未触发的任务
func (m *Manager) Cancel(taskID int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.ID == taskID {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop 停止调度循环, 未触发的任务被丢弃
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Manager) process() {
	ticker := m.clock.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			for _, task := range m.collectDue() {
				// 回调不阻塞调度循环
				go task.Callback()
			}
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) collectDue() []*Task {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.clock.Now()
	var due []*Task
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}

		heap.Pop(&m.queue)
		due = append(due, task)

		if task.Interval > 0 {
			next := *task
			next.Execute = now.Add(task.Interval)
			heap.Push(&m.queue, &next)
		}
	}
	return due
}
