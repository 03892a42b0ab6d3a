package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrClosed 隊列已關閉
var ErrClosed = errors.New("queue manager is closed")

// Task 要在工作者中執行的工作
type Task func(ctx context.Context) (string, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	Task    Task
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Text  string
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 隊列管理器：固定數量的工作者，限制同時進行的轉錄數
type Manager struct {
	workers   int
	maxSize   int
	queue     chan *Request
	done      chan struct{}
	processed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 創建並啟動隊列管理器
func NewManager(cfg *config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = workers
	}

	m := &Manager{
		workers: workers,
		maxSize: maxSize,
		queue:   make(chan *Request, maxSize),
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	return m
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.process(id, req)
		}
	}
}

func (m *Manager) process(id int, req *Request) {
	// 呼叫端已放棄就不執行
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: err}
		return
	}

	start := time.Now()
	text, err := req.Task(req.Context)
	atomic.AddInt64(&m.processed, 1)

	common.LogDebug("Queue task finished",
		zap.Int("worker", id),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("success", err == nil),
	)
	req.Result <- Result{Text: text, Error: err}
}

// Enqueue 將工作加入隊列，已滿時立即回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, task Task) (chan Result, error) {
	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	queueReq := &Request{
		Context: ctx,
		Task:    task,
		Result:  make(chan Result, 1),
	}

	select {
	case m.queue <- queueReq:
		common.LogInfo("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return queueReq.Result, nil
	default:
		return nil, common.ErrQueueFull
	}
}

// Do 加入隊列並等待結果；呼叫端在結果或 ctx 結束前阻塞
func (m *Manager) Do(ctx context.Context, task Task) (string, error) {
	resultCh, err := m.Enqueue(ctx, task)
	if err != nil {
		return "", err
	}
	select {
	case res := <-resultCh:
		return res.Text, res.Error
	case <-ctx.Done():
		return "", ctx.Err()
	case <-m.done:
		return "", ErrClosed
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止工作者並等待進行中的工作結束
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}
