package services

import (
	"database/sql"
	"log"
	"sync"
	"time"
)

// Scheduler owns the two periodic sweeps: auto-closing expired approved
// exams and flushing the notification outbox. Each task runs in the tick
// loop itself, so a sweep that outlasts its interval delays the next tick
// instead of overlapping with itself.
type Scheduler struct {
	db            *sql.DB
	closeEvery    time.Duration
	dispatchEvery time.Duration
	grace         time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewScheduler wires the sweeps with their intervals and the exam-close
// grace window.
func NewScheduler(db *sql.DB, closeEvery, dispatchEvery, grace time.Duration) *Scheduler {
	return &Scheduler{
		db:            db,
		closeEvery:    closeEvery,
		dispatchEvery: dispatchEvery,
		grace:         grace,
		stop:          make(chan struct{}),
	}
}

// Start launches both periodic tasks. Call once at process startup.
func (s *Scheduler) Start() {
	log.Println("Scheduler started...")

	s.wg.Add(2)
	go s.runEvery("close-expired-exams", s.closeEvery, s.closeExpiredTick)
	go s.runEvery("dispatch-notifications", s.dispatchEvery, s.dispatchTick)
}

// Stop ends both tasks and waits for any in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Scheduler) runEvery(name string, interval time.Duration, task func() error) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.runTask(name, task)
		}
	}
}

// runTask logs and swallows failures; a failed sweep never cancels future
// sweeps or crashes the process.
func (s *Scheduler) runTask(name string, task func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Scheduled task %s panicked: %v", name, r)
		}
	}()

	if err := task(); err != nil {
		log.Printf("Scheduled task %s failed: %v", name, err)
	}
}

func (s *Scheduler) closeExpiredTick() error {
	n, err := CloseExpiredExams(s.db, s.grace)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Auto-closed %d expired approved exam(s)", n)
	}
	return nil
}

func (s *Scheduler) dispatchTick() error {
	n, err := DispatchNotifications(s.db)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Dispatched %d notification(s)", n)
	}
	return nil
}
