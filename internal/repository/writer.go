package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/attendance-ledger/internal/domain"
	"gorm.io/gorm"
)

// ErrWriterClosed возвращается для заданий, поставленных после Close
var ErrWriterClosed = errors.New("writer is closed")

// TxFn выполняется внутри транзакции писателя
type TxFn func(ctx context.Context, tx *gorm.DB) error

type job struct {
	ctx context.Context
	fn  TxFn
	ch  chan error
}

// Writer выполняет транзакции записи последовательно в одной горутине.
// Все команды журнала проходят через него, поэтому пара
// "найти открытую сессию + изменить" не пересекается с другой записью.
type Writer struct {
	db     *gorm.DB
	jobs   chan job
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewWriter создаёт писателя и запускает его цикл
func NewWriter(db *gorm.DB) *Writer {
	w := &Writer{
		db:   db,
		jobs: make(chan job, 256),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

// Close дожидается завершения поставленных заданий и останавливает цикл
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()

	<-w.done
}

// Do ставит fn в очередь и ждёт результата транзакции.
// После постановки в очередь отмена ctx не прерывает ожидание: вызывающий
// получает фактический исход транзакции, а не ctx.Err() при уже
// зафиксированной записи. Отменённый ctx откатывает ещё не зафиксированную
// транзакцию через BeginTx.
func (w *Writer) Do(ctx context.Context, fn TxFn) error {
	ch := make(chan error, 1)
	j := job{ctx: ctx, fn: fn, ch: ch}

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrWriterClosed
	}
	select {
	case w.jobs <- j:
		w.mu.RUnlock()
	case <-ctx.Done():
		w.mu.RUnlock()
		return ctx.Err()
	}

	return <-ch
}

func (w *Writer) loop() {
	defer close(w.done)

	for j := range w.jobs {
		if err := j.ctx.Err(); err != nil {
			j.ch <- err
			continue
		}
		j.ch <- runTx(j.ctx, w.db, j.fn)
	}
}

// runTx выполняет fn в транзакции. Сбои begin/commit оборачиваются
// в ErrStoreUnavailable, ошибки fn возвращаются как есть.
func runTx(ctx context.Context, db *gorm.DB, fn TxFn) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return domain.StoreError("tx.begin", "", tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return domain.StoreError("tx.commit", "", err)
	}
	return nil
}

// write выполняет fn через писателя, а без него - в обычной транзакции
func write(ctx context.Context, db *gorm.DB, w *Writer, fn TxFn) error {
	var err error
	if w != nil {
		err = w.Do(ctx, fn)
	} else {
		err = runTx(ctx, db, fn)
	}
	if errors.Is(err, ErrWriterClosed) {
		return domain.StoreError("tx.write", "", err)
	}
	return err
}
