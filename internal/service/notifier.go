package service

import (
	"sync"
	"time"
)

// EventEmployeesChanged публикуется после добавления, изменения и удаления сотрудника
const EventEmployeesChanged = "employees.changed"

// Event - уведомление для подписчиков. Подписчики сами
// перечитывают актуальные данные, событие несёт только повод.
type Event struct {
	Name       string    `json:"event"`
	EmployeeID int64     `json:"employee_id"`
	At         time.Time `json:"at"`
}

// Notifier рассылает события подписчикам
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	bufferSize  int
}

// NewNotifier создаёт Notifier; bufferSize <= 0 означает буфер по умолчанию
func NewNotifier(bufferSize int) *Notifier {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	return &Notifier{
		subscribers: make(map[chan Event]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe регистрирует подписчика и возвращает канал событий и функцию отписки
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Event, n.bufferSize)
	n.subscribers[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subscribers, ch)
			close(ch)
		})
	}

	return ch, cancel
}

// Publish отправляет событие всем подписчикам, не блокируясь на медленных
func (n *Notifier) Publish(event Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subscribers {
		select {
		case ch <- event:
		default:
			// канал переполнен, подписчик получит следующее событие
		}
	}
}

// SubscriberCount возвращает число активных подписчиков
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}
