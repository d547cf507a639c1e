package service

import "time"

// Clock поставляет текущее время для отметок прихода и ухода
type Clock interface {
	Now() time.Time
}

// ClockFunc позволяет использовать функцию как Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock - системные часы
var SystemClock Clock = ClockFunc(time.Now)
