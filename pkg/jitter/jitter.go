// Package jitter добавляет случайную составляющую к паузам между повторами,
// чтобы воркеры и клиенты не просыпались одновременно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter — надбавка до 50% от базовой паузы.
const DefaultJitter = 0.5

// Duration возвращает d с надбавкой в диапазоне [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}

	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// Backoff — экспоненциальная пауза с потолком и джиттером.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
}

// Next возвращает паузу перед повтором номер attempt (с нуля).
func (b Backoff) Next(attempt int) time.Duration {
	return Duration(b.ceil(attempt), b.Factor)
}

// ceil — пауза без джиттера: Base * 2^attempt, но не больше Max.
func (b Backoff) ceil(attempt int) time.Duration {
	d := b.Base
	for range attempt {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}

	return d
}
