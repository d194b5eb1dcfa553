// Package jitter добавляет случайность в интервалы повторов, чтобы повторные попытки
// нескольких воркеров не синхронизировались.
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает d, увеличенную на случайную долю в диапазоне [0, jitterFactor).
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	f := globalRand.Float64()
	randMutex.Unlock()
	return d + time.Duration(f*jitterFactor*float64(d))
}

// ExponentialBackoff: base * 2^attempt, не больше max, плюс джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}

// Policy описывает параметры повторов.
type Policy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
	Factor   float64
}

// Retry вызывает fn, пока она не вернёт nil, не закончатся попытки или не отменится ctx.
// Возвращает последнюю ошибку fn либо ошибку контекста.
func Retry(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}

	var err error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == p.Attempts-1 {
			break
		}

		select {
		case <-time.After(ExponentialBackoff(p.Base, p.Max, attempt, p.Factor)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}
