// Copyright 2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrCannotAddToClosedBackgroundThreads = errors.New("cannot add to a closed background threads instance")

// BackgroundThreads runs and manages the lifecycle of background
// goroutines. Add starts a thread; Shutdown cancels the shared context
// and blocks until every thread has returned.
type BackgroundThreads struct {
	wg      *sync.WaitGroup
	ctx     context.Context
	cancelF context.CancelFunc
	mu      *sync.Mutex
}

func NewBackgroundThreads() *BackgroundThreads {
	ctx, cancelF := context.WithCancel(context.Background())
	return &BackgroundThreads{
		wg:      &sync.WaitGroup{},
		ctx:     ctx,
		cancelF: cancelF,
		mu:      &sync.Mutex{},
	}
}

// Add starts |f| in a new goroutine. The context passed to |f| is
// cancelled by Shutdown; |f| is expected to return promptly after
// cancellation.
func (b *BackgroundThreads) Add(name string, f func(ctx context.Context)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.ctx.Done():
		return fmt.Errorf("%w: '%s'", ErrCannotAddToClosedBackgroundThreads, name)
	default:
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		f(b.ctx)
	}()
	return nil
}

// Shutdown cancels every thread's context and waits for them to
// return. It is idempotent.
func (b *BackgroundThreads) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelF()
	b.wg.Wait()
	return b.ctx.Err()
}
