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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackgroundThreads(t *testing.T) {
	var mu sync.Mutex
	var stopped []string
	waitForCancel := func(name string) func(ctx context.Context) {
		return func(ctx context.Context) {
			<-ctx.Done()
			mu.Lock()
			defer mu.Unlock()
			stopped = append(stopped, name)
		}
	}

	t.Run("add then shutdown", func(t *testing.T) {
		stopped = nil
		threads := NewBackgroundThreads()

		assert.NoError(t, threads.Add("first", waitForCancel("first")))
		assert.NoError(t, threads.Add("second", waitForCancel("second")))

		err := threads.Shutdown()
		assert.True(t, errors.Is(err, context.Canceled))
		assert.ElementsMatch(t, []string{"first", "second"}, stopped)
	})

	t.Run("shutdown is idempotent", func(t *testing.T) {
		stopped = nil
		threads := NewBackgroundThreads()
		assert.NoError(t, threads.Add("first", waitForCancel("first")))

		err := threads.Shutdown()
		assert.True(t, errors.Is(err, context.Canceled))
		err = threads.Shutdown()
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, []string{"first"}, stopped)
	})

	t.Run("cannot add after shutdown", func(t *testing.T) {
		stopped = nil
		threads := NewBackgroundThreads()
		_ = threads.Shutdown()

		err := threads.Add("late", waitForCancel("late"))
		assert.True(t, errors.Is(err, ErrCannotAddToClosedBackgroundThreads))
		assert.Empty(t, stopped)
	})
}
