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

package storage

import (
	"context"
	"time"
)

// FlusherThreadName names the background write-back thread.
const FlusherThreadName = "storage-flusher"

// RunFlusher periodically flushes dirty relations until the context is
// cancelled, then performs a final flush. Flush failures are logged
// and retried on the next interval; the failed relations keep their
// dirty bits.
func (s *Store) RunFlusher(ctx context.Context, interval time.Duration) {
	s.logger.WithField("interval", interval.String()).Debug("flusher started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.FlushDirty(); err != nil {
				s.logger.WithError(err).Warn("periodic flush failed; will retry")
			}
		case <-ctx.Done():
			if err := s.FlushDirty(); err != nil {
				s.logger.WithError(err).Error("final flush failed")
			}
			s.logger.Debug("flusher stopped")
			return
		}
	}
}
