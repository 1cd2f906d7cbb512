/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package cache

import (
	"context"
	"time"

	"github.com/skyforge/missionflow/internal/system/log"
)

// Cleaner is implemented by caches that can drop their expired entries.
type Cleaner interface {
	CleanupExpired() int
}

// RunCleanup removes expired entries from every cleaner at the given interval until ctx is done.
func RunCleanup(ctx context.Context, interval time.Duration, cleaners ...Cleaner) {
	if interval <= 0 || len(cleaners) == 0 {
		return
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "CacheCleanup"))
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Debug("Stopping cache cleanup routine")
				return
			case <-ticker.C:
				total := 0
				for _, c := range cleaners {
					total += c.CleanupExpired()
				}
				if total > 0 {
					logger.Debug("Cache cleanup completed", log.Int("removed", total))
				}
			}
		}
	}()
}
