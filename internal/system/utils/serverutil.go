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

package utils

import "strings"

// WildcardOrigin allows every origin when listed among the allowed origins.
const WildcardOrigin = "*"

// GetAllowedOrigin returns the request origin when it equals one of the allowed origins, or
// WildcardOrigin when only the wildcard admits it. Scheme and host compare case-insensitively
// and a trailing slash is ignored; partial matches are rejected.
func GetAllowedOrigin(allowedOrigins []string, requestOrigin string) string {
	if len(allowedOrigins) == 0 || requestOrigin == "" {
		return ""
	}

	origin := strings.TrimSuffix(requestOrigin, "/")
	wildcard := false
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == WildcardOrigin {
			wildcard = true
			continue
		}
		if strings.EqualFold(strings.TrimSuffix(allowedOrigin, "/"), origin) {
			return requestOrigin
		}
	}

	if wildcard {
		return WildcardOrigin
	}
	return ""
}
