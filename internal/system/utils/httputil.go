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

// Package utils provides utility functions for HTTP operations.
package utils

import (
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"strings"
)

// maxRequestBodySize bounds the size of JSON request bodies accepted by the server.
const maxRequestBodySize = 10 << 20

// DecodeJSONBody decodes the JSON body of the request into a value of type T.
func DecodeJSONBody[T any](r *http.Request) (*T, error) {
	if r.Body == nil {
		return nil, errors.New("request body is empty")
	}

	var data T
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ReadBody reads the raw request body, bounded by the maximum request body size.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, errors.New("request body is empty")
	}
	return io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
}

// SanitizeString trims the input and escapes HTML special characters.
func SanitizeString(input string) string {
	if input == "" {
		return input
	}
	return html.EscapeString(strings.TrimSpace(input))
}
