// Copyright 2025 Reelworthy
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


package catalog

import "errors"

var (
	// ErrUnauthorized indicates the catalog rejected the API credentials.
	// Not retryable.
	ErrUnauthorized = errors.New("catalog authentication failed")

	// ErrQuotaExceeded indicates the catalog reported a rate-limit or
	// quota response. Retryable with backoff.
	ErrQuotaExceeded = errors.New("catalog quota exceeded")

	// ErrBadResponse indicates the catalog returned a response that
	// could not be interpreted.
	ErrBadResponse = errors.New("catalog returned an unexpected response")
)
