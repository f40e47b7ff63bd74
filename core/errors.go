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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidCatalogItem indicates a CatalogItem failed validation.
	ErrInvalidCatalogItem = errors.New("invalid catalog item")

	// ErrMissingTitle indicates the Title field is empty.
	ErrMissingTitle = errors.New("title cannot be empty")

	// ErrMissingSynopsis indicates the Synopsis field is empty.
	ErrMissingSynopsis = errors.New("synopsis cannot be empty")

	// ErrMissingReleaseDate indicates the ReleaseDate field is empty.
	ErrMissingReleaseDate = errors.New("release date cannot be empty")
)
