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

import "fmt"

// ValidateCatalogItem validates a CatalogItem according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Synopsis must not be empty
//   - ReleaseDate must not be empty
//
// NOT validated here:
//   - Rating (the quality floor is run configuration, see MeetsRatingFloor)
//   - SourceURL (optional provenance)
//
// An item that fails validation is skipped silently by the pipeline; it
// is a data-quality condition, not an error.
func ValidateCatalogItem(item *CatalogItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidCatalogItem)
	}

	if item.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogItem, ErrMissingTitle)
	}

	if item.Synopsis == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogItem, ErrMissingSynopsis)
	}

	if item.ReleaseDate == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCatalogItem, ErrMissingReleaseDate)
	}

	return nil
}

// MeetsRatingFloor reports whether an item clears the configured minimum
// rating. Items below the floor are skipped silently, like items that
// fail validation.
func MeetsRatingFloor(item *CatalogItem, floor float64) bool {
	return item.Rating >= floor
}
