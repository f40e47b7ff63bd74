package core

import (
	"errors"
	"testing"
)

func TestValidateCatalogItem(t *testing.T) {
	tests := []struct {
		name    string
		item    *CatalogItem
		wantErr error
	}{
		{
			name: "valid item",
			item: &CatalogItem{
				ID:          603,
				Title:       "The Matrix",
				Synopsis:    "A hacker learns the truth about his reality.",
				ReleaseDate: "1999-03-31",
				Rating:      8.2,
				Year:        1999,
			},
			wantErr: nil,
		},
		{
			name: "valid item with zero rating",
			item: &CatalogItem{
				Title:       "Obscure Short",
				Synopsis:    "Rarely seen.",
				ReleaseDate: "2004-01-01",
			},
			wantErr: nil,
		},
		{
			name:    "nil item",
			item:    nil,
			wantErr: ErrInvalidCatalogItem,
		},
		{
			name: "missing title",
			item: &CatalogItem{
				Synopsis:    "No title here.",
				ReleaseDate: "2010-05-01",
			},
			wantErr: ErrMissingTitle,
		},
		{
			name: "missing synopsis",
			item: &CatalogItem{
				Title:       "Silent Film",
				ReleaseDate: "2010-05-01",
			},
			wantErr: ErrMissingSynopsis,
		},
		{
			name: "missing release date",
			item: &CatalogItem{
				Title:    "Undated",
				Synopsis: "Lost to time.",
			},
			wantErr: ErrMissingReleaseDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalogItem(tt.item)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCatalogItem() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCatalogItem() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidCatalogItem) {
				t.Errorf("ValidateCatalogItem() error should wrap ErrInvalidCatalogItem, got %v", err)
			}
		})
	}
}

func TestMeetsRatingFloor(t *testing.T) {
	item := &CatalogItem{Title: "Midpoint", Rating: 7.0}

	if !MeetsRatingFloor(item, 7.0) {
		t.Errorf("rating equal to floor should pass")
	}
	if !MeetsRatingFloor(item, 6.5) {
		t.Errorf("rating above floor should pass")
	}
	if MeetsRatingFloor(item, 7.5) {
		t.Errorf("rating below floor should not pass")
	}
}
