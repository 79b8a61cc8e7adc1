package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONDocument is an arbitrary JSON value stored in a jsonb column
type JSONDocument json.RawMessage

// Value implements the driver.Valuer interface
func (d JSONDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "{}", nil
	}
	return string(d), nil
}

// Scan implements the sql.Scanner interface
func (d *JSONDocument) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append((*d)[:0], v...)
	case string:
		*d = JSONDocument(v)
	}
	return nil
}

// MarshalJSON emits the stored document as-is
func (d JSONDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("{}"), nil
	}
	return d, nil
}

// RecipeFavorite is a recipe a user saved. The recipe id is whatever the
// client saw, so it is not a foreign key.
type RecipeFavorite struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt  time.Time    `json:"created_at"`
	UserName   string       `gorm:"size:50;not null;uniqueIndex:idx_favorite_user_recipe" json:"user_name"`
	RecipeID   string       `gorm:"size:255;not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	RecipeName string       `gorm:"size:255;not null" json:"recipe_name"`
	RecipeData JSONDocument `gorm:"type:jsonb" json:"recipe_data"`
}

func (RecipeFavorite) TableName() string {
	return "recipe_favorites"
}

// BeforeCreate assigns an id when none is set
func (f *RecipeFavorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
