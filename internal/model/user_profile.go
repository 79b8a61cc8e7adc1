package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile stores a named cook's preferences. Names are unique and act
// as the public handle.
type UserProfile struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
	Name                string      `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Email               string      `gorm:"size:255" json:"email"`
	AvatarKey           string      `gorm:"size:255" json:"-"`
	FavoriteIngredients StringArray `json:"favorite_ingredients"`
	DietaryRestrictions StringArray `json:"dietary_restrictions"`
	PreferredMoods      StringArray `json:"preferred_moods"`
}

// BeforeCreate assigns an id when none is set
func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SearchHistory records one search made by a named user
type SearchHistory struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
	UserName    string      `gorm:"size:50;not null;index" json:"user_name"`
	Ingredients StringArray `json:"ingredients"`
	Mood        string      `gorm:"size:50" json:"mood"`
	ResultCount int         `json:"result_count"`
}

func (SearchHistory) TableName() string {
	return "search_history"
}

// BeforeCreate assigns an id when none is set
func (h *SearchHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
