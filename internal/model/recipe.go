package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/pageza/recipefinder/backend/internal/types"
)

// EmbeddingDimension is the length of every stored recipe embedding
const EmbeddingDimension = 384

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// IngredientList stores recipe ingredients as a JSONB array of {name, amount}
type IngredientList []types.IngredientAmount

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Names returns the ingredient names in order
func (l IngredientList) Names() []string {
	names := make([]string, 0, len(l))
	for _, ing := range l {
		names = append(names, ing.Name)
	}
	return names
}

// StringArray is a postgres text[] column. On other dialects it is stored
// as text in the same array literal format.
type StringArray pq.StringArray

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return pq.StringArray(a).Value()
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	return (*pq.StringArray)(a).Scan(value)
}

// GormDBDataType picks the column type per dialect
func (StringArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func scanJSON(value interface{}, dst interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dst)
}

// Recipe is a stored recipe document with its ingredient embedding
type Recipe struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Name         string           `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description  string           `gorm:"type:text" json:"description"`
	CookTime     string           `gorm:"size:50" json:"cook_time"`
	Difficulty   string           `gorm:"size:50" json:"difficulty"`
	Rating       float64          `gorm:"type:float" json:"rating"`
	Image        string           `gorm:"size:255" json:"image"`
	Mood         string           `gorm:"size:50;index" json:"mood"`
	Ingredients  IngredientList   `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Tip          string           `gorm:"type:text" json:"tip"`
	Tags         StringArray      `json:"tags"`
	SearchText   string           `gorm:"type:text" json:"-"`
	Embedding    *pgvector.Vector `gorm:"type:vector(384)" json:"-"`
}

// BeforeCreate assigns an id when none is set
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the search text in sync with the document
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	r.SearchText = r.BuildSearchText()
	return nil
}

// BuildSearchText concatenates the fields covered by keyword search
func (r *Recipe) BuildSearchText() string {
	parts := []string{r.Name, r.Description}
	parts = append(parts, r.Ingredients.Names()...)
	parts = append(parts, r.Tags...)
	if r.Mood != "" {
		parts = append(parts, r.Mood)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// EmbeddingText is the text embedded for a recipe: its ingredient names
// followed by its tags, comma-joined like a search query.
func (r *Recipe) EmbeddingText() string {
	parts := append(r.Ingredients.Names(), r.Tags...)
	return strings.ToLower(strings.Join(parts, ", "))
}

// ToCandidate converts the stored document into a candidate without its
// embedding. score is nil outside similarity search.
func (r *Recipe) ToCandidate(score *float64) types.RecipeCandidate {
	ingredients := make([]types.IngredientAmount, len(r.Ingredients))
	copy(ingredients, r.Ingredients)
	rating := r.Rating
	return types.RecipeCandidate{
		ID:           r.ID.String(),
		SourceID:     r.ID.String(),
		Name:         r.Name,
		Description:  r.Description,
		CookTime:     r.CookTime,
		Difficulty:   r.Difficulty,
		Rating:       &rating,
		Image:        r.Image,
		Ingredients:  ingredients,
		Instructions: append([]string(nil), r.Instructions...),
		Tip:          r.Tip,
		Tags:         append([]string(nil), r.Tags...),
		Mood:         r.Mood,
		SearchScore:  score,
	}
}
