// model.go this code defines the data model for the application
package datastore

import "time"

// Kingdom values accepted for a species record. The set is closed, free text
// is never stored.
const (
	KingdomAnimalia = "Animalia"
	KingdomPlantae  = "Plantae"
	KingdomFungi    = "Fungi"
	KingdomProtista = "Protista"
	KingdomArchaea  = "Archaea"
	KingdomBacteria = "Bacteria"
)

// Species represents a single catalog record authored by a user
type Species struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ScientificName  string    `gorm:"index:idx_species_sciname;not null" json:"scientific_name"`
	CommonName      *string   `json:"common_name"`
	Kingdom         string    `gorm:"type:varchar(20);not null" json:"kingdom"`
	TotalPopulation *int64    `json:"total_population"`
	Image           *string   `json:"image"`
	Description     *string   `gorm:"type:text" json:"description"`
	Author          string    `gorm:"index;not null" json:"author"` // Profile.ID of the record owner, immutable after create
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:SpeciesID;constraint:OnDelete:CASCADE" json:"-"` // One-to-many relationship with cascade delete
}

// Profile represents a registered user
type Profile struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName  string    `gorm:"not null" json:"display_name"`
	Biography    *string   `gorm:"type:text" json:"biography"`
	PasswordHash string    `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Comment represents a user comment on a species record
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SpeciesID uint      `gorm:"index;not null;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;foreignKey:SpeciesID;references:ID" json:"species_id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
