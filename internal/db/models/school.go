package models

import "time"

// Municipality is the top level grouping of schools.
type Municipality struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:255;not null;index"`
	MunicipalityID string `gorm:"size:255;not null"`
	SourceID       uint   `gorm:"not null"`
	Source         Source `gorm:"foreignKey:SourceID;constraint:OnDelete:RESTRICT"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the database table name for the Municipality model.
func (Municipality) TableName() string {
	return "municipalities"
}

// School belongs to a municipality.
type School struct {
	ID             uint         `gorm:"primaryKey"`
	Name           string       `gorm:"size:255;not null;index"`
	SchoolID       string       `gorm:"size:255;not null"`
	MunicipalityID uint         `gorm:"not null"`
	Municipality   Municipality `gorm:"foreignKey:MunicipalityID;constraint:OnDelete:CASCADE"`
	SourceID       uint         `gorm:"not null"`
	Source         Source       `gorm:"foreignKey:SourceID;constraint:OnDelete:RESTRICT"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the database table name for the School model.
func (School) TableName() string {
	return "schools"
}
