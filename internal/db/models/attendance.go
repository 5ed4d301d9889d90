package models

import "time"

// Attendance places a local user in a school group with a role.
type Attendance struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;index"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SchoolID  uint   `gorm:"not null;index"`
	School    School `gorm:"foreignKey:SchoolID;constraint:OnDelete:CASCADE"`
	RoleID    uint   `gorm:"not null"`
	Role      Role   `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT"`
	Group     string `gorm:"column:group_name;size:255;not null;default:''"`
	SourceID  uint   `gorm:"not null"`
	Source    Source `gorm:"foreignKey:SourceID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Attendance model.
func (Attendance) TableName() string {
	return "attendances"
}

// All lists every model for migration, parents first.
func All() []any {
	return []any{
		&Source{},
		&User{},
		&Attribute{},
		&UserAttribute{},
		&Role{},
		&Municipality{},
		&School{},
		&Attendance{},
	}
}
