// Package user provides the local store queries behind identity lookups.
package user

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/authdata/authdata/internal/db/models"
	"github.com/authdata/authdata/internal/identity"
)

const (
	usernameQueryPattern = "username = ?"
	activeAttributeQuery = "user_attributes.disabled_at IS NULL"
)

var (
	// ErrUserNotFound is returned when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrMultipleUsersFound is returned when an attribute query matches more than one user.
	ErrMultipleUsersFound = errors.New("multiple users found")
	// ErrUsernameEmpty is returned when looking up an empty username.
	ErrUsernameEmpty = errors.New("username cannot be empty")
	// ErrAttributeNotFound is returned when an active user attribute does not exist.
	ErrAttributeNotFound = errors.New("user attribute not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByUsername retrieves a user by OID.
func GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if username == "" {
		return nil, ErrUsernameEmpty
	}

	var user models.User

	result := db.Where(usernameQueryPattern, username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

// GetByAttribute retrieves the single user holding the active attribute name=value.
func GetByAttribute(db *gorm.DB, name, value string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User

	result := db.Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN user_attributes ON user_attributes.user_id = users.id").
		Joins("JOIN attributes ON attributes.id = user_attributes.attribute_id").
		Where("attributes.name = ? AND user_attributes.value = ?", name, value).
		Where(activeAttributeQuery).
		Limit(2). //nolint:mnd // one more than allowed is enough to detect ambiguity
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	switch len(users) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return &users[0], nil
	default:
		return nil, ErrMultipleUsersFound
	}
}

// ActiveAttributes returns the enabled attributes of a user in insertion order.
func ActiveAttributes(db *gorm.DB, userID uint64) ([]identity.Attribute, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []models.UserAttribute

	result := db.Preload("Attribute").
		Where("user_id = ?", userID).
		Where("disabled_at IS NULL").
		Order("id").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]identity.Attribute, 0, len(rows))
	for _, row := range rows {
		out = append(out, identity.Attribute{Name: row.Attribute.Name, Value: row.Value})
	}

	return out, nil
}

// DisableAttribute soft-deletes an active user attribute.
func DisableAttribute(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.UserAttribute{}).
		Where("id = ? AND disabled_at IS NULL", id).
		Update("disabled_at", time.Now())
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAttributeNotFound
	}

	return nil
}

// Record renders a local user, its attendances and active attributes in canonical form.
func Record(db *gorm.DB, user *models.User) (*identity.Record, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var attendances []models.Attendance

	result := db.Preload("School.Municipality").
		Preload("Role").
		Where("user_id = ?", user.ID).
		Order("id").
		Find(&attendances)
	if result.Error != nil {
		return nil, result.Error
	}

	attributes, err := ActiveAttributes(db, user.ID)
	if err != nil {
		return nil, err
	}

	record := &identity.Record{
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Roles:      make([]identity.RoleAssignment, 0, len(attendances)),
		Attributes: attributes,
	}

	for _, a := range attendances {
		record.Roles = append(record.Roles, identity.RoleAssignment{
			School:       a.School.SchoolID,
			Role:         a.Role.Name,
			Group:        a.Group,
			Municipality: a.School.Municipality.MunicipalityID,
		})
	}

	return record, nil
}

// List returns the local users matching filter, ordered by id.
// Municipality, school and group must match on the same attendance and are
// compared case-insensitively. An unparsable changed_at yields no users.
func List(db *gorm.DB, filter identity.Filter) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Model(&models.User{})

	if filter.Username != "" {
		query = query.Where("users.username = ?", filter.Username)
	}

	if filter.Municipality != "" || filter.School != "" || filter.Group != "" {
		query = query.Where("users.id IN (?)", attendanceSubQuery(db, filter))
	}

	if filter.ChangedAt != "" {
		seconds, err := strconv.ParseFloat(filter.ChangedAt, 64)
		if err != nil {
			return []models.User{}, nil
		}

		since := time.Unix(0, int64(seconds*float64(time.Second)))
		query = query.Where(
			db.Where("users.updated_at >= ?", since).
				Or("users.id IN (?)", db.Model(&models.UserAttribute{}).Select("user_id").Where("updated_at >= ?", since)).
				Or("users.id IN (?)", db.Model(&models.Attendance{}).Select("user_id").Where("updated_at >= ?", since)),
		)
	}

	var users []models.User
	if result := query.Order("users.id").Find(&users); result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func attendanceSubQuery(db *gorm.DB, filter identity.Filter) *gorm.DB {
	sub := db.Model(&models.Attendance{}).
		Select("attendances.user_id").
		Joins("JOIN schools ON schools.id = attendances.school_id").
		Joins("JOIN municipalities ON municipalities.id = schools.municipality_id")

	if filter.Municipality != "" {
		sub = sub.Where("LOWER(municipalities.name) = LOWER(?)", filter.Municipality)
	}

	if filter.School != "" {
		sub = sub.Where("LOWER(schools.name) = LOWER(?)", filter.School)
	}

	if filter.Group != "" {
		sub = sub.Where("LOWER(attendances.group_name) = LOWER(?)", filter.Group)
	}

	return sub
}
