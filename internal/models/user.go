package models

// Estados de cuenta. Solo los usuarios activos entran al entrenamiento.
const (
	UserStateActive    = "active"
	UserStateInactive  = "inactive"
	UserStateSuspended = "suspended"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// PreferenceDoc va embebido en el usuario: a lo sumo uno por usuario.
type PreferenceDoc struct {
	LevelID     *int   `json:"levelId,omitempty" bson:"levelId,omitempty"`
	CategoryIDs []int  `json:"categoryIds" bson:"categoryIds"`
	LanguageIDs []int  `json:"languageIds" bson:"languageIds"`
	CreatedAt   string `json:"createdAt" bson:"createdAt"`
	UpdatedAt   string `json:"updatedAt" bson:"updatedAt"`
}

type UserDoc struct {
	UserID       int            `json:"userId" bson:"userId"`
	Registration string         `json:"registration" bson:"registration"`
	Name         string         `json:"name" bson:"name"`
	Email        string         `json:"email" bson:"email"`
	Phone        string         `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash string         `json:"-" bson:"passwordHash"`
	Role         string         `json:"role" bson:"role"`
	State        string         `json:"state" bson:"state"`
	Preference   *PreferenceDoc `json:"preference,omitempty" bson:"preference,omitempty"`
	CreatedAt    string         `json:"createdAt" bson:"createdAt"`
	UpdatedAt    string         `json:"updatedAt" bson:"updatedAt"`
}

func (u *UserDoc) IsActive() bool {
	return u.State == UserStateActive
}

func ValidUserState(s string) bool {
	switch s {
	case UserStateActive, UserStateInactive, UserStateSuspended:
		return true
	}
	return false
}
