package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	users     UserStore
	readings  ReadingStore
	jwtSecret []byte
}

type RegisterUserData struct {
	Registration string
	Name         string
	Email        string
	Phone        string
	Password     string
}

func NewAuthService(users UserStore, readings ReadingStore, secret string) *AuthService {
	return &AuthService{users: users, readings: readings, jwtSecret: []byte(secret)}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ================== REGISTER & LOGIN ==================

// Register crea un usuario activo con rol "user".
func (s *AuthService) Register(ctx context.Context, data RegisterUserData) (*models.UserDoc, error) {
	return s.create(ctx, data, models.RoleUser)
}

func (s *AuthService) create(ctx context.Context, data RegisterUserData, role string) (*models.UserDoc, error) {
	existing, err := s.users.FindByEmail(ctx, data.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	existing, err = s.users.FindByRegistration(ctx, data.Registration)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRegistrationTaken
	}

	nextID, err := s.users.GetNextUserID(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	ts := now()
	u := &models.UserDoc{
		UserID:       nextID,
		Registration: data.Registration,
		Name:         data.Name,
		Email:        data.Email,
		Phone:        data.Phone,
		PasswordHash: string(hash),
		Role:         role,
		State:        models.UserStateActive,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// BootstrapAdmin crea la cuenta admin inicial si el email no existe.
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, password string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	u, err := s.create(ctx, RegisterUserData{
		Registration: "ADMIN",
		Name:         "Administrador",
		Email:        email,
		Password:     password,
	}, models.RoleAdmin)
	if err != nil {
		return err
	}
	logging.Info().Int("userId", u.UserID).Str("email", email).Msg("[auth] admin inicial creado")
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.UserDoc, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		return "", nil, ErrUserInactive
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.UserID,
		"role": u.Role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	})
	sToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return sToken, u, nil
}

// ================== USERS (ADMIN) ==================

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]models.UserDoc, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *AuthService) GetUserByID(ctx context.Context, userID int) (*models.UserDoc, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// SetState cambia el estado de la cuenta. Solo los activos entran al
// próximo entrenamiento del modelo.
func (s *AuthService) SetState(ctx context.Context, userID int, state string) (*models.UserDoc, error) {
	if !models.ValidUserState(state) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUserState, state)
	}
	u, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ts := now()
	if err := s.users.UpdateByID(ctx, userID, map[string]any{"state": state, "updatedAt": ts}); err != nil {
		return nil, err
	}
	u.State = state
	u.UpdatedAt = ts
	return u, nil
}

// ================== USERS (SELF-SERVICE) ==================

// UserUpdate: los campos nil no se tocan.
type UserUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// UpdateUser modifica los datos de la propia cuenta. Un actor distinto del
// dueño recibe ErrForbidden.
func (s *AuthService) UpdateUser(ctx context.Context, actorID, userID int, in UserUpdate) (*models.UserDoc, error) {
	if actorID != userID {
		return nil, ErrForbidden
	}
	if in.Name == nil && in.Email == nil && in.Phone == nil {
		return nil, ErrNoFields
	}
	u, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
		set["name"] = u.Name
	}
	if in.Email != nil && *in.Email != u.Email {
		other, err := s.users.FindByEmail(ctx, *in.Email)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrEmailTaken
		}
		u.Email = *in.Email
		set["email"] = u.Email
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
		set["phone"] = u.Phone
	}

	u.UpdatedAt = now()
	set["updatedAt"] = u.UpdatedAt
	err = s.users.UpdateByID(ctx, userID, set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser borra la propia cuenta junto con sus lecturas. La preferencia
// va embebida y se va con el documento.
func (s *AuthService) DeleteUser(ctx context.Context, actorID, userID int) error {
	if actorID != userID {
		return ErrForbidden
	}
	deleted, err := s.users.DeleteByID(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	n, err := s.readings.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int("user", userID).Int64("readings", n).Msg("[auth] cuenta eliminada")
	invalidateUserRecommendations(ctx, userID)
	return nil
}
