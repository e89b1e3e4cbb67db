package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/entity"
	repo "github.com/restoapp/pos/internal/repository/user"
	"github.com/restoapp/pos/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/restoapp/pos/service/auth")

// Gateway is the slice of user persistence the service consumes.
type Gateway interface {
	List(ctx context.Context) ([]entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	Create(ctx context.Context, usr *entity.User, onConflictIgnore bool) error
	Update(ctx context.Context, usr *entity.User) error
	Delete(ctx context.Context, id int64) error
}

// Service authenticates staff and administers accounts. Roles form a closed
// set; an unknown role is rejected at this boundary.
type Service struct {
	repo   Gateway
	logger *zap.Logger
}

// NewService wires an auth service.
func NewService(gw Gateway, logger *zap.Logger) *Service {
	return &Service{repo: gw, logger: logger}
}

// Login verifies credentials and returns the account on success. Wrong
// username and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Login", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errorbank.BadRequest("username and password are required")
	}

	usr, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.BadRequest("invalid credentials")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	if !VerifyPassword(usr.PasswordHash, password) {
		return nil, errorbank.BadRequest("invalid credentials")
	}
	return usr, nil
}

// List returns every staff account.
func (s *Service) List(ctx context.Context) ([]entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.List")
	defer span.End()

	users, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, errorbank.Internal("failed to load users", errorbank.WithCause(err))
	}
	return users, nil
}

// Create registers a staff account with a fresh salted digest.
func (s *Service) Create(ctx context.Context, username, password string, role entity.Role) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Create", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errorbank.BadRequest("username and password are required")
	}
	if !role.Known() {
		return nil, errorbank.BadRequest("unknown role")
	}

	taken, err := s.repo.UsernameTaken(ctx, username, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, errorbank.Internal("failed to check username", errorbank.WithCause(err))
	}
	if taken {
		return nil, errorbank.Conflict("username already taken")
	}

	usr := &entity.User{
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         role,
	}
	if err := s.repo.Create(ctx, usr, false); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, errorbank.Internal("failed to create user", errorbank.WithCause(err))
	}
	return usr, nil
}

// Update rewrites an account. An empty password keeps the stored digest.
func (s *Service) Update(ctx context.Context, id int64, username, password string, role entity.Role) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Update", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	username = strings.TrimSpace(username)
	if id <= 0 || username == "" {
		return nil, errorbank.BadRequest("user id and username are required")
	}
	if !role.Known() {
		return nil, errorbank.BadRequest("unknown role")
	}

	taken, err := s.repo.UsernameTaken(ctx, username, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, errorbank.Internal("failed to check username", errorbank.WithCause(err))
	}
	if taken {
		return nil, errorbank.Conflict("username already taken")
	}

	current, err := s.currentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	usr := &entity.User{
		ID:           id,
		Username:     username,
		PasswordHash: current.PasswordHash,
		Role:         role,
	}
	if password != "" {
		usr.PasswordHash = HashPassword(password)
	}
	if err := s.repo.Update(ctx, usr); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("user not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, errorbank.Internal("failed to update user", errorbank.WithCause(err))
	}
	return usr, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Delete", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("user not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return errorbank.Internal("failed to delete user", errorbank.WithCause(err))
	}
	return nil
}

func (s *Service) currentByID(ctx context.Context, id int64) (*entity.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to load users", errorbank.WithCause(err))
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, errorbank.NotFound("user not found")
}

// HashPassword produces a salted digest in the form salt$hex.
func HashPassword(password string) string {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		// crypto/rand failing means the process has bigger problems;
		// an empty salt still yields a valid digest.
		salt = salt[:0]
	}
	return hex.EncodeToString(salt) + "$" + digest(hex.EncodeToString(salt), password)
}

// VerifyPassword checks a password against a stored salted digest.
func VerifyPassword(stored, password string) bool {
	salt, want, found := strings.Cut(stored, "$")
	if !found {
		return false
	}
	got := digest(salt, password)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func digest(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}
