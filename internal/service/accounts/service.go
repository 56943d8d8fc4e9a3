package accounts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ImageStore holds the uploaded profile images. Keys are scoped per user so
// replacing an image never collides with another account's objects.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	users  store.UserRepository
	images ImageStore
	tokens *TokenManager
	log    *slog.Logger
	now    func() time.Time
}

func NewService(users store.UserRepository, images ImageStore, tokens *TokenManager, log *slog.Logger) *Service {
	return &Service{
		users:  users,
		images: images,
		tokens: tokens,
		log:    log.With("component", "accounts"),
		now:    time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Username string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.User{}, "", validationError("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, "", validationError("a valid email is required")
	}
	if in.Password == "" {
		return domain.User{}, "", validationError("password is required")
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		// Default handle is the local part of the email address.
		username = email[:strings.Index(email, "@")]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Username:     &username,
	})
	if err != nil {
		return domain.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login deliberately reports the same error for an unknown email and a wrong
// password so the endpoint cannot be used to probe which addresses exist.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, "", validationError("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *Service) GetSettings(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

type UpdateSettingsInput struct {
	Name     *string
	Username *string
	Password *string
}

func (s *Service) UpdateSettings(ctx context.Context, userID uuid.UUID, in UpdateSettingsInput) (domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.User{}, validationError("name cannot be empty")
		}
		user.Name = name
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			user.Username = nil
		} else {
			user.Username = &username
		}
	}
	if in.Password != nil {
		if len(*in.Password) < 6 {
			return domain.User{}, validationError("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	return s.users.Update(ctx, user)
}

// ImageKind selects which of the two profile images an upload targets.
type ImageKind string

const (
	ImageDisplayPicture ImageKind = "display_picture"
	ImageBanner         ImageKind = "banner"
)

func (s *Service) UploadImage(ctx context.Context, userID uuid.UUID, kind ImageKind, filename, contentType string, r io.Reader) (domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	field, err := imageField(&user, kind)
	if err != nil {
		return domain.User{}, err
	}

	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return domain.User{}, validationError("unsupported image type")
	}

	key := fmt.Sprintf("%s/%s-%d%s", userID, kind, s.now().UnixMilli(), ext)
	url, err := s.images.Upload(ctx, key, contentType, r)
	if err != nil {
		return domain.User{}, fmt.Errorf("upload image: %w", err)
	}

	old := *field
	*field = &url
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	s.removeOldImage(ctx, old)
	return updated, nil
}

func (s *Service) RemoveImage(ctx context.Context, userID uuid.UUID, kind ImageKind) (domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	field, err := imageField(&user, kind)
	if err != nil {
		return domain.User{}, err
	}
	if *field == nil {
		return domain.User{}, store.ErrNotFound
	}

	old := *field
	*field = nil
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	s.removeOldImage(ctx, old)
	return updated, nil
}

func imageField(user *domain.User, kind ImageKind) (**string, error) {
	switch kind {
	case ImageDisplayPicture:
		return &user.DisplayPicture, nil
	case ImageBanner:
		return &user.Banner, nil
	default:
		return nil, validationError("unknown image kind")
	}
}

// removeOldImage is best effort. The user record already points at the new
// object, so a leaked blob only costs storage and is safe to clean up later.
func (s *Service) removeOldImage(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	key := imageKeyFromURL(*url)
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "failed to delete replaced image", "key", key, "error", err)
	}
}

// imageKeyFromURL recovers the object key from a stored public URL. Keys are
// always of the form <user-id>/<name>, so the last two path segments suffice.
func imageKeyFromURL(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}
