package service

import (
	"context"
	"errors"
	"io"

	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo"
	"gig-marketplace-api/internal/repo/repo_errors"
	"gig-marketplace-api/pkg/logger"

	"github.com/google/uuid"
)

const maxAvatarSize = 5 << 20

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

type UserService struct {
	userRepo repo.User
	storage  FileStorage
}

func NewUserService(repos *repo.Repositories, storage FileStorage) *UserService {
	return &UserService{
		userRepo: repos.User,
		storage:  storage,
	}
}

// ResolveIdentity loads role and banned flag for an authenticated user id.
// A token whose user no longer exists is treated as unauthenticated.
func (s *UserService) ResolveIdentity(ctx context.Context, userId uuid.UUID) (*entity.Identity, error) {
	user, err := s.userRepo.GetUserById(ctx, userId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUnauthorized
		}

		return nil, err
	}

	return &entity.Identity{
		UserId:   user.Id,
		Role:     user.Role,
		IsBanned: user.IsBanned,
	}, nil
}

func (s *UserService) UploadAvatar(ctx context.Context, identity *entity.Identity, file io.Reader, mimetype string, name string, size int64) (*entity.UserOutputModel, error) {
	if identity == nil {
		return nil, ErrUnauthorized
	}
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if _, ok := allowedImageTypes[mimetype]; !ok {
		return nil, ErrInvalidFileType
	}
	if size > maxAvatarSize {
		return nil, ErrFileTooLarge
	}

	stored, err := s.storage.SaveFile(ctx, file, mimetype, name, size)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAvatarUrl(ctx, identity.UserId, stored.SecureUrl); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	user, err := s.userRepo.GetUserById(ctx, identity.UserId)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("avatar updated", "url", stored.SecureUrl)

	return mapUser(user), nil
}
