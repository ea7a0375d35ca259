package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/decorly/decorly-backend/internal/db"
	"github.com/decorly/decorly-backend/internal/models"
)

// Custom errors for the DesignService.
var (
	ErrUpgradeRequired   = errors.New("free design quota exhausted, upgrade required")
	ErrMissingFields     = errors.New("missing required generation fields")
	ErrDesignNotFound    = errors.New("design not found")
	ErrForbiddenAccess   = errors.New("user does not own this design")
	ErrInvalidPagination = errors.New("page and limit must be positive integers")
	ErrImageStoreFailed  = errors.New("image storage operation failed")
	ErrGenerationFailed  = errors.New("image generation failed")
)

const (
	sourceImageFolder    = "decorly/sources"
	generatedImageFolder = "decorly/generated"
)

// designService implements the DesignService interface.
type designService struct {
	designRepo db.DesignRepository
	userRepo   db.UserRepository
	projector  StatusProjector
	images     ImageStore
	generator  Generator
	logger     *zap.Logger
}

// NewDesignService creates a new DesignService instance.
func NewDesignService(
	designRepo db.DesignRepository,
	userRepo db.UserRepository,
	projector StatusProjector,
	images ImageStore,
	generator Generator,
	logger *zap.Logger,
) DesignService {
	return &designService{
		designRepo: designRepo,
		userRepo:   userRepo,
		projector:  projector,
		images:     images,
		generator:  generator,
		logger:     logger,
	}
}

// Generate runs one generation request end to end, strictly ordered:
// validate, quota check, upload source, call the generator, upload the
// result, persist the design, and only then charge the free quota. A failure
// at any step leaves no design behind and never consumes quota; partial
// upstream work (an uploaded source image, a generated image that failed to
// upload) is abandoned rather than rolled back.
func (s *designService) Generate(ctx context.Context, userID string, input GenerateDesignInput) (*models.Design, error) {
	if input.Image == "" || input.RoomType == "" || input.DesignStyle == "" || input.ColorTone == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s' for generation: %w", userID, err)
	}

	status, err := s.projector.Status(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to project subscription status for user '%s': %w", userID, err)
	}

	freeTier := !user.IsPremium && !status.IsSubscribed
	if freeTier && user.FreeDesignsUsed >= models.FreeDesignQuota {
		return nil, fmt.Errorf("%w: %d of %d used", ErrUpgradeRequired, user.FreeDesignsUsed, models.FreeDesignQuota)
	}

	source, err := s.images.UploadImage(ctx, input.Image, sourceImageFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: source upload: %v", ErrImageStoreFailed, err)
	}

	generatedB64, err := s.generator.Generate(ctx, GenerationInput{
		Image:        input.Image,
		RoomType:     input.RoomType,
		DesignStyle:  input.DesignStyle,
		ColorTone:    input.ColorTone,
		CustomPrompt: input.CustomPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	generated, err := s.images.UploadImage(ctx, "data:image/png;base64,"+generatedB64, generatedImageFolder)
	if err != nil {
		// The generated content is lost here; acceptable because the user is
		// not charged quota and no design record exists.
		return nil, fmt.Errorf("%w: generated upload: %v", ErrImageStoreFailed, err)
	}

	design := &models.Design{
		UserID:           userID,
		Image:            source.URL,
		ImageID:          source.PublicID,
		GeneratedImage:   generated.URL,
		GeneratedImageID: generated.PublicID,
		RoomType:         input.RoomType,
		DesignStyle:      input.DesignStyle,
		ColorTone:        input.ColorTone,
		CustomPrompt:     input.CustomPrompt,
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := s.designRepo.Create(ctx, design); err != nil {
		return nil, fmt.Errorf("failed to persist design for user '%s': %w", userID, err)
	}

	if freeTier {
		user.FreeDesignsUsed++
		user.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.Update(ctx, user); err != nil {
			// The generation succeeded; losing the counter write means the
			// user got a free generation, which is the safe direction.
			s.logger.Warn("could not increment free design counter",
				zap.String("userID", userID), zap.Error(err))
		}
	}

	return design, nil
}

// List returns one page of the user's designs, newest first, with totals so
// the client can detect the end of the collection.
func (s *designService) List(ctx context.Context, userID string, page, limit int) (*DesignPage, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%w: page=%d limit=%d", ErrInvalidPagination, page, limit)
	}

	total, err := s.designRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count designs for user '%s': %w", userID, err)
	}

	designs, err := s.designRepo.ListByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs for user '%s': %w", userID, err)
	}
	if designs == nil {
		designs = []*models.Design{}
	}

	return &DesignPage{
		Output:       designs,
		CurrentPage:  page,
		TotalDesigns: total,
		TotalPages:   (total + limit - 1) / limit,
	}, nil
}

// Delete removes a design the requester owns, destroying both stored images
// first. Image destruction is best-effort per side: a missing reference on
// one side never blocks removing the other, and storage failures are logged
// rather than blocking record deletion.
func (s *designService) Delete(ctx context.Context, userID, designID string) error {
	design, err := s.designRepo.GetByID(ctx, designID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: design with ID '%s'", ErrDesignNotFound, designID)
		}
		return fmt.Errorf("failed to get design '%s': %w", designID, err)
	}

	if design.UserID != userID {
		return fmt.Errorf("%w: design '%s'", ErrForbiddenAccess, designID)
	}

	for _, publicID := range []string{design.ImageID, design.GeneratedImageID} {
		if publicID == "" {
			continue
		}
		if err := s.images.DeleteImage(ctx, publicID); err != nil {
			s.logger.Warn("could not delete stored image",
				zap.String("designID", designID),
				zap.String("publicID", publicID),
				zap.Error(err))
		}
	}

	if err := s.designRepo.Delete(ctx, designID); err != nil {
		return fmt.Errorf("failed to delete design '%s': %w", designID, err)
	}
	return nil
}
