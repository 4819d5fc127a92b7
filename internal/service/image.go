package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/apperrors"
)

// MaxRecipeImageSize is the largest accepted recipe image in bytes.
const MaxRecipeImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// ObjectUploader is the subset of the S3 client used for image uploads.
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores recipe images in S3 and records their URL on the recipe.
type ImageService struct {
	uploader  ObjectUploader
	bucket    string
	publicURL func(key string) string
	recipes   *RecipeService
	logger    *zap.Logger
}

// NewImageService returns an ImageService backed by the configured bucket.
func NewImageService(s3Config *config.S3Config, recipes *RecipeService, logger *zap.Logger) *ImageService {
	return NewImageServiceWithUploader(s3Config.Client, s3Config.BucketName, s3Config.PublicURL, recipes, logger)
}

func NewImageServiceWithUploader(uploader ObjectUploader, bucket string, publicURL func(string) string, recipes *RecipeService, logger *zap.Logger) *ImageService {
	return &ImageService{
		uploader:  uploader,
		bucket:    bucket,
		publicURL: publicURL,
		recipes:   recipes,
		logger:    logger.Named("images"),
	}
}

// UploadRecipeImage validates and uploads data as the image of a recipe and
// returns its public URL. The content type is sniffed from data.
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID uuid.UUID, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.Validation("image is empty")
	}
	if len(data) > MaxRecipeImageSize {
		return "", apperrors.Validation(fmt.Sprintf("image exceeds %d bytes", MaxRecipeImageSize))
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperrors.Validation("unsupported image type " + contentType)
	}

	if _, err := s.recipes.GetRecipe(ctx, recipeID); err != nil {
		return "", err
	}

	key := fmt.Sprintf("recipe-images/%s/%s.%s", recipeID, uuid.New(), ext)
	_, err := s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("failed to upload recipe image", zap.String("recipe_id", recipeID.String()), zap.Error(err))
		return "", apperrors.StorageUnavailable(fmt.Errorf("failed to upload to S3: %w", err))
	}

	url := s.publicURL(key)
	if err := s.recipes.SetImageURL(ctx, recipeID, url); err != nil {
		return "", err
	}
	s.logger.Info("recipe image uploaded", zap.String("recipe_id", recipeID.String()), zap.String("key", key))
	return url, nil
}
