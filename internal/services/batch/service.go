package batch

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/internal/services/processor"
	"github.com/phambaophuc/image-watermark/pkg/utils"
	"go.uber.org/zap"
)

// ErrEmptyBatch is returned when a run has no images, or when every image
// was skipped.
var ErrEmptyBatch = errors.New("no images to watermark")

// ItemError carries the filename of the image that failed.
type ItemError struct {
	Filename string
	Err      error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

type Options struct {
	FailurePolicy string
	OutputPrefix  string
}

type Service struct {
	processor *processor.ImageProcessor
	logger    *zap.Logger
	options   Options
}

func NewService(p *processor.ImageProcessor, logger *zap.Logger, opts Options) *Service {
	if opts.FailurePolicy != models.PolicyAbort {
		opts.FailurePolicy = models.PolicySkip
	}
	return &Service{
		processor: p,
		logger:    logger,
		options:   opts,
	}
}

// RunBatch watermarks every image in input order with the same parameters.
// Parameters are validated before any image is decoded.
func (s *Service) RunBatch(
	images []models.UploadFile,
	watermark []byte,
	params models.WatermarkParameters,
	resize models.ResizePolicy,
) (*models.BatchResult, error) {
	if len(images) == 0 {
		return nil, ErrEmptyBatch
	}

	mark, err := s.prepare(watermark, params, resize)
	if err != nil {
		return nil, err
	}

	result := &models.BatchResult{
		RunID:   uuid.New().String(),
		Entries: make([]models.BatchEntry, 0, len(images)),
	}
	names := utils.NewNameSet()

	s.logger.Info("Batch started",
		zap.String("run_id", result.RunID),
		zap.Int("images", len(images)),
		zap.String("policy", s.options.FailurePolicy))

	for _, file := range images {
		entry, err := s.processOne(file, mark, params, resize)
		if err != nil {
			itemErr := &ItemError{Filename: file.Filename, Err: err}
			if s.options.FailurePolicy == models.PolicyAbort {
				s.logger.Error("Batch aborted",
					zap.String("run_id", result.RunID),
					zap.String("filename", file.Filename),
					zap.Error(err))
				return nil, itemErr
			}

			s.logger.Warn("Image skipped",
				zap.String("run_id", result.RunID),
				zap.String("filename", file.Filename),
				zap.Error(err))
			result.Failures = append(result.Failures, models.BatchFailure{
				Filename: file.Filename,
				Reason:   err.Error(),
			})
			continue
		}

		entry.Filename = names.Claim(utils.OutputFilename(file.Filename, s.options.OutputPrefix))
		result.Entries = append(result.Entries, *entry)
	}

	result.ProcessedAt = time.Now()

	if len(result.Entries) == 0 {
		return result, fmt.Errorf("%w: all %d images failed", ErrEmptyBatch, len(images))
	}

	s.logger.Info("Batch completed",
		zap.String("run_id", result.RunID),
		zap.Int("processed", len(result.Entries)),
		zap.Int("skipped", len(result.Failures)))

	return result, nil
}

// Preview renders a single image exactly as a batch run would, optionally
// outlining where the watermark was placed.
func (s *Service) Preview(
	img models.UploadFile,
	watermark []byte,
	params models.WatermarkParameters,
	resize models.ResizePolicy,
	guide bool,
) ([]byte, error) {
	mark, err := s.prepare(watermark, params, resize)
	if err != nil {
		return nil, err
	}

	base, err := s.decodeBase(img, resize)
	if err != nil {
		return nil, &ItemError{Filename: img.Filename, Err: err}
	}

	var out image.Image
	out, err = s.processor.Composite(base, mark, params)
	if err != nil {
		return nil, err
	}

	if guide {
		rect, err := s.processor.WatermarkRect(base, mark, params)
		if err != nil {
			return nil, err
		}
		out = s.processor.DrawPlacementGuide(out, rect)
	}

	data, err := s.processor.EncodeBytes(out)
	if err != nil {
		return nil, &ItemError{Filename: img.Filename, Err: err}
	}
	return data, nil
}

func (s *Service) prepare(watermark []byte, params models.WatermarkParameters, resize models.ResizePolicy) (image.Image, error) {
	if err := s.processor.ValidateParameters(params); err != nil {
		return nil, err
	}
	if err := s.processor.ValidateResize(resize); err != nil {
		return nil, err
	}

	mark, err := s.processor.DecodeBytes(watermark)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", processor.ErrInvalidWatermark, err)
	}
	if b := mark.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero-sized watermark", processor.ErrInvalidWatermark)
	}
	return mark, nil
}

func (s *Service) decodeBase(file models.UploadFile, resize models.ResizePolicy) (image.Image, error) {
	img, err := s.processor.DecodeBytes(file.Data)
	if err != nil {
		return nil, err
	}
	if resize.Enabled {
		img = s.processor.ResizeToWidth(img, resize.TargetWidth)
	}
	return img, nil
}

func (s *Service) processOne(
	file models.UploadFile,
	mark image.Image,
	params models.WatermarkParameters,
	resize models.ResizePolicy,
) (*models.BatchEntry, error) {
	base, err := s.decodeBase(file, resize)
	if err != nil {
		return nil, err
	}

	out, err := s.processor.Composite(base, mark, params)
	if err != nil {
		return nil, err
	}

	data, err := s.processor.EncodeBytes(out)
	if err != nil {
		return nil, err
	}

	return &models.BatchEntry{
		SourceFilename: file.Filename,
		Width:          out.Bounds().Dx(),
		Height:         out.Bounds().Dy(),
		Data:           data,
	}, nil
}
