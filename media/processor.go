package media

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
)

const (
	FigureImageMaxSize = 1280
	AvatarMaxSize      = 256

	JpegQuality   = 85
	FileExtension = ".jpg"
)

// Processor normalizes uploaded photos before they enter the store: decode,
// fit within the size bound, re-encode as JPEG under a generated name.
type Processor struct {
	store Store
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// ProcessFigureImage stores an uploaded figure photo. It returns the path
// relative to the storage root, the generated filename, and any EXIF
// metadata the photo carried. On error nothing is left in the store.
func (p *Processor) ProcessFigureImage(data []byte) (string, string, Metadata, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", "", Metadata{}, fmt.Errorf("failed to decode uploaded image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > FigureImageMaxSize || bounds.Dy() > FigureImageMaxSize {
		img = imaging.Fit(img, FigureImageMaxSize, FigureImageMaxSize, imaging.Lanczos)
	}

	filename := uuid.New().String() + FileExtension
	relPath, err := p.encodeAndSave(img, AssetTypeFigureImage, filename)
	if err != nil {
		return "", "", Metadata{}, err
	}
	return relPath, filename, extractMetadata(data), nil
}

// ProcessAvatar stores an uploaded avatar, square-cropped and bounded.
// Returns the path relative to the storage root.
func (p *Processor) ProcessAvatar(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode uploaded avatar: %w", err)
	}
	avatar := imaging.Fill(img, AvatarMaxSize, AvatarMaxSize, imaging.Center, imaging.Lanczos)

	filename := uuid.New().String() + FileExtension
	return p.encodeAndSave(avatar, AssetTypeAvatar, filename)
}

func (p *Processor) encodeAndSave(img image.Image, assetType AssetType, filename string) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JpegQuality)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	relPath, err := p.store.Save(assetType, filename, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to save image via store: %w", err)
	}
	return relPath, nil
}

func extractMetadata(data []byte) Metadata {
	var meta Metadata
	exifData, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		// plenty of uploads carry no EXIF at all
		return meta
	}
	if taken, err := exifData.DateTime(); err == nil {
		ts := taken.Unix()
		meta.TakenAt = &ts
	}
	if tag, err := exifData.Get(exif.Model); err == nil && tag != nil {
		if model, err := tag.StringVal(); err == nil && model != "" {
			meta.CameraModel = &model
		}
	}
	return meta
}
