package media

type AssetType string

const (
	AssetTypeFigureImage AssetType = "figures"
	AssetTypeAvatar      AssetType = "avatars"
)

// Metadata carries the EXIF fields captured from an uploaded photo, when the
// file carries them. All fields are optional.
type Metadata struct {
	TakenAt     *int64  `json:"taken_at,omitempty"` // Unix timestamp
	CameraModel *string `json:"camera_model,omitempty"`
}
