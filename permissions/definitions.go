package permissions

// Action identifies a guarded operation on an owned entity.
type Action string

const (
	FigureEdit   Action = "figure.edit"
	FigureDelete Action = "figure.delete"

	ImageEdit   Action = "image.edit"
	ImageDelete Action = "image.delete"

	VideoCreate Action = "video.create"
	VideoEdit   Action = "video.edit"
	VideoDelete Action = "video.delete"

	CommentDelete Action = "comment.delete"
)

// entity families the voters guard
const (
	FamilyFigure  = "figure"
	FamilyImage   = "image"
	FamilyVideo   = "video"
	FamilyComment = "comment"
)

// ActionDefinition describes a single guarded action
type ActionDefinition struct {
	Key         Action `json:"key"`         // unique key, e.g., "figure.edit"
	Family      string `json:"family"`      // entity family the action guards
	Name        string `json:"name"`        // friendly name, e.g., "Edit Figure"
	Description string `json:"description"` // what the action allows
}

// DefinedActions holds all statically defined guarded actions. The voters
// derive their Supports sets from this table.
var DefinedActions = []ActionDefinition{
	{Key: FigureEdit, Family: FamilyFigure, Name: "Edit Figure", Description: "Allows the author to edit a figure's name, description and group."},
	{Key: FigureDelete, Family: FamilyFigure, Name: "Delete Figure", Description: "Allows the author to delete a figure and everything it owns."},
	{Key: ImageEdit, Family: FamilyImage, Name: "Edit Image", Description: "Allows the owning figure's author to change an image."},
	{Key: ImageDelete, Family: FamilyImage, Name: "Delete Image", Description: "Allows the owning figure's author to remove an image."},
	{Key: VideoCreate, Family: FamilyVideo, Name: "Add Video", Description: "Allows the figure's author to attach a video embed."},
	{Key: VideoEdit, Family: FamilyVideo, Name: "Edit Video", Description: "Allows the owning figure's author to change a video embed."},
	{Key: VideoDelete, Family: FamilyVideo, Name: "Delete Video", Description: "Allows the owning figure's author to remove a video."},
	{Key: CommentDelete, Family: FamilyComment, Name: "Delete Comment", Description: "Allows a comment's author to remove it."},
}

// FamilySupports reports whether action is a defined action of the given
// entity family.
func FamilySupports(family string, action Action) bool {
	for _, def := range DefinedActions {
		if def.Key == action && def.Family == family {
			return true
		}
	}
	return false
}
