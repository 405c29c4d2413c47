package permissions

import "github.com/trickdeck/trickdeckbackend/models"

// Voter answers grant/deny for one family of owned entities. Decisions are
// binary: there is no role hierarchy beyond "authenticated" vs "owner".
type Voter interface {
	Supports(action Action) bool
	Grant(user *models.User, action Action, subject any) bool
}

// FigureVoter guards figure mutation: only the author may edit or delete.
type FigureVoter struct{}

func (FigureVoter) Supports(action Action) bool {
	return FamilySupports(FamilyFigure, action)
}

func (FigureVoter) Grant(user *models.User, action Action, subject any) bool {
	figure, ok := subject.(*models.Figure)
	if !ok || user == nil {
		return false
	}
	return figure.AuthorID == user.ID
}

// ImageVoter guards image mutation. The owner is resolved through the
// image's owning figure, which must be loaded on the subject.
type ImageVoter struct{}

func (ImageVoter) Supports(action Action) bool {
	return FamilySupports(FamilyImage, action)
}

func (ImageVoter) Grant(user *models.User, action Action, subject any) bool {
	image, ok := subject.(*models.Image)
	if !ok || user == nil || image.Figure == nil {
		return false
	}
	return image.Figure.AuthorID == user.ID
}

// VideoVoter guards video mutation, including attaching a new video. For
// VideoCreate the subject is the target figure; for edit and delete it is
// the video with its owning figure loaded.
type VideoVoter struct{}

func (VideoVoter) Supports(action Action) bool {
	return FamilySupports(FamilyVideo, action)
}

func (VideoVoter) Grant(user *models.User, action Action, subject any) bool {
	if user == nil {
		return false
	}
	if action == VideoCreate {
		figure, ok := subject.(*models.Figure)
		return ok && figure.AuthorID == user.ID
	}
	video, ok := subject.(*models.Video)
	if !ok || video.Figure == nil {
		return false
	}
	return video.Figure.AuthorID == user.ID
}

// CommentVoter guards comment deletion: only the comment's author.
type CommentVoter struct{}

func (CommentVoter) Supports(action Action) bool {
	return FamilySupports(FamilyComment, action)
}

func (CommentVoter) Grant(user *models.User, action Action, subject any) bool {
	comment, ok := subject.(*models.Comment)
	if !ok || user == nil {
		return false
	}
	return comment.AuthorID == user.ID
}

// Decider aggregates the voters and produces the final decision for an
// (action, subject) pair. An unauthenticated actor is always denied, and an
// action no voter supports is denied.
type Decider struct {
	voters []Voter
}

func NewDecider() *Decider {
	return &Decider{voters: []Voter{
		FigureVoter{},
		ImageVoter{},
		VideoVoter{},
		CommentVoter{},
	}}
}

// Decide returns true only when a voter supporting the action grants it.
func (d *Decider) Decide(user *models.User, action Action, subject any) bool {
	if user == nil {
		return false
	}
	for _, v := range d.voters {
		if v.Supports(action) {
			return v.Grant(user, action, subject)
		}
	}
	return false
}
