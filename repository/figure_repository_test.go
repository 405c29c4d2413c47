package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trickdeck/trickdeckbackend/database"
	"github.com/trickdeck/trickdeckbackend/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	return db
}

func seedAuthor(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Username: "rider", Email: "rider@example.com", IsActive: true}
	require.NoError(t, user.SetPassword("secret-pass"))
	require.NoError(t, NewGormUserRepository(db).Create(user))
	return user
}

func TestFigureCreateDerivesSlug(t *testing.T) {
	db := openTestDB(t)
	author := seedAuthor(t, db)
	figures := NewGormFigureRepository(db)

	figure := &models.Figure{
		Name:        "Cork 720",
		Description: "Two off-axis rotations.",
		GroupLabel:  "rotations",
		AuthorID:    author.ID,
	}
	require.NoError(t, figures.Create(figure))

	loaded, err := figures.GetBySlug("cork-720")
	require.NoError(t, err)
	require.Equal(t, figure.ID, loaded.ID)
	require.Equal(t, "cork-720", loaded.Slug)
}

func TestFigureSlugFollowsRename(t *testing.T) {
	db := openTestDB(t)
	author := seedAuthor(t, db)
	figures := NewGormFigureRepository(db)

	figure := &models.Figure{Name: "Old Name", Description: "d", GroupLabel: "grabs", AuthorID: author.ID}
	require.NoError(t, figures.Create(figure))

	figure.Name = "Method Grab"
	require.NoError(t, figures.Update(figure))

	loaded, err := figures.GetBySlug("method-grab")
	require.NoError(t, err)
	require.Equal(t, figure.ID, loaded.ID)
}

func TestClearMainImageOnlyMatchingReference(t *testing.T) {
	db := openTestDB(t)
	author := seedAuthor(t, db)
	figures := NewGormFigureRepository(db)
	images := NewGormImageRepository(db)

	figure := &models.Figure{Name: "Indy", Description: "d", GroupLabel: "grabs", AuthorID: author.ID}
	require.NoError(t, figures.Create(figure))

	img := &models.Image{Filename: "a.jpg", FigureID: figure.ID}
	other := &models.Image{Filename: "b.jpg", FigureID: figure.ID}
	require.NoError(t, images.Create(img))
	require.NoError(t, images.Create(other))
	require.NoError(t, figures.SetMainImage(figure.ID, &img.ID))

	// clearing against the wrong image id must not touch the reference
	require.NoError(t, figures.ClearMainImage(figure.ID, other.ID))
	loaded, err := figures.GetByID(figure.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.MainImageID)
	require.Equal(t, img.ID, *loaded.MainImageID)

	// clearing against the referenced image nulls it
	require.NoError(t, figures.ClearMainImage(figure.ID, img.ID))
	loaded, err = figures.GetByID(figure.ID)
	require.NoError(t, err)
	require.Nil(t, loaded.MainImageID)
}

func TestFigureDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	author := seedAuthor(t, db)
	figures := NewGormFigureRepository(db)
	images := NewGormImageRepository(db)
	videos := NewGormVideoRepository(db)
	comments := NewGormCommentRepository(db)

	figure := &models.Figure{Name: "Backflip", Description: "d", GroupLabel: "flips", AuthorID: author.ID}
	require.NoError(t, figures.Create(figure))

	img := &models.Image{Filename: "flip.jpg", FigureID: figure.ID}
	require.NoError(t, images.Create(img))
	require.NoError(t, figures.SetMainImage(figure.ID, &img.ID))
	require.NoError(t, videos.Create(&models.Video{EmbedCode: `<iframe src="x"></iframe>`, FigureID: figure.ID}))
	require.NoError(t, comments.Create(&models.Comment{Content: "clean", AuthorID: author.ID, FigureID: figure.ID}))

	require.NoError(t, figures.Delete(figure.ID))

	_, err := figures.GetByID(figure.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	remaining, err := images.ListByFigure(figure.ID)
	require.NoError(t, err)
	require.Empty(t, remaining)

	vids, err := videos.ListByFigure(figure.ID)
	require.NoError(t, err)
	require.Empty(t, vids)

	count, err := comments.CountByFigure(figure.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestUserDeleteRemovesComments(t *testing.T) {
	db := openTestDB(t)
	author := seedAuthor(t, db)
	users := NewGormUserRepository(db)
	figures := NewGormFigureRepository(db)
	comments := NewGormCommentRepository(db)

	commenter := &models.User{Username: "visitor", Email: "visitor@example.com", IsActive: true}
	require.NoError(t, commenter.SetPassword("another-pass"))
	require.NoError(t, users.Create(commenter))

	figure := &models.Figure{Name: "Tail Grab", Description: "d", GroupLabel: "grabs", AuthorID: author.ID}
	require.NoError(t, figures.Create(figure))
	require.NoError(t, comments.Create(&models.Comment{Content: "nice", AuthorID: commenter.ID, FigureID: figure.ID}))

	require.NoError(t, users.Delete(commenter.ID))

	count, err := comments.CountByFigure(figure.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}
