package media

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func testStore(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir(), map[AssetType]string{
		AssetTypeFigureImage: "figures",
		AssetTypeAvatar:      "avatars",
	})
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	return store
}

func encodedTestImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcessFigureImageStoresResized(t *testing.T) {
	store := testStore(t)
	processor := NewProcessor(store)

	relPath, filename, _, err := processor.ProcessFigureImage(encodedTestImage(t, FigureImageMaxSize*2, 400))
	if err != nil {
		t.Fatalf("ProcessFigureImage failed: %v", err)
	}
	if !strings.HasPrefix(relPath, "figures/") {
		t.Errorf("expected figure asset path, got %q", relPath)
	}
	if !strings.HasSuffix(filename, FileExtension) {
		t.Errorf("expected jpeg filename, got %q", filename)
	}

	fullPath, err := store.GetFullPath(relPath)
	if err != nil {
		t.Fatalf("GetFullPath failed: %v", err)
	}
	stored, err := imaging.Open(fullPath)
	if err != nil {
		t.Fatalf("stored image unreadable: %v", err)
	}
	if w := stored.Bounds().Dx(); w > FigureImageMaxSize {
		t.Errorf("stored width %d exceeds bound %d", w, FigureImageMaxSize)
	}
}

func TestProcessFigureImageRejectsGarbage(t *testing.T) {
	processor := NewProcessor(testStore(t))
	if _, _, _, err := processor.ProcessFigureImage([]byte("not an image")); err == nil {
		t.Fatal("expected decode error for garbage input")
	}
}

func TestProcessAvatarIsSquare(t *testing.T) {
	store := testStore(t)
	processor := NewProcessor(store)

	relPath, err := processor.ProcessAvatar(encodedTestImage(t, 640, 480))
	if err != nil {
		t.Fatalf("ProcessAvatar failed: %v", err)
	}
	fullPath, err := store.GetFullPath(relPath)
	if err != nil {
		t.Fatalf("GetFullPath failed: %v", err)
	}
	avatar, err := imaging.Open(fullPath)
	if err != nil {
		t.Fatalf("stored avatar unreadable: %v", err)
	}
	if avatar.Bounds().Dx() != AvatarMaxSize || avatar.Bounds().Dy() != AvatarMaxSize {
		t.Errorf("avatar is %dx%d, want %dx%d",
			avatar.Bounds().Dx(), avatar.Bounds().Dy(), AvatarMaxSize, AvatarMaxSize)
	}
}

func TestLocalStorageDelete(t *testing.T) {
	store := testStore(t)

	relPath, err := store.Save(AssetTypeFigureImage, "gone.jpg", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(relPath); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	fullPath, _ := store.GetFullPath(relPath)
	if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
		t.Errorf("asset still present after delete: %v", err)
	}

	// deleting twice is not an error
	if err := store.Delete(relPath); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store := testStore(t)
	if _, err := store.GetFullPath(filepath.Join("..", "..", "etc", "passwd")); err == nil {
		t.Fatal("expected traversal rejection")
	}
}
