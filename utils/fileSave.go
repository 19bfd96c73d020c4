package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// SaveFile stores an uploaded file under folder with a generated name
// and returns the stored filename.
func SaveFile(file multipart.File, header *multipart.FileHeader, folder string) (string, error) {
	if err := EnsureDir(folder); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s%s", GenerateID(12), filepath.Ext(header.Filename))
	filePath := filepath.Join(folder, filename)

	out, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err = io.Copy(out, file); err != nil {
		return "", err
	}
	return filename, nil
}

// CreateThumb writes a width-constrained thumbnail next to the source
// image, suffixed with "_thumb".
func CreateThumb(srcPath string, width int) (string, error) {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return "", err
	}
	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)

	ext := filepath.Ext(srcPath)
	thumbPath := srcPath[:len(srcPath)-len(ext)] + "_thumb" + ext
	if err := imaging.Save(thumb, thumbPath); err != nil {
		return "", err
	}
	return filepath.Base(thumbPath), nil
}
