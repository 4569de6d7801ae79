package receipt

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu would otherwise create a config directory under the user's home.
	model.ConfigPath = "disable"
}

// ImagePage returns a one-page PDF whose page has the pixel size of img and
// is fully covered by it.
func ImagePage(img []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	imageType := "PNG"
	if format == "jpeg" {
		imageType = "JPG"
	}

	size := gofpdf.SizeType{Wd: float64(cfg.Width), Ht: float64(cfg.Height)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	// "P" keeps Wd and Ht as given; gofpdf swaps them for "L".
	pdf.AddPageFormat("P", size)

	opts := gofpdf.ImageOptions{ImageType: imageType}
	if info := pdf.RegisterImageOptionsReader("screenshot", opts, bytes.NewReader(img)); info == nil {
		return nil, fmt.Errorf("register screenshot: %v", pdf.Error())
	}
	pdf.ImageOptions("screenshot", 0, 0, size.Wd, size.Ht, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Embed appends the image at screenshotPath to the PDF at pdfPath as its
// final page. The PDF is rewritten in place.
func Embed(screenshotPath, pdfPath string) error {
	img, err := os.ReadFile(screenshotPath)
	if err != nil {
		return fmt.Errorf("read screenshot: %w", err)
	}
	page, err := ImagePage(img)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(pdfPath), ".screenshot-*.pdf")
	if err != nil {
		return fmt.Errorf("create screenshot page: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(page); err != nil {
		tmp.Close()
		return fmt.Errorf("write screenshot page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write screenshot page: %w", err)
	}

	if err := api.MergeAppendFile([]string{tmp.Name()}, pdfPath, false, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("append screenshot page: %w", err)
	}
	return nil
}

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
