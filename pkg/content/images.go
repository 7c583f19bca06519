package content

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // register gif decoder
	_ "image/jpeg" // register jpeg decoder
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp decoder
)

// maxImageBytes limits a single image download
const maxImageBytes = 20 << 20

// ImageFetcher downloads chart images referenced by newsletter HTML and prepares them for vision models
type ImageFetcher struct {
	client  *http.Client
	maxSide int
	minSide int
}

// ImageOptions for NewImageFetcher
type ImageOptions struct {
	Timeout time.Duration // per-download timeout
	MaxSide int           // larger images are downscaled to fit
	MinSide int           // images declaring a smaller width or height are skipped
}

// NewImageFetcher makes an image fetcher
func NewImageFetcher(opts ImageOptions) *ImageFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxSide == 0 {
		opts.MaxSide = 1568
	}
	return &ImageFetcher{client: &http.Client{Timeout: opts.Timeout}, maxSide: opts.MaxSide, minSide: opts.MinSide}
}

// ImageURLs returns absolute image sources from html in document order, without duplicates.
// Images with declared width or height under the minimum side (tracking pixels, icons) are skipped.
func (f *ImageFetcher) ImageURLs(htmlContent string, limit int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	var res []string
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if !strings.HasPrefix(src, "http") || seen[src] {
			return true
		}
		if f.tooSmall(s.AttrOr("width", ""), s.AttrOr("height", "")) {
			return true
		}
		seen[src] = true
		res = append(res, src)
		return limit <= 0 || len(res) < limit
	})
	return res
}

func (f *ImageFetcher) tooSmall(width, height string) bool {
	for _, v := range []string{width, height} {
		v = strings.TrimSuffix(strings.TrimSpace(v), "px")
		if n, err := strconv.Atoi(v); err == nil && n < f.minSide {
			return true
		}
	}
	return false
}

// Fetch downloads the image, downscales it to fit the maximum side and returns a PNG data URI
func (f *ImageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for image %s", resp.StatusCode, url)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", url, err)
	}

	img = downscale(img, f.maxSide)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode image %s: %w", url, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// downscale resizes img to fit maxSide keeping the aspect ratio, smaller images are returned as is
func downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	nw, nh := maxSide, max(1, h*maxSide/w)
	if h > w {
		nw, nh = max(1, w*maxSide/h), maxSide
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
