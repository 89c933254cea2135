package serp

import "strings"

// pageURLMarkers identify URLs that are HTML pages rather than images;
// image search occasionally leaks these into its results.
var pageURLMarkers = []string{"/wiki/", ".html", "/discover/", "/article/", "/page/", "?q="}

// imageHostMarkers are hosts/paths that are safe to treat as image URLs
// even without a recognizable file extension.
var imageHostMarkers = []string{
	"googleusercontent.com", "gstatic.com", "imgur.com", "i.imgur.com",
	"images.unsplash.com",
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp", ".ico"}

// OverviewImage picks the representative image for a web-search body using
// the priority order: knowledge-graph image, first entry of the images
// block, then the leading organic result's thumbnail (or any other image
// field it carries). Returns "" when nothing is present.
func (b *Body) OverviewImage() string {
	if img := b.KnowledgeGraphImage(); img != "" {
		return img
	}

	if len(b.Images) > 0 {
		if img := b.Images[0].bestURL(); img != "" {
			return img
		}
	}

	if len(b.Organic) > 0 {
		top := b.Organic[0]
		for _, img := range []string{top.Thumbnail, top.Image, top.OGImage, top.PreviewImage} {
			if img != "" {
				return img
			}
		}
	}

	return ""
}

// FirstImage returns the first plausible image URL from an image-search
// body, skipping entries whose URL is clearly an HTML page. Falls back to
// validated organic thumbnails. Returns "" when no candidate survives.
func (b *Body) FirstImage() string {
	for i, item := range b.Images {
		if i >= 5 {
			break
		}
		img := item.bestURL()
		if img == "" {
			continue
		}
		if strings.HasPrefix(img, "data:image") {
			return img
		}
		if !strings.HasPrefix(img, "http://") && !strings.HasPrefix(img, "https://") {
			continue
		}
		if isPageURL(img) {
			continue
		}
		return img
	}

	for i, result := range b.Organic {
		if i >= 5 {
			break
		}
		if result.Thumbnail == "" {
			continue
		}
		if looksLikeImageURL(result.Thumbnail) {
			return result.Thumbnail
		}
	}

	return ""
}

// bestURL picks the candidate image URL from an images-block entry. The
// "link" field is skipped: it is usually the page the image came from.
func (i ImageItem) bestURL() string {
	for _, candidate := range []string{i.Original, i.URL, i.Src, i.Thumbnail, i.Image} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func isPageURL(u string) bool {
	lower := strings.ToLower(u)
	for _, marker := range pageURLMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func looksLikeImageURL(u string) bool {
	if strings.HasPrefix(u, "data:image") {
		return true
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return false
	}
	lower := strings.ToLower(u)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, host := range imageHostMarkers {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return strings.Contains(lower, "/image/") || strings.Contains(lower, "/img/")
}
