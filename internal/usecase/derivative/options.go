package derivative

type Option func(*Generator)

func ThumbnailSize(px int) Option {
	return func(g *Generator) {
		g.thumbnailSize = px
	}
}

func ThumbnailQuality(q int) Option {
	return func(g *Generator) {
		g.thumbnailQuality = q
	}
}

func FullQuality(q int) Option {
	return func(g *Generator) {
		g.fullQuality = q
	}
}

// FullMaxDim caps the longest side of the full rendition; 0 keeps the
// original dimensions.
func FullMaxDim(px int) Option {
	return func(g *Generator) {
		g.fullMaxDim = px
	}
}

func PlaceholderGrid(px int) Option {
	return func(g *Generator) {
		g.placeholderGrid = px
	}
}

func PlaceholderComponents(x, y int) Option {
	return func(g *Generator) {
		g.placeholderX = x
		g.placeholderY = y
	}
}

func DownloadJPEGQuality(q int) Option {
	return func(g *Generator) {
		g.downloadJPEGQuality = q
	}
}
