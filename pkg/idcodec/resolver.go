package idcodec

import "strconv"

// Path records which strategy produced a Resolution.
type Path int

const (
	PathInvalid Path = iota
	PathOpaque
	PathLegacyNumeric
)

func (p Path) String() string {
	switch p {
	case PathOpaque:
		return "opaque"
	case PathLegacyNumeric:
		return "legacy-numeric"
	default:
		return "invalid"
	}
}

type Resolution struct {
	ID   int64
	Path Path
}

func (r Resolution) Valid() bool {
	return r.Path != PathInvalid
}

type strategy struct {
	path    Path
	resolve func(s string) (int64, bool)
}

// Resolve turns an external image reference into an internal key. Opaque
// strings are tried first; plain base-10 positive integers are accepted
// afterwards so links minted before opaque ids existed keep working.
func (c *Codec) Resolve(s string) Resolution {
	strategies := []strategy{
		{path: PathOpaque, resolve: func(s string) (int64, bool) {
			d := c.Decode(s)
			return d.ID, d.OK
		}},
		{path: PathLegacyNumeric, resolve: parseLegacy},
	}

	for _, st := range strategies {
		if id, ok := st.resolve(s); ok {
			return Resolution{ID: id, Path: st.path}
		}
	}

	return Resolution{Path: PathInvalid}
}

func parseLegacy(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
