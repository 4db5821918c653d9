package service

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// normalizePage applies the default page size, caps it, and clamps a negative offset
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
