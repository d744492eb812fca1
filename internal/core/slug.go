package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"storefront-backend-go/internal/db"
)

// MaxSlugAttempts bounds the suffix search of AllocateSlug.
const MaxSlugAttempts = 100

// NormalizeSlug turns a display name into a URL-safe slug: diacritics removed,
// lowercase, whitespace runs become a single '-', anything outside [a-z0-9_-] dropped.
func NormalizeSlug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	pendingDash := false
	for _, r := range stripped {
		switch {
		case unicode.IsSpace(r) || r == '-':
			pendingDash = b.Len() > 0
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingDash {
				b.WriteByte('-')
				pendingDash = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AllocateSlug claims the first free slug among base, base-1, base-2, ... in scope.
func AllocateSlug(ctx context.Context, registry db.SlugRegistry, scope, name string) (string, error) {
	base := NormalizeSlug(name)
	if base == "" {
		return "", fmt.Errorf("%w: name %q does not produce a url", ErrInvalidInput, name)
	}
	for i := 0; i < MaxSlugAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		err := registry.Claim(ctx, scope, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, db.ErrAlreadyExists) {
			return "", fmt.Errorf("failed to claim url '%s': %w", candidate, err)
		}
	}
	return "", fmt.Errorf("%w: '%s' after %d attempts", ErrSlugExhausted, base, MaxSlugAttempts)
}

// slugRename is a slug change for a renamed resource. The new slug is claimed up
// front and the old claim is kept until settle runs after the repository write.
type slugRename struct {
	registry db.SlugRegistry
	scope    string
	oldSlug  string
	newSlug  string
}

// renameSlug claims a slug for newName. The current slug is kept when it already is
// the new name's base, or when the old name normalizes to the same base (a rename
// that only changes case, accents or spacing).
func renameSlug(ctx context.Context, registry db.SlugRegistry, scope, oldName, oldSlug, newName string) (*slugRename, error) {
	r := &slugRename{registry: registry, scope: scope, oldSlug: oldSlug, newSlug: oldSlug}
	base := NormalizeSlug(newName)
	if base != "" && (oldSlug == base || NormalizeSlug(oldName) == base) {
		return r, nil
	}
	slug, err := AllocateSlug(ctx, registry, scope, newName)
	if err != nil {
		return nil, err
	}
	r.newSlug = slug
	return r, nil
}

// Slug is the slug the resource should be written with.
func (r *slugRename) Slug() string {
	return r.newSlug
}

// settle releases the old claim when the write succeeded and the new one when it failed.
// Release failures only leave a stale claim behind, so they are not returned.
func (r *slugRename) settle(ctx context.Context, writeErr error) {
	if r == nil || r.newSlug == r.oldSlug {
		return
	}
	unused := r.oldSlug
	if writeErr != nil {
		unused = r.newSlug
	}
	_ = r.registry.Release(ctx, r.scope, unused)
}
