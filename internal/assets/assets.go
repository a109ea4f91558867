// Package assets bundles the product images shipped with the storefront.
//
// A product's ProductImage key maps to images/<key>.PNG. There is no fallback
// image: a key without a bundled file is an error.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

const imageExt = "PNG"

//go:embed images
var bundled embed.FS

// ErrAssetNotFound is returned when no bundled file exists for an image key
var ErrAssetNotFound = errors.New("asset not found")

// Resolver maps image keys to URL paths of bundled files
type Resolver struct {
	fsys fs.FS
}

// New creates a resolver over fsys, which must contain an images/ directory
func New(fsys fs.FS) *Resolver {
	return &Resolver{fsys: fsys}
}

// Bundled returns a resolver over the images compiled into the binary
func Bundled() *Resolver {
	return New(bundled)
}

// FS exposes the underlying files for serving
func (r *Resolver) FS() fs.FS {
	return r.fsys
}

// Resolve returns the URL path of the image for key, e.g. "/images/pen.PNG"
func (r *Resolver) Resolve(key string) (string, error) {
	name := fmt.Sprintf("images/%s.%s", key, imageExt)
	if key == "" || !fs.ValidPath(name) {
		return "", fmt.Errorf("%w: invalid image key %q", ErrAssetNotFound, key)
	}

	info, err := fs.Stat(r.fsys, name)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}

	return "/" + name, nil
}

// MustResolve is like Resolve but panics when the asset is missing
func (r *Resolver) MustResolve(key string) string {
	p, err := r.Resolve(key)
	if err != nil {
		panic(err)
	}
	return p
}
