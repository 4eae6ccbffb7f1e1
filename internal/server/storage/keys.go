package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/dmitrijs2005/snapster/internal/common"
	"github.com/google/uuid"
)

const fallbackBaseName = "file"

// GenerateStoredName builds a collision-resistant object name of the form
// <base>-<uuid>.<ext>, where base is the original filename without its last
// extension and ext is the subtype of the declared media type.
//
// The name never contains '/', so ScopedKey stays injective.
func GenerateStoredName(originalFilename, mediaType string) (string, error) {
	ext, err := ExtensionFor(mediaType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s.%s", baseName(originalFilename), uuid.NewString(), ext), nil
}

// ScopedKey returns the owner-namespaced object key for a stored name.
func ScopedKey(ownerID, storedName string) string {
	return ownerID + "/" + storedName
}

// ExtensionFor returns the lowercased subtype of mediaType ("image/PNG" ->
// "png"). Parameters are ignored. A media type without a subtype is rejected
// with common.ErrInvalidMediaType.
func ExtensionFor(mediaType string) (string, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", common.ErrInvalidMediaType, mediaType, err)
	}
	_, subtype, ok := strings.Cut(mt, "/")
	if !ok || subtype == "" {
		return "", fmt.Errorf("%w: %q has no subtype", common.ErrInvalidMediaType, mediaType)
	}
	return subtype, nil
}

func baseName(original string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(original), `\`, "/"))
	if name == "." || name == "/" {
		return fallbackBaseName
	}
	base := strings.TrimSuffix(name, path.Ext(name))
	if strings.TrimSpace(base) == "" {
		return fallbackBaseName
	}
	return base
}
