// Package metadata signs generated documents and verifies them against their metadata block.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "<!-- METADATA_START"
	// TagEnd is the end of the metadata block.
	TagEnd = "METADATA_END -->"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes a signed document.
type Metadata struct {
	LastModify time.Time
	Version    string
	RunID      string
	Hash       string
	Validation bool
}

var metadataRegex = regexp.MustCompile(`(?s)<!--\s*METADATA_START\s*\n(.*?)\n\s*METADATA_END\s*-->`)

// Extract splits content into its metadata (nil when there is no block) and the content
// without the block. The returned content is what gets hashed.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	clean := strings.TrimRight(metadataRegex.ReplaceAllString(content, ""), "\n")

	if len(match) < 2 {
		return nil, clean
	}

	meta := &Metadata{}

	for line := range strings.SplitSeq(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		val = strings.TrimSpace(val)

		switch strings.TrimSpace(key) {
		case "VALIDATION":
			meta.Validation = strings.EqualFold(val, "TRUE")
		case "LAST_MODIFY":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.LastModify = t
			}
		case "HASH":
			meta.Hash = val
		case "VERSION":
			meta.Version = val
		case "RUN_ID":
			meta.RunID = val
		}
	}

	return meta, clean
}

// CalculateHash computes the SHA-256 hash of content with any metadata block removed.
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Sign replaces any existing metadata block with a fresh one. Hash is always recomputed;
// a zero LastModify is set to now.
func Sign(content string, meta Metadata) string {
	_, clean := Extract(content)

	meta.Hash = CalculateHash(clean)
	if meta.LastModify.IsZero() {
		meta.LastModify = time.Now()
	}

	return clean + "\n\n" + meta.Block()
}

// Block renders the metadata comment.
func (m Metadata) Block() string {
	valStr := "FALSE"
	if m.Validation {
		valStr = "TRUE"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s\nVALIDATION: %s\nLAST_MODIFY: %s\n", TagStart, valStr, m.LastModify.UTC().Format(time.RFC3339))

	if m.Version != "" {
		fmt.Fprintf(&b, "VERSION: %s\n", m.Version)
	}

	if m.RunID != "" {
		fmt.Fprintf(&b, "RUN_ID: %s\n", m.RunID)
	}

	fmt.Fprintf(&b, "HASH: %s\n%s", m.Hash, TagEnd)

	return b.String()
}

// Verify checks if the content matches the hash in its metadata.
func Verify(content string) (bool, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return false, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return true, nil
}
