// Package identity derives the stable identifiers the whole pipeline hangs
// off: the SHA-256 content hash of each PDF, deterministic UUIDv5 ids for
// orders and line items, and the part key used by the inventory ledger.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Fixed namespaces. These must never change: ids derived from them are
// persisted and matched across runs and databases.
var (
	nsOrder    = uuid.MustParse("0c9d55f5-6920-4e55-92a9-1a9b7b2a7a1a")
	nsLineItem = uuid.MustParse("6b6a3d35-7b8c-4b68-8e6a-3d6cf2c3a2a1")
)

var wsRe = regexp.MustCompile(`\s+`)

// Norm lowercases and collapses whitespace, so cosmetic differences in
// extracted text don't change identity.
func Norm(s string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// HashFile returns the lowercase hex SHA-256 of the file's bytes. Two
// byte-identical files are the same ingest event regardless of name or path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// OrderUID is a deterministic UUIDv5 over (vendor, order ref, file hash).
// Re-parsing the same PDF always yields the same order identity.
func OrderUID(vendor, orderRef, fileHash string) string {
	key := strings.Join([]string{Norm(vendor), Norm(orderRef), fileHash}, "|")
	return uuid.NewSHA1(nsOrder, []byte(key)).String()
}

// LineItemUID is a deterministic UUIDv5 over the order natural key plus the
// line's position and content. Identical content at the same position in a
// re-parsed file collides (enabling upsert); any field change produces a new
// id instead of silently overwriting a logically different row.
func LineItemUID(vendor, orderRef, fileHash string, lineIndex int, sku, description, unitPrice, quantity string) string {
	key := strings.Join([]string{
		Norm(vendor),
		Norm(orderRef),
		fileHash,
		fmt.Sprintf("%d", lineIndex),
		Norm(sku),
		Norm(description),
		Norm(unitPrice),
		Norm(quantity),
	}, "|")
	return uuid.NewSHA1(nsLineItem, []byte(key)).String()
}

// PartKey builds the stable ledger key for a purchasable item. Fallback order
// when the SKU is absent: manufacturer part number, then a SHA-256 digest of
// the normalized description. The digest replaces the runtime string hash the
// key historically used, so the fallback is stable across process runs; the
// "d" prefix keeps it from colliding with a real SKU.
func PartKey(vendor, sku, mfgPartNumber, description string) string {
	v := strings.TrimSpace(vendor)
	if s := strings.TrimSpace(sku); s != "" {
		return v + ":" + s
	}
	if m := strings.TrimSpace(mfgPartNumber); m != "" {
		return v + ":" + m
	}
	sum := sha256.Sum256([]byte(Norm(description)))
	return v + ":d" + hex.EncodeToString(sum[:])[:12]
}
