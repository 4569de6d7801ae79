// Package receipt turns a confirmed order into its PDF receipt with the
// robot screenshot appended.
package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// PathsFor returns the receipt of orderNumber with its artifact paths under
// dir. The paths depend only on dir and orderNumber. Order numbers that had
// to be sanitized get a short digest suffix so that distinct numbers never
// share a file.
func PathsFor(dir, orderNumber string) domain.Receipt {
	safe := fileSafe(orderNumber)
	if safe != orderNumber {
		sum := sha256.Sum256([]byte(orderNumber))
		safe += "_" + hex.EncodeToString(sum[:4])
	}
	name := "order_" + safe
	return domain.Receipt{
		OrderNumber:    orderNumber,
		PDFPath:        filepath.Join(dir, name+".pdf"),
		ScreenshotPath: filepath.Join(dir, name+".png"),
	}
}

// fileSafe replaces characters that could escape dir or upset archivers.
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
}
