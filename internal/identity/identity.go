// Package identity derives the short ids that tie a question file, its metadata
// sidecar and its parsed questions together.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const FileIDLength = 8

// FileID returns the first eight hex characters of the MD5 digest of the base
// filename. It never looks at file contents, so edits keep the id and renames
// produce a new one.
func FileID(filename string) string {
	sum := md5.Sum([]byte(filepath.Base(filename)))
	return hex.EncodeToString(sum[:])[:FileIDLength]
}

// SequenceKey is the rankings map key for a 1-based sequence number ("001").
func SequenceKey(seq int) string {
	return fmt.Sprintf("%03d", seq)
}

func QuestionID(fileID string, seq int) string {
	return fileID + "-" + SequenceKey(seq)
}

// ParseQuestionID splits "<fileId>-<seq>" back into its parts.
func ParseQuestionID(id string) (string, int, error) {
	fileID, seqStr, ok := strings.Cut(id, "-")
	if !ok || fileID == "" || seqStr == "" {
		return "", 0, fmt.Errorf("malformed question id %q", id)
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil || seq < 1 {
		return "", 0, fmt.Errorf("malformed question id %q", id)
	}
	return fileID, seq, nil
}
