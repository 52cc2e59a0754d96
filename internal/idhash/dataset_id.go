package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeDatasetID computes a deterministic dataset fingerprint using SHA256.
// Formula: SHA256(source|column1,column2,...|row_count)
// Returns hex-encoded hash (64 characters).
//
// The fingerprint is carried onto projection samples and reports so output
// can be traced back to the exact input shape that produced it.
func ComputeDatasetID(source string, columns []string, rowCount int) string {
	data := fmt.Sprintf("%s|%s|%d",
		source,
		strings.Join(columns, ","),
		rowCount,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
