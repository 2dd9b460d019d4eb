//go:build !odbc

package oracle

import (
	"database/sql"
	"slices"
	"testing"
)

// Without -tags odbc the build must not need unixODBC headers.
func TestDriver_NotLinkedWithoutTag(t *testing.T) {
	if slices.Contains(sql.Drivers(), "odbc") {
		t.Error("odbc driver registered without the odbc build tag")
	}
}
