//go:build odbc

package oracle

import (
	_ "github.com/alexbrainman/odbc" // ODBC driver ("odbc"), требует unixODBC или Windows ODBC
)
