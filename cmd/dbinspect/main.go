// Command dbinspect prints the schema of a database as JSON.
//
//	dbinspect --backend postgres --dsn postgres://localhost/app tables
//	dbinspect --config dbinspect.toml column-info users
//	dbinspect --config dbinspect.toml snapshot --out s3://snapshots/app
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
