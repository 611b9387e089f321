// Command assetform renders, fills, serves and lints asset form catalogs.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
