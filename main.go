/*
Copyright © 2026 StaticHQ <oss@statichq.dev>
*/
package main

import "github.com/statichq/assetpipe/cmd"

func main() {
	cmd.Execute()
}
