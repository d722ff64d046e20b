// Command taskify はTaskify APIサーバーを起動する。
//
// 使い方:
//
//	taskify [serve]
//	taskify migrate [up | down [N|all] | version]
//	taskify healthcheck
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/taskify/internal/app"
)

func main() {
	if err := app.Run(nil, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "taskify: %v\n", err)
		os.Exit(1)
	}
}
