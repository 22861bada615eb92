// Command sitegear serves and maintains a Sitegear site.
//
//	sitegear serve --site ./site --env prod
//	sitegear migrate
//	sitegear config get modules.news.per-page
//	sitegear news add --title "Spring opening hours" --body-file spring.md
//
// Flags can also be set through SITEGEAR_* environment variables, for
// example SITEGEAR_SITE and SITEGEAR_ENV.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
