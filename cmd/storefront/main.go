package main

import (
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/viant/storefront/app"
)

func main() {
	if err := app.Run(os.Args[1:]); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		log.Fatal(err)
	}
}
