// The figcms server binary. Configuration comes from the environment;
// a .env file in the working directory is loaded when present.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/figone/figcms"
)

func main() {
	_ = godotenv.Load()

	app := figcms.New(figcms.ConfigFromEnv())
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
