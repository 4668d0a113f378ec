// Command pokedex browses the PokeAPI Pokémon list.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Sternrassler/pokedex-client/internal/cli"
)

var version = "dev"

func main() {
	cmd := cli.NewRootCmd(version)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
